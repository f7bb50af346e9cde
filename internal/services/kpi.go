package services

import "superstore-dashboard/internal/models"

// ComputeKPIs sums the working set. An empty set or zero total sales gives a
// margin rate of zero.
func ComputeKPIs(rows []models.Order) models.KPIs {
	var k models.KPIs
	if len(rows) == 0 {
		return k
	}

	for _, o := range rows {
		k.TotalSales += o.Sales
		k.TotalQuantity += o.Quantity
		k.TotalProfit += o.Profit
	}
	if k.TotalSales != 0 {
		k.MarginRate = k.TotalProfit / k.TotalSales
	}
	return k
}

// SplitQuantity counts orders whose quantity is strictly above or below the
// per-order mean. Orders equal to the mean are in neither count.
func SplitQuantity(rows []models.Order) models.QuantitySplit {
	var s models.QuantitySplit
	if len(rows) == 0 {
		return s
	}

	total := 0
	for _, o := range rows {
		total += o.Quantity
	}
	s.AvgQuantity = float64(total) / float64(len(rows))

	for _, o := range rows {
		q := float64(o.Quantity)
		switch {
		case q > s.AvgQuantity:
			s.OrdersAboveAvg++
		case q < s.AvgQuantity:
			s.OrdersBelowAvg++
		}
	}
	return s
}
