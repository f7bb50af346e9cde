package services

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"superstore-dashboard/internal/models"
)

const (
	MarginPositiveClass = "margin-rate-positive"
	MarginNegativeClass = "margin-rate-negative"
)

// FormatMillions renders an amount as dollars in millions, e.g. "$2.30M".
func FormatMillions(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v/1_000_000) + "M"
}

func FormatQuantity(q int) string {
	return humanize.Comma(int64(q))
}

// FormatMarginRate renders a ratio as a percentage with an up arrow for
// non-negative rates and a down arrow otherwise.
func FormatMarginRate(rate float64) string {
	arrow := "↑"
	if rate < 0 {
		arrow = "↓"
	}
	return arrow + " " + humanize.FormatFloat("#,###.##", rate*100) + "%"
}

func Tiles(k models.KPIs, split models.QuantitySplit) models.KPITiles {
	class := MarginPositiveClass
	if k.MarginRate < 0 {
		class = MarginNegativeClass
	}
	return models.KPITiles{
		Sales:         FormatMillions(k.TotalSales),
		Quantity:      FormatQuantity(k.TotalQuantity),
		Profit:        FormatMillions(k.TotalProfit),
		MarginRate:    FormatMarginRate(k.MarginRate),
		MarginClass:   class,
		AboveAvgLabel: fmt.Sprintf("▲ %s orders above avg", humanize.Comma(int64(split.OrdersAboveAvg))),
		BelowAvgLabel: fmt.Sprintf("▼ %s orders below avg", humanize.Comma(int64(split.OrdersBelowAvg))),
	}
}
