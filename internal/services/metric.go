package services

import (
	"fmt"
	"strings"

	"superstore-dashboard/internal/models"
)

type Metric string

const (
	MetricSales      Metric = "Sales"
	MetricQuantity   Metric = "Quantity"
	MetricProfit     Metric = "Profit"
	MetricMarginRate Metric = "Margin Rate"
)

var Metrics = []Metric{MetricSales, MetricQuantity, MetricProfit, MetricMarginRate}

// ParseMetric accepts the display name in any case, with or without the
// space in "Margin Rate". Empty input selects Sales.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)) {
	case "", "sales":
		return MetricSales, nil
	case "quantity":
		return MetricQuantity, nil
	case "profit":
		return MetricProfit, nil
	case "marginrate":
		return MetricMarginRate, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Of picks the metric's value out of an aggregate row.
func (m Metric) Of(r models.AggregateRow) float64 {
	switch m {
	case MetricQuantity:
		return r.Quantity
	case MetricProfit:
		return r.Profit
	case MetricMarginRate:
		return r.MarginRate
	default:
		return r.Sales
	}
}

type Granularity string

const (
	Week    Granularity = "Week"
	Month   Granularity = "Month"
	Quarter Granularity = "Quarter"
	Year    Granularity = "Year"
)

var Granularities = []Granularity{Week, Month, Quarter, Year}

// ParseGranularity is case-insensitive. Empty input selects Week.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "week":
		return Week, nil
	case "month":
		return Month, nil
	case "quarter":
		return Quarter, nil
	case "year":
		return Year, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}

// divideOrOne is Profit/Sales with a zero denominator replaced by one, so a
// zero-sales row contributes its profit as the rate.
func divideOrOne(profit, sales float64) float64 {
	if sales == 0 {
		return profit
	}
	return profit / sales
}
