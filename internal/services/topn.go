package services

import (
	"cmp"
	"slices"

	"superstore-dashboard/internal/models"
)

const DefaultTopN = 10

// TopSubCategories groups the working set by sub-category and returns the n
// groups with the highest metric value. Unlike BucketSeries, margin rate here
// is recomputed from each group's totals. Ties keep alphabetical group order.
func TopSubCategories(rows []models.Order, m Metric, n int) []models.AggregateRow {
	if n <= 0 {
		n = DefaultTopN
	}

	groups := make(map[string]*models.AggregateRow)
	for _, o := range rows {
		if o.SubCategory == "" {
			continue
		}
		agg, ok := groups[o.SubCategory]
		if !ok {
			agg = &models.AggregateRow{Key: o.SubCategory}
			groups[o.SubCategory] = agg
		}
		agg.Sales += o.Sales
		agg.Quantity += float64(o.Quantity)
		agg.Profit += o.Profit
	}

	result := make([]models.AggregateRow, 0, len(groups))
	for _, agg := range groups {
		agg.MarginRate = divideOrOne(agg.Profit, agg.Sales)
		result = append(result, *agg)
	}

	slices.SortFunc(result, func(a, b models.AggregateRow) int {
		return cmp.Compare(a.Key, b.Key)
	})
	slices.SortStableFunc(result, func(a, b models.AggregateRow) int {
		return cmp.Compare(m.Of(b), m.Of(a))
	})

	if len(result) > n {
		result = result[:n]
	}
	return result
}
