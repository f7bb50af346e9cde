package services

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/store"
)

// Series is the time-series chart data: one row per bucket in chronological
// order, every row carrying all four measures.
type Series struct {
	Granularity Granularity           `json:"granularity"`
	Metric      Metric                `json:"metric"`
	Points      []models.AggregateRow `json:"points"`
}

func (s Series) Keys() []string {
	keys := make([]string, len(s.Points))
	for i, p := range s.Points {
		keys[i] = p.Key
	}
	return keys
}

func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = s.Metric.Of(p)
	}
	return values
}

// BucketSeries groups the working set by calendar period. Margin rate is
// computed per order and then summed per bucket, not recomputed from the
// bucket totals.
//
// Week buckets are labelled "YYYY-WW" with Sunday-start week numbers and laid
// on an axis of every Monday-anchored week between the first and last order;
// weeks without orders are zero rows. Month, Quarter and Year only emit
// observed periods.
func BucketSeries(rows []models.Order, g Granularity, m Metric) Series {
	s := Series{Granularity: g, Metric: m, Points: []models.AggregateRow{}}
	if len(rows) == 0 {
		return s
	}

	label := bucketLabel(g)
	sums := make(map[string]*models.AggregateRow)
	for _, o := range rows {
		key := label(o.OrderDate)
		agg, ok := sums[key]
		if !ok {
			agg = &models.AggregateRow{Key: key}
			sums[key] = agg
		}
		agg.Sales += o.Sales
		agg.Quantity += float64(o.Quantity)
		agg.Profit += o.Profit
		agg.MarginRate += divideOrOne(o.Profit, o.Sales)
	}

	if g == Week {
		minDate, maxDate, _ := store.DateRange(rows)
		for _, monday := range mondaysBetween(minDate, maxDate) {
			key := weekLabel(monday)
			if agg, ok := sums[key]; ok {
				s.Points = append(s.Points, *agg)
			} else {
				s.Points = append(s.Points, models.AggregateRow{Key: key})
			}
		}
		return s
	}

	// Month, quarter and year labels sort chronologically as strings.
	for _, agg := range sums {
		s.Points = append(s.Points, *agg)
	}
	slices.SortFunc(s.Points, func(a, b models.AggregateRow) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return s
}

func bucketLabel(g Granularity) func(time.Time) string {
	switch g {
	case Month:
		return func(t time.Time) string { return t.Format("2006-01") }
	case Quarter:
		return func(t time.Time) string { return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1) }
	case Year:
		return func(t time.Time) string { return strconv.Itoa(t.Year()) }
	default:
		return weekLabel
	}
}

// weekLabel formats the year and the Sunday-start week number (00-53). Days
// before the year's first Sunday are in week 00.
func weekLabel(t time.Time) string {
	week := (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
	return fmt.Sprintf("%d-%02d", t.Year(), week)
}

// mondaysBetween returns the Monday starting each Monday-anchored week that
// overlaps [from, to].
func mondaysBetween(from, to time.Time) []time.Time {
	last := mondayOf(to)
	var mondays []time.Time
	for d := mondayOf(from); !d.After(last); d = d.AddDate(0, 0, 7) {
		mondays = append(mondays, d)
	}
	return mondays
}

func mondayOf(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
