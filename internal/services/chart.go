package services

import (
	"fmt"
	"time"

	"superstore-dashboard/internal/models"
)

const monthTickStep = 3

// Axis carries the x-axis hints the chart renderer needs.
type Axis struct {
	Title       string   `json:"title"`
	Type        string   `json:"type,omitempty"`
	TickVals    []string `json:"tickvals,omitempty"`
	TickText    []string `json:"ticktext,omitempty"`
	RangeSlider bool     `json:"rangeslider"`
}

type LineChart struct {
	Title  string                `json:"title"`
	X      []string              `json:"x"`
	Y      []float64             `json:"y"`
	YTitle string                `json:"y_title"`
	XAxis  Axis                  `json:"xaxis"`
	Hover  []models.AggregateRow `json:"hover"`
}

type BarChart struct {
	Title       string    `json:"title"`
	Categories  []string  `json:"categories"`
	Values      []float64 `json:"values"`
	Orientation string    `json:"orientation"`
	ColorScale  []float64 `json:"color"`
}

// NewLineChart lays out a series. Week and Quarter axes are categorical,
// Month shows every third label as "Jan 2006", and the range slider is
// always on.
func NewLineChart(s Series) LineChart {
	keys := s.Keys()
	chart := LineChart{
		Title:  fmt.Sprintf("%s Over %s", s.Metric, s.Granularity),
		X:      keys,
		Y:      s.Values(),
		YTitle: string(s.Metric),
		Hover:  s.Points,
		XAxis:  Axis{Title: string(s.Granularity), RangeSlider: true},
	}

	switch s.Granularity {
	case Week:
		chart.XAxis.Type = "category"
	case Month:
		chart.XAxis.Title = "Month and Year"
		for i := 0; i < len(keys); i += monthTickStep {
			chart.XAxis.TickVals = append(chart.XAxis.TickVals, keys[i])
			chart.XAxis.TickText = append(chart.XAxis.TickText, monthTickText(keys[i]))
		}
	case Quarter:
		chart.XAxis.Type = "category"
		chart.XAxis.TickVals = keys
		chart.XAxis.TickText = keys
	case Year:
		chart.XAxis.TickVals = keys
		chart.XAxis.TickText = keys
	}
	return chart
}

func monthTickText(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// NewBarChart lays out the top sub-categories as horizontal bars coloured by
// their metric value.
func NewBarChart(rows []models.AggregateRow, m Metric, n int) BarChart {
	chart := BarChart{
		Title:       fmt.Sprintf("Top %d Sub-Categories by %s", n, m),
		Categories:  make([]string, len(rows)),
		Values:      make([]float64, len(rows)),
		Orientation: "h",
	}
	for i, r := range rows {
		chart.Categories[i] = r.Key
		chart.Values[i] = m.Of(r)
	}
	chart.ColorScale = chart.Values
	return chart
}
