package templates

import (
	"encoding/json"

	"superstore-dashboard/internal/services"
)

const lineChartEffect = "$lineChart.x && Plotly.react('line-chart', " +
	"[{x: $lineChart.x, y: $lineChart.y, type: 'scatter', mode: 'lines+markers'}], " +
	"{title: $lineChart.title, yaxis: {title: $lineChart.y_title}, " +
	"xaxis: {title: $lineChart.xaxis.title, type: $lineChart.xaxis.type, tickvals: $lineChart.xaxis.tickvals, " +
	"ticktext: $lineChart.xaxis.ticktext, rangeslider: {visible: $lineChart.xaxis.rangeslider}}})"

const barChartEffect = "$barChart.categories && Plotly.react('bar-chart', " +
	"[{x: $barChart.values, y: $barChart.categories, type: 'bar', orientation: $barChart.orientation, " +
	"marker: {color: $barChart.color, colorscale: 'Blues'}}], " +
	"{title: $barChart.title, yaxis: {autorange: 'reversed'}})"

// initialSignals seeds every control with its default so the first request
// resolves the unfiltered dashboard.
func initialSignals() (string, error) {
	signals := map[string]any{
		"region":      services.All,
		"state":       services.All,
		"city":        services.All,
		"segment":     services.All,
		"category":    services.All,
		"shipMode":    services.All,
		"fromDate":    "",
		"toDate":      "",
		"filterKey":   "",
		"metric":      services.MetricSales,
		"granularity": services.Week,
		"lineChart":   map[string]any{},
		"barChart":    map[string]any{},
	}
	b, err := json.Marshal(signals)
	return string(b), err
}
