package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineChart_Week(t *testing.T) {
	chart := NewLineChart(BucketSeries(scenarioTable().Rows(), Week, MetricSales))

	assert.Equal(t, "Sales Over Week", chart.Title)
	assert.Equal(t, "category", chart.XAxis.Type)
	assert.True(t, chart.XAxis.RangeSlider)
	assert.Len(t, chart.Hover, len(chart.X))
}

func TestNewLineChart_MonthThinsTicks(t *testing.T) {
	chart := NewLineChart(BucketSeries(wideTable().Rows(), Month, MetricProfit))

	require.NotEmpty(t, chart.X)
	assert.Equal(t, "", chart.XAxis.Type)
	assert.Len(t, chart.XAxis.TickVals, (len(chart.X)+2)/3)
	assert.Equal(t, chart.X[0], chart.XAxis.TickVals[0])
	assert.Equal(t, "Nov 2022", chart.XAxis.TickText[0])
	assert.True(t, chart.XAxis.RangeSlider)
}

func TestNewLineChart_QuarterAndYear(t *testing.T) {
	q := NewLineChart(BucketSeries(wideTable().Rows(), Quarter, MetricSales))
	assert.Equal(t, "category", q.XAxis.Type)
	assert.Equal(t, q.X, q.XAxis.TickVals)

	y := NewLineChart(BucketSeries(wideTable().Rows(), Year, MetricSales))
	assert.Equal(t, "", y.XAxis.Type)
	assert.Equal(t, []string{"2022", "2023"}, y.XAxis.TickText)
}

func TestNewBarChart(t *testing.T) {
	top := TopSubCategories(scenarioTable().Rows(), MetricSales, DefaultTopN)
	chart := NewBarChart(top, MetricSales, DefaultTopN)

	assert.Equal(t, "Top 10 Sub-Categories by Sales", chart.Title)
	assert.Equal(t, "h", chart.Orientation)
	assert.Equal(t, []string{"Tables", "Chairs"}, chart.Categories)
	assert.Equal(t, chart.Values, chart.ColorScale)
}
