package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestDashboard() *services.Dashboard {
	table := store.NewTable([]models.Order{
		{
			OrderDate: day(2023, 1, 5), Region: "East", State: "New York", City: "New York City",
			Segment: "Consumer", Category: "Furniture", SubCategory: "Chairs", ShipMode: "Standard Class",
			Sales: 100, Profit: 20, Quantity: 2,
		},
		{
			OrderDate: day(2023, 1, 12), Region: "East", State: "Massachusetts", City: "Boston",
			Segment: "Corporate", Category: "Furniture", SubCategory: "Tables", ShipMode: "First Class",
			Sales: 200, Profit: -10, Quantity: 3,
		},
		{
			OrderDate: day(2023, 2, 1), Region: "West", State: "Washington", City: "Seattle",
			Segment: "Consumer", Category: "Furniture", SubCategory: "Chairs", ShipMode: "Standard Class",
			Sales: 50, Profit: 5, Quantity: 1,
		},
	}, "test")
	return services.NewDashboard(table, testLogger())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	} `json:"error"`
}

func serve(t *testing.T, handler http.HandlerFunc, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestNewAPIHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	handlers := NewAPIHandlers(dashboard, testLogger())

	require.NotNil(t, handlers)
	assert.Same(t, dashboard, handlers.dashboard)
}

func TestAPIHandlers_HandleDashboard(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	w, env := serve(t, handlers.HandleDashboard, "/api/dashboard?region=East&granularity=month&metric=profit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))

	var view services.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 2, view.RowCount)
	assert.Equal(t, services.MetricProfit, view.Metric)
	assert.Equal(t, services.Month, view.Granularity)
	assert.Equal(t, []string{"2023-01"}, view.LineChart.X)
	assert.Equal(t, []float64{10}, view.LineChart.Y)
	assert.Equal(t, "↑ 3.33%", view.Tiles.MarginRate)
}

func TestAPIHandlers_HandleOptions(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	w, env := serve(t, handlers.HandleOptions, "/api/options?region=East&state=Washington")
	require.Equal(t, http.StatusOK, w.Code)

	var body optionsResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.Len(t, body.Filters.Stages, 6)
	assert.Equal(t, []string{"All", "Massachusetts", "New York"}, body.Filters.Stages[1].Options)
	assert.Equal(t, "All", body.Filters.Stages[1].Selected)
	assert.Equal(t, "2023-01-05", body.Filters.MinDate)
	assert.Equal(t, "2023-01-12", body.Filters.MaxDate)
	assert.Empty(t, body.Warnings)
}

func TestAPIHandlers_HandleKPIs(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	w, env := serve(t, handlers.HandleKPIs, "/api/kpis")
	require.Equal(t, http.StatusOK, w.Code)

	var body kpiResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.InDelta(t, 350.0, body.KPIs.TotalSales, 1e-9)
	assert.Equal(t, 6, body.KPIs.TotalQuantity)
	assert.InDelta(t, 15.0, body.KPIs.TotalProfit, 1e-9)
	assert.Equal(t, 1, body.Quantity.OrdersAboveAvg)
	assert.Equal(t, 1, body.Quantity.OrdersBelowAvg)
}

func TestAPIHandlers_HandleKPIs_InvertedRange(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	w, env := serve(t, handlers.HandleKPIs, "/api/kpis?from=2023-02-01&to=2023-01-01")
	require.Equal(t, http.StatusOK, w.Code)

	var body kpiResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Zero(t, body.KPIs.TotalSales)
	assert.Zero(t, body.KPIs.MarginRate)
	assert.Equal(t, []string{
		"From Date must be earlier than To Date.",
		"No data available for the selected filters and date range.",
	}, body.Warnings)
}

func TestAPIHandlers_HandleTimeSeries(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	w, env := serve(t, handlers.HandleTimeSeries, "/api/timeseries?region=East")
	require.Equal(t, http.StatusOK, w.Code)

	var body timeSeriesResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, []string{"2023-01", "2023-02"}, body.Series.Keys())
	assert.Equal(t, []float64{100, 200}, body.Chart.Y)
	assert.Equal(t, "category", body.Chart.XAxis.Type)
}

func TestAPIHandlers_HandleTopSubCategories(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	w, env := serve(t, handlers.HandleTopSubCategories, "/api/top-subcategories?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var body topResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "Tables", body.Rows[0].Key)
	assert.Equal(t, "Top 1 Sub-Categories by Sales", body.Chart.Title)
}

func TestAPIHandlers_InvalidParameters(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"metric", "metric=revenue", "metric"},
		{"granularity", "granularity=day", "granularity"},
		{"from date", "from=01/05/2023", "from"},
		{"to date", "to=2023-13-01", "to"},
		{"limit not a number", "limit=ten", "limit"},
		{"limit out of range", "limit=0", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := serve(t, handlers.HandleDashboard, "/api/dashboard?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
			assert.Equal(t, tt.field, env.Error.Field)
		})
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	w, env := serve(t, handlers.HandleHealth, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.EqualValues(t, 3, health["records"])
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	w, env := serve(t, handlers.HandleStats, "/admin/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 3, stats["record_count"])
	assert.Equal(t, "2023-02-01", stats["max_order_date"])
}
