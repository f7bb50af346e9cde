package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore-dashboard/internal/services"
)

func sseRequest(signals string) *http.Request {
	target := "/sse/dashboard"
	if signals != "" {
		target += "?" + url.Values{"datastar": {signals}}.Encode()
	}
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func TestNewSSEHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	logger := testLogger()

	handlers := NewSSEHandlers(dashboard, logger)

	require.NotNil(t, handlers)
	assert.Same(t, dashboard, handlers.dashboard)
	assert.Same(t, logger, handlers.logger)
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"region":"East","metric":"Sales","granularity":"Week"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	for _, want := range []string{
		"datastar-patch-elements",
		"datastar-patch-signals",
		`id="filter-controls"`,
		`id="kpi-tiles"`,
		`id="warnings"`,
		`<option value="East" selected>East</option>`,
		`"region":"East"`,
		`"state":"All"`,
		`"fromDate":"2023-01-05"`,
		`"toDate":"2023-01-12"`,
		`"x":["2023-01","2023-02"]`,
		"↑ 3.33%",
	} {
		assert.Contains(t, body, want)
	}
}

func TestSSEHandlers_HandleDashboard_NoSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(""))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"region":"All"`)
	assert.Contains(t, body, `"metric":"Sales"`)
	assert.Contains(t, body, `"granularity":"Week"`)
}

func TestSSEHandlers_HandleDashboard_ResetsInvalidStage(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"region":"West","city":"Boston"}`))

	body := w.Body.String()
	assert.Contains(t, body, `"city":"All"`)
	assert.Contains(t, body, `<option value="Seattle">Seattle</option>`)
	assert.NotContains(t, body, `<option value="Boston"`)
}

func TestSSEHandlers_HandleDashboard_Warnings(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"fromDate":"2023-02-01","toDate":"2023-01-01","filterKey":"All|All|All|All|All|All"}`))

	body := w.Body.String()
	assert.Contains(t, body, "From Date must be earlier than To Date.")
	assert.Contains(t, body, "No data available for the selected filters and date range.")
}

// echoedSignal pulls one string signal out of a patch-signals event.
func echoedSignal(t *testing.T, body, name string) string {
	t.Helper()
	m := regexp.MustCompile(`"` + name + `":"([^"]*)"`).FindStringSubmatch(body)
	require.NotNil(t, m, "signal %s not echoed", name)
	return m[1]
}

func TestSSEHandlers_HandleDashboard_DatesFollowCategoricalChange(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"region":"West"}`))
	first := w.Body.String()
	fromDate := echoedSignal(t, first, "fromDate")
	toDate := echoedSignal(t, first, "toDate")
	filterKey := echoedSignal(t, first, "filterKey")
	assert.Equal(t, "2023-02-01", fromDate)
	assert.Equal(t, "2023-02-01", toDate)

	// The client sends back everything it was given, with only the region changed.
	next, err := json.Marshal(dashboardSignals{
		Region:    "East",
		FromDate:  fromDate,
		ToDate:    toDate,
		FilterKey: filterKey,
	})
	require.NoError(t, err)

	w = httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(string(next)))
	second := w.Body.String()

	assert.NotContains(t, second, "No data available for the selected filters and date range.")
	assert.Contains(t, second, "↑ 3.33%")
	assert.Equal(t, "2023-01-05", echoedSignal(t, second, "fromDate"))
	assert.Equal(t, "2023-01-12", echoedSignal(t, second, "toDate"))
	assert.NotEqual(t, filterKey, echoedSignal(t, second, "filterKey"))
}

func TestSSEHandlers_HandleDashboard_KeepsDatesForSameFilters(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, sseRequest(`{"region":"East","fromDate":"2023-01-10","toDate":"2023-01-12","filterKey":"East|All|All|All|All|All"}`))

	body := w.Body.String()
	assert.Equal(t, "2023-01-10", echoedSignal(t, body, "fromDate"))
	assert.Contains(t, body, "↓ -5.00%")
}

func TestSSEHandlers_HandleDashboard_InvalidSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	tests := []struct {
		name    string
		signals string
	}{
		{"malformed json", `{"region":`},
		{"unknown metric", `{"metric":"Revenue"}`},
		{"bad date", `{"fromDate":"5 Jan 2023"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handlers.HandleDashboard(w, sseRequest(tt.signals))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestRenderKPIs(t *testing.T) {
	view := createTestDashboard().Build(t.Context(), services.Request{
		Selection: services.Selection{Region: "East"},
	})

	html, err := renderKPIs(view)
	require.NoError(t, err)

	for _, want := range []string{
		"Total Sales", "Quantity Sold", "Total Profit", "Margin Rate",
		"margin-rate-positive", "▲ 1 orders above avg", "▼ 1 orders below avg",
	} {
		assert.Contains(t, html, want)
	}
}

func TestRenderFilters(t *testing.T) {
	view := createTestDashboard().Build(t.Context(), services.Request{})

	html, err := renderFilters(view)
	require.NoError(t, err)

	assert.Equal(t, 6, strings.Count(html, "<select"))
	assert.Contains(t, html, `data-bind="shipMode"`)
	assert.Contains(t, html, `min="2023-01-05"`)
	assert.Contains(t, html, `max="2023-02-01"`)
	assert.Contains(t, html, `<option value="All" selected>All</option>`)
}

func TestViewSignals(t *testing.T) {
	view := createTestDashboard().Build(t.Context(), services.Request{
		Selection: services.Selection{ShipMode: "First Class"},
	})

	signals := viewSignals(view)
	assert.Equal(t, "First Class", signals["shipMode"])
	assert.Equal(t, "All", signals["region"])
	assert.Equal(t, "2023-01-12", signals["fromDate"])
	assert.Contains(t, signals, "lineChart")
	assert.Contains(t, signals, "barChart")
}
