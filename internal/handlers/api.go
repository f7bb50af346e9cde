package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
)

const maxLimit = 50

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

type optionsResponse struct {
	Filters  services.FilterState `json:"filters"`
	Warnings []string             `json:"warnings"`
}

type kpiResponse struct {
	KPIs     models.KPIs          `json:"kpis"`
	Quantity models.QuantitySplit `json:"quantity"`
	Tiles    models.KPITiles      `json:"tiles"`
	Warnings []string             `json:"warnings"`
}

type timeSeriesResponse struct {
	Series   services.Series    `json:"series"`
	Chart    services.LineChart `json:"chart"`
	Warnings []string           `json:"warnings"`
}

type topResponse struct {
	Rows     []models.AggregateRow `json:"rows"`
	Chart    services.BarChart     `json:"chart"`
	Warnings []string              `json:"warnings"`
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view := h.dashboard.Build(r.Context(), req)
	errors.WriteSuccessWithHeaders(w, view, cacheHeaders)
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filters, warnings := h.dashboard.Filters(req.Selection)
	errors.WriteSuccessWithHeaders(w, optionsResponse{
		Filters:  filters,
		Warnings: warnings,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view := h.dashboard.Build(r.Context(), req)
	errors.WriteSuccessWithHeaders(w, kpiResponse{
		KPIs:     view.KPIs,
		Quantity: view.Quantity,
		Tiles:    view.Tiles,
		Warnings: view.Warnings,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view := h.dashboard.Build(r.Context(), req)
	errors.WriteSuccessWithHeaders(w, timeSeriesResponse{
		Series:   view.Series,
		Chart:    view.LineChart,
		Warnings: view.Warnings,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleTopSubCategories(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view := h.dashboard.Build(r.Context(), req)
	errors.WriteSuccessWithHeaders(w, topResponse{
		Rows:     view.Top,
		Chart:    view.BarChart,
		Warnings: view.Warnings,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"records":   h.dashboard.Table().Len(),
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.dashboard.Stats()

	errors.WriteSuccess(w, stats)
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// parseRequest reads the dashboard controls from the query string. Absent
// parameters take their defaults; malformed ones are validation errors.
func parseRequest(r *http.Request) (services.Request, error) {
	q := r.URL.Query()

	req := services.Request{
		Selection: services.Selection{
			Region:   q.Get("region"),
			State:    q.Get("state"),
			City:     q.Get("city"),
			Segment:  q.Get("segment"),
			Category: q.Get("category"),
			ShipMode: q.Get("ship_mode"),
		},
	}

	var err error
	if req.Selection.FromDate, err = services.ParseDate(q.Get("from")); err != nil {
		return req, errors.InvalidField("from", err)
	}
	if req.Selection.ToDate, err = services.ParseDate(q.Get("to")); err != nil {
		return req, errors.InvalidField("to", err)
	}
	if req.Metric, err = services.ParseMetric(q.Get("metric")); err != nil {
		return req, errors.InvalidField("metric", err)
	}
	if req.Granularity, err = services.ParseGranularity(q.Get("granularity")); err != nil {
		return req, errors.InvalidField("granularity", err)
	}
	if req.Limit, err = parseLimit(q.Get("limit")); err != nil {
		return req, errors.InvalidField("limit", err)
	}
	return req, nil
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return services.DefaultTopN, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return n, nil
}
