package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/store"
)

const dateLayout = "2006-01-02"

// Request is the complete control state of one dashboard interaction.
type Request struct {
	Selection   Selection
	Metric      Metric
	Granularity Granularity
	Limit       int
}

// FilterState is the resolved selection as the controls should show it.
type FilterState struct {
	Key      string         `json:"key"`
	Stages   []StageOptions `json:"stages"`
	FromDate string         `json:"from_date"`
	ToDate   string         `json:"to_date"`
	MinDate  string         `json:"min_date"`
	MaxDate  string         `json:"max_date"`
}

// View is everything the presentation layer renders for one interaction.
type View struct {
	Filters     FilterState           `json:"filters"`
	Metric      Metric                `json:"metric"`
	Granularity Granularity           `json:"granularity"`
	RowCount    int                   `json:"row_count"`
	KPIs        models.KPIs           `json:"kpis"`
	Quantity    models.QuantitySplit  `json:"quantity"`
	Tiles       models.KPITiles       `json:"tiles"`
	Series      Series                `json:"series"`
	LineChart   LineChart             `json:"line_chart"`
	Top         []models.AggregateRow `json:"top"`
	BarChart    BarChart              `json:"bar_chart"`
	Warnings    []string              `json:"warnings"`
}

// Dashboard recomputes every view from the shared immutable table. It holds
// no per-session state, so one instance serves all clients.
type Dashboard struct {
	table  *store.Table
	logger *slog.Logger
	tracer trace.Tracer
}

func NewDashboard(table *store.Table, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		table:  table,
		logger: logger,
		tracer: otel.Tracer("superstore-dashboard/services"),
	}
}

func (d *Dashboard) Table() *store.Table {
	return d.table
}

// Resolve runs only the filter chain.
func (d *Dashboard) Resolve(sel Selection) Resolved {
	return Resolve(d.table, sel)
}

// Build runs the filter chain and all three aggregators.
func (d *Dashboard) Build(ctx context.Context, req Request) View {
	_, span := d.tracer.Start(ctx, "dashboard.build")
	defer span.End()

	if req.Metric == "" {
		req.Metric = MetricSales
	}
	if req.Granularity == "" {
		req.Granularity = Week
	}
	if req.Limit <= 0 {
		req.Limit = DefaultTopN
	}

	res := d.Resolve(req.Selection)
	if res.Selection.FromDate.After(res.Selection.ToDate) {
		d.logger.Warn("invalid date range",
			"from", res.Selection.FromDate.Format(dateLayout),
			"to", res.Selection.ToDate.Format(dateLayout),
		)
	}
	if len(res.Rows) == 0 {
		d.logger.Debug("empty working set", "selection", res.Selection)
	}

	kpis := ComputeKPIs(res.Rows)
	split := SplitQuantity(res.Rows)
	series := BucketSeries(res.Rows, req.Granularity, req.Metric)
	top := TopSubCategories(res.Rows, req.Metric, req.Limit)

	span.SetAttributes(
		attribute.Int("dashboard.rows", len(res.Rows)),
		attribute.String("dashboard.metric", string(req.Metric)),
		attribute.String("dashboard.granularity", string(req.Granularity)),
		attribute.Int("dashboard.buckets", len(series.Points)),
	)

	return View{
		Filters:     filterState(res),
		Metric:      req.Metric,
		Granularity: req.Granularity,
		RowCount:    len(res.Rows),
		KPIs:        kpis,
		Quantity:    split,
		Tiles:       Tiles(kpis, split),
		Series:      series,
		LineChart:   NewLineChart(series),
		Top:         top,
		BarChart:    NewBarChart(top, req.Metric, req.Limit),
		Warnings:    nonNil(res.Warnings),
	}
}

// Filters resolves the selection without aggregating the working set.
func (d *Dashboard) Filters(sel Selection) (FilterState, []string) {
	res := d.Resolve(sel)
	return filterState(res), nonNil(res.Warnings)
}

func filterState(res Resolved) FilterState {
	return FilterState{
		Key:      res.Selection.FilterKey(),
		Stages:   res.Stages,
		FromDate: res.Selection.FromDate.Format(dateLayout),
		ToDate:   res.Selection.ToDate.Format(dateLayout),
		MinDate:  res.MinDate.Format(dateLayout),
		MaxDate:  res.MaxDate.Format(dateLayout),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Stats summarises the loaded table for monitoring.
func (d *Dashboard) Stats() map[string]any {
	minDate, maxDate, _ := d.table.DateRange()
	return map[string]any{
		"record_count":   d.table.Len(),
		"source":         d.table.Source(),
		"loaded_at":      d.table.LoadedAt().Format(time.RFC3339),
		"regions":        len(d.table.Distinct(store.ColRegion)),
		"sub_categories": len(d.table.Distinct(store.ColSubCategory)),
		"min_order_date": minDate.Format(dateLayout),
		"max_order_date": maxDate.Format(dateLayout),
	}
}

// ParseDate reads a YYYY-MM-DD control value. Empty input is the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
