package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/store"
)

var kpiTemplate = template.Must(template.New("kpis").Parse(`
<div id="kpi-tiles" class="kpi-row">
<div class="kpi-tile"><span class="kpi-label">Total Sales</span><span class="kpi-value">{{.Sales}}</span></div>
<div class="kpi-tile"><span class="kpi-label">Quantity Sold</span><span class="kpi-value">{{.Quantity}}</span>
<span class="kpi-delta above">{{.AboveAvgLabel}}</span><span class="kpi-delta below">{{.BelowAvgLabel}}</span></div>
<div class="kpi-tile"><span class="kpi-label">Total Profit</span><span class="kpi-value">{{.Profit}}</span></div>
<div class="kpi-tile"><span class="kpi-label">Margin Rate</span><span class="kpi-value {{.MarginClass}}">{{.MarginRate}}</span></div>
</div>`))

var filtersTemplate = template.Must(template.New("filters").Parse(`
<div id="filter-controls" class="filters">
{{range .Stages}}<label>{{.Label}}
<select data-bind="{{.Signal}}">{{$sel := .Selected}}{{range .Options}}
<option value="{{.}}"{{if eq . $sel}} selected{{end}}>{{.}}</option>{{end}}
</select></label>
{{end}}<label>From Date<input type="date" data-bind="fromDate" min="{{.MinDate}}" max="{{.MaxDate}}" value="{{.FromDate}}"></label>
<label>To Date<input type="date" data-bind="toDate" min="{{.MinDate}}" max="{{.MaxDate}}" value="{{.ToDate}}"></label>
</div>`))

var warningsTemplate = template.Must(template.New("warnings").Parse(`
<div id="warnings">{{range .}}<div class="warning">{{.}}</div>{{end}}</div>`))

// stageSignals maps each filter stage to the client signal bound to its select.
var stageSignals = map[store.Column]string{
	store.ColRegion:   "region",
	store.ColState:    "state",
	store.ColCity:     "city",
	store.ColSegment:  "segment",
	store.ColCategory: "category",
	store.ColShipMode: "shipMode",
}

// dashboardSignals is the client control state sent with every request.
type dashboardSignals struct {
	Region      string `json:"region"`
	State       string `json:"state"`
	City        string `json:"city"`
	Segment     string `json:"segment"`
	Category    string `json:"category"`
	ShipMode    string `json:"shipMode"`
	FromDate    string `json:"fromDate"`
	ToDate      string `json:"toDate"`
	Metric      string `json:"metric"`
	Granularity string `json:"granularity"`
	// FilterKey echoes the categorical selection the dates were resolved for.
	FilterKey string `json:"filterKey"`
}

type stageView struct {
	Label    string
	Signal   string
	Options  []string
	Selected string
}

type filtersView struct {
	Stages   []stageView
	FromDate string
	ToDate   string
	MinDate  string
	MaxDate  string
}

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleDashboard recomputes the whole view from the client's signals. The
// filter controls, KPI tiles and warnings are patched as HTML; the resolved
// selection and both charts go back as signals.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.Wrap(err, errors.CodeValidation, "invalid signals"), observability.GetRequestID(r.Context()))
		return
	}

	req, err := signals.request()
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	view := h.dashboard.Build(r.Context(), req)

	sse := datastar.NewSSE(w, r)

	for _, render := range []func(services.View) (string, error){renderFilters, renderKPIs, renderWarnings} {
		html, err := render(view)
		if err != nil {
			h.logger.Error("render dashboard fragment", "error", err)
			return
		}
		sse.PatchElements(html)
	}

	jsonData, err := json.Marshal(viewSignals(view))
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (s dashboardSignals) request() (services.Request, error) {
	req := services.Request{
		Selection: services.Selection{
			Region:   s.Region,
			State:    s.State,
			City:     s.City,
			Segment:  s.Segment,
			Category: s.Category,
			ShipMode: s.ShipMode,
		},
		Limit: services.DefaultTopN,
	}

	var err error
	if req.Selection.FromDate, err = services.ParseDate(s.FromDate); err != nil {
		return req, errors.InvalidField("fromDate", err)
	}
	if req.Selection.ToDate, err = services.ParseDate(s.ToDate); err != nil {
		return req, errors.InvalidField("toDate", err)
	}
	// Dates picked under another categorical selection fall back to the
	// defaults of the new one.
	if s.FilterKey != req.Selection.FilterKey() {
		req.Selection.FromDate, req.Selection.ToDate = time.Time{}, time.Time{}
	}
	if req.Metric, err = services.ParseMetric(s.Metric); err != nil {
		return req, errors.InvalidField("metric", err)
	}
	if req.Granularity, err = services.ParseGranularity(s.Granularity); err != nil {
		return req, errors.InvalidField("granularity", err)
	}
	return req, nil
}

// viewSignals echoes the resolved controls so reset stages snap back to All
// and the dates carry the key of the selection they belong to.
func viewSignals(view services.View) map[string]any {
	signals := map[string]any{
		"fromDate":    view.Filters.FromDate,
		"toDate":      view.Filters.ToDate,
		"metric":      view.Metric,
		"granularity": view.Granularity,
		"filterKey":   view.Filters.Key,
		"lineChart":   view.LineChart,
		"barChart":    view.BarChart,
	}
	for _, stage := range view.Filters.Stages {
		signals[stageSignals[stage.Column]] = stage.Selected
	}
	return signals
}

func renderFilters(view services.View) (string, error) {
	data := filtersView{
		FromDate: view.Filters.FromDate,
		ToDate:   view.Filters.ToDate,
		MinDate:  view.Filters.MinDate,
		MaxDate:  view.Filters.MaxDate,
	}
	for _, stage := range view.Filters.Stages {
		data.Stages = append(data.Stages, stageView{
			Label:    string(stage.Column),
			Signal:   stageSignals[stage.Column],
			Options:  stage.Options,
			Selected: stage.Selected,
		})
	}
	return execute(filtersTemplate, data)
}

func renderKPIs(view services.View) (string, error) {
	return execute(kpiTemplate, view.Tiles)
}

func renderWarnings(view services.View) (string, error) {
	return execute(warningsTemplate, view.Warnings)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	err := tmpl.Execute(&buf, data)
	return buf.String(), err
}
