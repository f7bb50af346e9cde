package services

import (
	"slices"
	"strings"
	"time"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/store"
)

// All is the no-op value of a categorical filter stage.
const All = "All"

const (
	warnInvalidRange = "From Date must be earlier than To Date."
	warnEmptyResult  = "No data available for the selected filters and date range."
)

// FilterStages lists the categorical stages in dependency order.
var FilterStages = []store.Column{
	store.ColRegion,
	store.ColState,
	store.ColCity,
	store.ColSegment,
	store.ColCategory,
	store.ColShipMode,
}

// Selection is the full filter state for one interaction. Empty categorical
// values mean All; zero dates mean the default bound.
type Selection struct {
	Region   string
	State    string
	City     string
	Segment  string
	Category string
	ShipMode string
	FromDate time.Time
	ToDate   time.Time
}

func (s Selection) Value(c store.Column) string {
	var v string
	switch c {
	case store.ColRegion:
		v = s.Region
	case store.ColState:
		v = s.State
	case store.ColCity:
		v = s.City
	case store.ColSegment:
		v = s.Segment
	case store.ColCategory:
		v = s.Category
	case store.ColShipMode:
		v = s.ShipMode
	}
	if v == "" {
		return All
	}
	return v
}

// FilterKey identifies the categorical part of the selection. Two selections
// with the same key have the same date defaults.
func (s Selection) FilterKey() string {
	values := make([]string, len(FilterStages))
	for i, col := range FilterStages {
		values[i] = s.Value(col)
	}
	return strings.Join(values, "|")
}

func (s *Selection) set(c store.Column, v string) {
	switch c {
	case store.ColRegion:
		s.Region = v
	case store.ColState:
		s.State = v
	case store.ColCity:
		s.City = v
	case store.ColSegment:
		s.Segment = v
	case store.ColCategory:
		s.Category = v
	case store.ColShipMode:
		s.ShipMode = v
	}
}

// StageOptions is the candidate option list of one stage, "All" first.
type StageOptions struct {
	Column   store.Column `json:"column"`
	Options  []string     `json:"options"`
	Selected string       `json:"selected"`
}

// Resolved is a selection after invalid values were reset to All and the
// date bounds defaulted, together with the working set it produces.
type Resolved struct {
	Selection Selection
	Stages    []StageOptions
	MinDate   time.Time
	MaxDate   time.Time
	Rows      []models.Order
	Warnings  []string
}

// Resolve runs the filter chain. Each stage's options come from the output of
// the stages before it, and a selected value missing from those options falls
// back to All. Unset dates default to the categorical working set's extent,
// and the result is every row of that set which Matches the final selection.
func Resolve(table *store.Table, sel Selection) Resolved {
	res := Resolved{Stages: make([]StageOptions, 0, len(FilterStages))}

	rows := table.Rows()
	for _, col := range FilterStages {
		options := stageOptions(rows, col)
		value := sel.Value(col)
		if !slices.Contains(options, value) {
			value = All
		}
		sel.set(col, value)

		res.Stages = append(res.Stages, StageOptions{
			Column:   col,
			Options:  options,
			Selected: value,
		})
		rows = applyStage(rows, col, value)
	}

	minDate, maxDate, ok := store.DateRange(rows)
	if !ok {
		minDate, maxDate, _ = table.DateRange()
	}
	res.MinDate, res.MaxDate = startOfDay(minDate), startOfDay(maxDate)

	if sel.FromDate.IsZero() {
		sel.FromDate = res.MinDate
	}
	if sel.ToDate.IsZero() {
		sel.ToDate = res.MaxDate
	}
	if sel.FromDate.After(sel.ToDate) {
		res.Warnings = append(res.Warnings, warnInvalidRange)
	}

	res.Rows = make([]models.Order, 0, len(rows))
	for _, o := range rows {
		if Matches(o, sel) {
			res.Rows = append(res.Rows, o)
		}
	}
	if len(res.Rows) == 0 {
		res.Warnings = append(res.Warnings, warnEmptyResult)
	}
	res.Selection = sel
	return res
}

// Matches reports whether a single order satisfies every stage at once. Both
// dates must be set, as they are on a Resolved selection.
func Matches(o models.Order, sel Selection) bool {
	for _, col := range FilterStages {
		if v := sel.Value(col); v != All && col.Value(o) != v {
			return false
		}
	}
	return inRange(o.OrderDate, startOfDay(sel.FromDate), startOfDay(sel.ToDate))
}

// CandidateOptions returns the option list for stage, given the selections of
// the stages before it.
func CandidateOptions(table *store.Table, sel Selection, stage store.Column) []string {
	rows := table.Rows()
	for _, col := range FilterStages {
		if col == stage {
			return stageOptions(rows, col)
		}
		rows = applyStage(rows, col, sel.Value(col))
	}
	return nil
}

func stageOptions(rows []models.Order, col store.Column) []string {
	return append([]string{All}, store.DistinctValues(rows, col)...)
}

func applyStage(rows []models.Order, col store.Column, value string) []models.Order {
	if value == All {
		return rows
	}
	out := make([]models.Order, 0, len(rows))
	for _, o := range rows {
		if col.Value(o) == value {
			out = append(out, o)
		}
	}
	return out
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
