package store

import (
	"slices"
	"time"

	"superstore-dashboard/internal/models"
)

// Column names a categorical column of the order table.
type Column string

const (
	ColRegion      Column = "Region"
	ColState       Column = "State"
	ColCity        Column = "City"
	ColSegment     Column = "Segment"
	ColCategory    Column = "Category"
	ColSubCategory Column = "Sub-Category"
	ColShipMode    Column = "Ship Mode"
)

// Value returns the column's value for a single order.
func (c Column) Value(o models.Order) string {
	switch c {
	case ColRegion:
		return o.Region
	case ColState:
		return o.State
	case ColCity:
		return o.City
	case ColSegment:
		return o.Segment
	case ColCategory:
		return o.Category
	case ColSubCategory:
		return o.SubCategory
	case ColShipMode:
		return o.ShipMode
	default:
		return ""
	}
}

// Table is the immutable in-memory dataset. It is safe for concurrent
// readers because nothing writes to it after construction.
type Table struct {
	rows     []models.Order
	source   string
	loadedAt time.Time
}

func NewTable(rows []models.Order, source string) *Table {
	return &Table{
		rows:     slices.Clone(rows),
		source:   source,
		loadedAt: time.Now(),
	}
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of every row so callers can narrow it freely.
func (t *Table) Rows() []models.Order {
	return slices.Clone(t.rows)
}

func (t *Table) Source() string {
	return t.source
}

func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// Distinct returns the sorted, duplicate-free non-empty values of a column.
func (t *Table) Distinct(c Column) []string {
	return DistinctValues(t.rows, c)
}

// DateRange returns the min and max order date. ok is false for an empty table.
func (t *Table) DateRange() (minDate, maxDate time.Time, ok bool) {
	return DateRange(t.rows)
}

// DistinctValues returns the sorted unique non-empty values of c over rows.
func DistinctValues(rows []models.Order, c Column) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, o := range rows {
		v := c.Value(o)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}

func DateRange(rows []models.Order) (minDate, maxDate time.Time, ok bool) {
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	minDate, maxDate = rows[0].OrderDate, rows[0].OrderDate
	for _, o := range rows[1:] {
		if o.OrderDate.Before(minDate) {
			minDate = o.OrderDate
		}
		if o.OrderDate.After(maxDate) {
			maxDate = o.OrderDate
		}
	}
	return minDate, maxDate, true
}
