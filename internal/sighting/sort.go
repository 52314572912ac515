package sighting

import (
	"cmp"
	"slices"
	"strings"
)

// Column identifies a sortable field of a Record.
type Column int

const (
	ColumnID Column = iota
	ColumnDateTime
	ColumnSpecies
	ColumnDescription
	ColumnCount
)

// Columns lists the columns in table order.
var Columns = []Column{ColumnID, ColumnDateTime, ColumnSpecies, ColumnDescription, ColumnCount}

var columnNames = map[Column]string{
	ColumnID:          "ID",
	ColumnDateTime:    "DateTime",
	ColumnSpecies:     "Species",
	ColumnDescription: "Description",
	ColumnCount:       "Count",
}

// String returns the header name of the column.
func (c Column) String() string {
	if name, ok := columnNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Key returns the lower-cased field name the column sorts by.
func (c Column) Key() string {
	return strings.ToLower(c.String())
}

// Valid reports whether c is a known column.
func (c Column) Valid() bool {
	_, ok := columnNames[c]
	return ok
}

// ParseColumn maps a header or field name to a column, ignoring case.
func ParseColumn(name string) (Column, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Columns {
		if strings.EqualFold(c.String(), name) {
			return c, true
		}
	}
	return 0, false
}

// SortState is the active sort column and direction.
type SortState struct {
	Column    Column `json:"column" yaml:"column"`
	Ascending bool   `json:"ascending" yaml:"ascending"`
}

// DefaultSortState sorts by ID ascending.
func DefaultSortState() SortState {
	return SortState{Column: ColumnID, Ascending: true}
}

// Select applies the header click rule: the active column flips direction,
// any other column starts ascending. Unknown columns leave the state as is.
func (s SortState) Select(column Column) SortState {
	if !column.Valid() {
		return s
	}
	if column == s.Column {
		return SortState{Column: column, Ascending: !s.Ascending}
	}
	return SortState{Column: column, Ascending: true}
}

// Indicator returns the arrow shown next to the active column header.
func (s SortState) Indicator(column Column) string {
	if column != s.Column {
		return ""
	}
	if s.Ascending {
		return "▲"
	}
	return "▼"
}

// Apply sorts records by the state.
func (s SortState) Apply(records []Record) []Record {
	return Sort(records, s.Column, s.Ascending)
}

// Sort returns a stably sorted copy of records. Equal keys keep their input
// order in both directions. An unknown column returns an unsorted copy.
func Sort(records []Record, column Column, ascending bool) []Record {
	sorted := slices.Clone(records)
	compare := comparator(column)
	if compare == nil {
		return sorted
	}
	if ascending {
		slices.SortStableFunc(sorted, compare)
	} else {
		slices.SortStableFunc(sorted, func(a, b Record) int { return compare(b, a) })
	}
	return sorted
}

func comparator(column Column) func(a, b Record) int {
	switch column {
	case ColumnID:
		return func(a, b Record) int { return cmp.Compare(a.ID, b.ID) }
	case ColumnDateTime:
		return func(a, b Record) int { return a.DateTime.Compare(b.DateTime) }
	case ColumnSpecies:
		return func(a, b Record) int { return strings.Compare(a.Species, b.Species) }
	case ColumnDescription:
		return func(a, b Record) int { return strings.Compare(a.Description, b.Description) }
	case ColumnCount:
		return func(a, b Record) int { return cmp.Compare(a.Count, b.Count) }
	default:
		return nil
	}
}
