package cfd

import (
	"slices"
)

// Matrix is the sparse date x status occupancy accumulator. Rows and columns
// are created on first use and never removed. A cell is either unset or holds
// the number of items whose active status on that day equals the column.
type Matrix struct {
	cells    map[string]map[string]int
	statuses map[string]struct{}
}

// Table is the dense, chronologically ordered view of a Matrix handed to
// export and chart collaborators.
type Table struct {
	Dates    []string `json:"dates"`
	Statuses []string `json:"statuses"`
	// Counts is indexed [date][status] following Dates and Statuses.
	Counts [][]int `json:"counts"`
}

// NewMatrix creates an empty matrix.
func NewMatrix() *Matrix {
	return &Matrix{
		cells:    make(map[string]map[string]int),
		statuses: make(map[string]struct{}),
	}
}

// Increment adds one to the (date, status) cell, creating the row, the column
// or the cell as needed. A newly created cell starts at 1.
func (m *Matrix) Increment(date, status string) {
	row, ok := m.cells[date]
	if !ok {
		row = make(map[string]int)
		m.cells[date] = row
	}
	row[status]++
	m.statuses[status] = struct{}{}
}

// Get returns the cell value and whether the cell is set.
func (m *Matrix) Get(date, status string) (int, bool) {
	row, ok := m.cells[date]
	if !ok {
		return 0, false
	}
	v, ok := row[status]
	return v, ok
}

// Set writes a cell value, creating the row and the column if needed.
func (m *Matrix) Set(date, status string, value int) {
	row, ok := m.cells[date]
	if !ok {
		row = make(map[string]int)
		m.cells[date] = row
	}
	row[status] = value
	m.statuses[status] = struct{}{}
}

// Dates returns every row key in chronological order.
func (m *Matrix) Dates() []string {
	dates := make([]string, 0, len(m.cells))
	for d := range m.cells {
		dates = append(dates, d)
	}
	// YYYY-MM-DD sorts lexically in chronological order.
	slices.Sort(dates)
	return dates
}

// Statuses returns every column key. Statuses named in order come first in
// that order; the rest follow alphabetically.
func (m *Matrix) Statuses(order []string) []string {
	result := make([]string, 0, len(m.statuses))
	seen := make(map[string]bool, len(order))
	for _, s := range order {
		if _, ok := m.statuses[s]; ok && !seen[s] {
			result = append(result, s)
			seen[s] = true
		}
	}

	var rest []string
	for s := range m.statuses {
		if !seen[s] {
			rest = append(rest, s)
		}
	}
	slices.Sort(rest)
	return append(result, rest...)
}

// Unset counts the (row, column) pairs that hold no value.
func (m *Matrix) Unset() int {
	missing := 0
	for _, row := range m.cells {
		missing += len(m.statuses) - len(row)
	}
	return missing
}

// Table renders the matrix densely. Unset cells appear as 0; call FillGaps
// first to carry values forward instead.
func (m *Matrix) Table(order []string) Table {
	dates := m.Dates()
	statuses := m.Statuses(order)

	counts := make([][]int, len(dates))
	for i, d := range dates {
		row := make([]int, len(statuses))
		for j, s := range statuses {
			row[j], _ = m.Get(d, s)
		}
		counts[i] = row
	}

	return Table{Dates: dates, Statuses: statuses, Counts: counts}
}

// Column returns the values of one status across all dates, or nil if the
// status is not part of the table.
func (t Table) Column(status string) []int {
	idx := slices.Index(t.Statuses, status)
	if idx < 0 {
		return nil
	}
	col := make([]int, len(t.Dates))
	for i, row := range t.Counts {
		col[i] = row[idx]
	}
	return col
}

// Value returns the count for (date, status) and whether both keys exist.
func (t Table) Value(date, status string) (int, bool) {
	i := slices.Index(t.Dates, date)
	j := slices.Index(t.Statuses, status)
	if i < 0 || j < 0 {
		return 0, false
	}
	return t.Counts[i][j], true
}
