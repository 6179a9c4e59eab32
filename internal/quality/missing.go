package quality

import (
	"sort"

	"chi311/internal/dataset"
)

// ColumnMissing is the number of null or empty cells in one column.
type ColumnMissing struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// MissingCounts is ordered by Count descending; ties keep dataset column order.
type MissingCounts []ColumnMissing

// Get returns the missing count for a column.
func (m MissingCounts) Get(column string) (int, bool) {
	for _, c := range m {
		if c.Column == column {
			return c.Count, true
		}
	}
	return 0, false
}

// Top returns at most n entries.
func (m MissingCounts) Top(n int) MissingCounts {
	if n < 0 || n >= len(m) {
		return m
	}
	return m[:n]
}

// Missing counts null or empty cells in every column.
func Missing(d *dataset.Dataset) MissingCounts {
	cols := d.Columns()
	out := make(MissingCounts, len(cols))
	for i, c := range cols {
		n := 0
		for r := 0; r < d.Len(); r++ {
			if d.IsNull(r, c) {
				n++
			}
		}
		out[i] = ColumnMissing{Column: c, Count: n}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
