package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Dataset is an ordered, column-named table of loosely typed cells.
//
// A nil cell is null. Columns appear in first-seen order, and a row that did not
// carry a column holds null for it. Checks treat a Dataset as read-only.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New returns an empty Dataset with the given columns. Duplicate names are ignored.
func New(columns ...string) *Dataset {
	d := &Dataset{index: make(map[string]int)}
	for _, c := range columns {
		d.addColumn(c)
	}
	return d
}

func (d *Dataset) addColumn(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	d.columns = append(d.columns, name)
	d.index[name] = len(d.columns) - 1
	return len(d.columns) - 1
}

// AppendRecord adds one row. Keys not yet known become new columns; earlier
// rows read them as null.
func (d *Dataset) AppendRecord(keys []string, values []any) error {
	if len(keys) != len(values) {
		return fmt.Errorf("append record: %d keys but %d values", len(keys), len(values))
	}
	for _, k := range keys {
		d.addColumn(k)
	}
	row := make([]any, len(d.columns))
	for i, k := range keys {
		row[d.index[k]] = values[i]
	}
	d.rows = append(d.rows, row)
	return nil
}

// AppendMap adds one row from a map. Map iteration order is random, so new
// columns introduced here are added in sorted order.
func (d *Dataset) AppendMap(rec map[string]any) error {
	keys := sortedKeys(rec)
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = rec[k]
	}
	return d.AppendRecord(keys, values)
}

// Concat appends every row of other, unioning the column sets.
func (d *Dataset) Concat(other *Dataset) {
	if other == nil {
		return
	}
	for _, row := range other.rows {
		keys := make([]string, 0, len(other.columns))
		values := make([]any, 0, len(other.columns))
		for i, c := range other.columns {
			keys = append(keys, c)
			if i < len(row) {
				values = append(values, row[i])
			} else {
				values = append(values, nil)
			}
		}
		_ = d.AppendRecord(keys, values)
	}
	for _, c := range other.columns {
		d.addColumn(c)
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Has reports whether the column exists.
func (d *Dataset) Has(column string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[column]
	return ok
}

// Value returns the raw cell, or nil when the row or column is unknown.
func (d *Dataset) Value(row int, column string) any {
	if d == nil || row < 0 || row >= len(d.rows) {
		return nil
	}
	i, ok := d.index[column]
	if !ok || i >= len(d.rows[row]) {
		return nil
	}
	return d.rows[row][i]
}

// Column returns a copy of one column's cells.
func (d *Dataset) Column(column string) []any {
	out := make([]any, d.Len())
	for r := range out {
		out[r] = d.Value(r, column)
	}
	return out
}

// IsNull reports whether the cell is null or an empty/whitespace-only string.
func (d *Dataset) IsNull(row int, column string) bool {
	return IsNullValue(d.Value(row, column))
}

// IsNullValue reports whether v counts as missing.
func IsNullValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// String returns the cell as text. Nested objects are rendered as JSON.
func (d *Dataset) String(row int, column string) (string, bool) {
	v := d.Value(row, column)
	if IsNullValue(v) {
		return "", false
	}
	switch t := v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// Float parses the cell as a number.
func (d *Dataset) Float(row int, column string) (float64, bool) {
	v := d.Value(row, column)
	if IsNullValue(v) {
		return 0, false
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// portalLayouts are the data portal's CSV export formats, which cast does not know.
var portalLayouts = []string{
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Time parses the cell as a timestamp. Values without a zone are taken as UTC.
// Unparseable values read as null.
func (d *Dataset) Time(row int, column string) (time.Time, bool) {
	v := d.Value(row, column)
	if IsNullValue(v) {
		return time.Time{}, false
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range portalLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, true
			}
		}
		v = s
	}
	t, err := cast.ToTimeInDefaultLocationE(v, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Filter returns a new Dataset holding the rows for which keep returns true.
// Cells are shared with d.
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	out := New(d.Columns()...)
	for r := 0; r < d.Len(); r++ {
		if keep(r) {
			out.rows = append(out.rows, d.rows[r])
		}
	}
	return out
}

// WithColumn returns a shallow copy of d whose named column holds values.
// The column is appended when it does not exist.
func (d *Dataset) WithColumn(column string, values []any) (*Dataset, error) {
	if len(values) != d.Len() {
		return nil, fmt.Errorf("with column %q: %d values for %d rows", column, len(values), d.Len())
	}
	out := New(d.Columns()...)
	i := out.addColumn(column)
	out.rows = make([][]any, d.Len())
	for r := range d.rows {
		row := make([]any, len(out.columns))
		copy(row, d.rows[r])
		row[i] = values[r]
		out.rows[r] = row
	}
	return out, nil
}
