package output

import (
	"fmt"
	"io"

	"chi311/internal/dataset"
	"chi311/internal/quality"
)

// WritePeek prints a quick look at a loaded dataset: the row count, the column
// list and the missing count of every column in column order.
func WritePeek(w io.Writer, label string, d *dataset.Dataset) error {
	cols := d.Columns()
	missing := quality.Missing(d)

	width := 0
	for _, c := range cols {
		if len(c) > width {
			width = len(c)
		}
	}

	if _, err := fmt.Fprintf(w, "Loaded %s rows from %s\n\nColumns (%d):\n", count(d.Len()), label, len(cols)); err != nil {
		return err
	}
	for _, c := range cols {
		if _, err := fmt.Fprintf(w, "  %s\n", c); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "\nMissing values per column:"); err != nil {
		return err
	}
	for _, c := range cols {
		n, _ := missing.Get(c)
		if _, err := fmt.Fprintf(w, "  %-*s %s\n", width, c, count(n)); err != nil {
			return err
		}
	}
	return flushIfPossible(w)
}
