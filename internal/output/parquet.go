package output

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"time"

	"chi311/internal/dataset"

	"github.com/parquet-go/parquet-go"
)

// timestampLayout is how normalised date cells are stored.
const timestampLayout = time.RFC3339

const parquetBatch = 1024

// NormalizeDates rewrites every date-candidate column to UTC RFC3339 text.
// Cells that do not parse keep their original value.
func NormalizeDates(d *dataset.Dataset) (*dataset.Dataset, error) {
	out := d
	for _, c := range dataset.DateColumnCandidates {
		if !out.Has(c) {
			continue
		}
		values := make([]any, out.Len())
		for r := range values {
			if t, ok := out.Time(r, c); ok {
				values[r] = t.Format(timestampLayout)
			} else {
				values[r] = out.Value(r, c)
			}
		}
		var err error
		if out, err = out.WithColumn(c, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// parquetSchema maps every column to an optional UTF-8 string. Parquet groups
// order their leaves by name, so the returned names give each leaf's column index.
func parquetSchema(columns []string) (*parquet.Schema, []string) {
	group := parquet.Group{}
	for _, c := range columns {
		group[c] = parquet.Optional(parquet.String())
	}
	names := append([]string(nil), columns...)
	sort.Strings(names)
	return parquet.NewSchema("service_request", group), names
}

// WriteParquet persists d as a Parquet file at path. The file appears
// atomically; on error no file is left behind.
func WriteParquet(path string, d *dataset.Dataset) error {
	if len(d.Columns()) == 0 {
		return &WriteError{Path: path, Err: fmt.Errorf("dataset has no columns")}
	}
	schema, names := parquetSchema(d.Columns())

	return writeAtomic(path, func(f *os.File) error {
		bw := bufio.NewWriter(f)
		w := parquet.NewGenericWriter[any](bw, schema)

		batch := make([]parquet.Row, 0, parquetBatch)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if _, err := w.WriteRows(batch); err != nil {
				return err
			}
			batch = batch[:0]
			return nil
		}

		for r := 0; r < d.Len(); r++ {
			row := make(parquet.Row, len(names))
			for i, c := range names {
				if s, ok := d.String(r, c); ok {
					row[i] = parquet.ValueOf(s).Level(0, 1, i)
				} else {
					row[i] = parquet.NullValue().Level(0, 0, i)
				}
			}
			batch = append(batch, row)
			if len(batch) == parquetBatch {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return bw.Flush()
	})
}
