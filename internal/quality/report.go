package quality

import (
	"time"

	"chi311/internal/dataset"
)

// Report aggregates every check over one dataset. It is assembled once from
// the independent check results and never mutated afterwards.
type Report struct {
	Source  string                  `json:"source"`
	Rows    int                     `json:"rows"`
	Columns []string                `json:"columns"`
	Fields  dataset.ResolvedColumns `json:"fields"`

	Missing    MissingCounts `json:"missing"`
	Uniqueness Uniqueness    `json:"uniqueness"`
	Temporal   Temporal      `json:"temporal"`
	Spatial    Spatial       `json:"spatial"`

	LegacyColumn string      `json:"legacy_column,omitempty"`
	Legacy       ValueCounts `json:"legacy,omitempty"`

	InfoOnly InfoOnly `json:"info_only"`
}

// Options controls a Run.
type Options struct {
	// Source describes where the dataset came from, e.g. "API (limit=1000)".
	Source string
	// Now is the reference time for future-date checks. Zero means time.Now().
	Now      time.Time
	InfoOnly InfoOnlyOptions
}

// Run executes every check against d and merges the results into one Report.
func Run(d *dataset.Dataset, opts Options) Report {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	cols := d.ResolveAll()

	srCol, _ := cols.Get(dataset.FieldSRNumber)
	createdCol, _ := cols.Get(dataset.FieldCreatedDate)
	closedCol, _ := cols.Get(dataset.FieldClosedDate)
	legacyCol, _ := cols.Get(dataset.FieldLegacy)

	return Report{
		Source:       opts.Source,
		Rows:         d.Len(),
		Columns:      d.Columns(),
		Fields:       cols,
		Missing:      Missing(d),
		Uniqueness:   Duplicates(d, srCol),
		Temporal:     TemporalAnomalies(d, createdCol, closedCol, now),
		Spatial:      SpatialAnomalies(d, cols),
		LegacyColumn: legacyCol,
		Legacy:       Tabulate(d, legacyCol),
		InfoOnly:     InformationOnly(d, cols, opts.InfoOnly),
	}
}

// Rate returns n/d, or 0 when d is zero.
func Rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
