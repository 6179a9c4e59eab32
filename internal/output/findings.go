package output

import (
	"fmt"
	"sort"
	"strings"

	"chi311/internal/dataset"
	"chi311/internal/quality"
)

// FindingsTopMissing is how many columns the missing-value table lists.
const FindingsTopMissing = 20

// RenderFindings renders the exploratory data-quality findings document.
// Output is deterministic for a given report.
func RenderFindings(rep quality.Report) []byte {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\n")
	}

	line("# Chicago 311 Service Requests – Data Quality Findings")
	line("")

	cols := append([]string(nil), rep.Columns...)
	sort.Strings(cols)
	line("## 1. Schema & Data Types")
	line("- Dataset source: **%s**", rep.Source)
	line("- Number of rows pulled: **%s**", count(rep.Rows))
	line("- Columns present (%d): `%s`", len(cols), strings.Join(cols, ", "))
	line("")

	line("## 2. Missing Value Summary (top %d)", FindingsTopMissing)
	line("")
	line("| Column | Missing | %% Missing |")
	line("|---|---:|---:|")
	for _, m := range rep.Missing.Top(FindingsTopMissing) {
		line("| %s | %d | %s |", cell(m.Column), m.Count, pct1(quality.Rate(m.Count, rep.Rows)))
	}
	line("")

	u := rep.Uniqueness
	srCol := "N/A"
	if u.Available {
		srCol = u.Column
	}
	line("## 3. Uniqueness Check")
	line("- SR number column used: `%s`", srCol)
	line("- Duplicate count: **%s**", orNA(u.Duplicates, u.Available))
	line("")

	t := rep.Temporal
	line("## 4. Temporal Anomalies")
	line("- Future created_date: **%s**", orNA(t.FutureCreated, t.HasFutureCreated))
	line("- Future closed_date: **%s**", orNA(t.FutureClosed, t.HasFutureClosed))
	line("- Closed before created: **%s**", orNA(t.ClosedBeforeCreated, t.HasClosedBeforeCreated))
	line("")

	line("## 5. Spatial Anomalies")
	line("- Lat/Lon or X/Y anomalies (null/zero): **%s**", orNA(rep.Spatial.Anomalies, rep.Spatial.Available()))
	if rep.Spatial.Available() {
		line("- Coordinate pair used: `%s`", rep.Spatial.System)
	}
	line("")

	line("## 6. LEGACY_RECORD Usage")
	if rep.LegacyColumn == "" {
		line("- Column present: **No**")
		line("")
	} else {
		line("- Column present: **Yes**")
		nulls, _ := rep.Missing.Get(rep.LegacyColumn)
		if len(rep.Legacy) > 0 || nulls > 0 {
			line("- Value counts: `%s`", rep.Legacy.Format(nulls))
		}
		line("")
	}

	info := rep.InfoOnly
	line("## 7. “INFORMATION ONLY” Calls")
	line("- Count: **%d**", info.Count)
	if len(info.TopAddresses) > 0 {
		line("- Top addresses:")
		for _, a := range info.TopAddresses {
			line("  - %s: %d", a.Value, a.Count)
		}
	}
	if len(info.TopClusters) > 0 {
		line("- Top lat/lon clusters (rounded):")
		for _, c := range info.TopClusters {
			line("  - (%s, %s): %d", coord(c.Lat), coord(c.Lon), c.Count)
		}
	}
	line("")

	line("## 8. Initial Quality Check Priorities")
	line("- Columns to validate in detail: _fill after review_")
	line("- Columns to standardize: _fill after review_")
	line("- Potential filters for future analysis: _fill after review_")

	return []byte(b.String())
}

// IngestSummary describes one ingestion run.
type IngestSummary struct {
	Source string
	Rows   int
	// Path is the columnar file the rows were written to.
	Path string
	// DateColumn and the range are set from the first populated date candidate.
	DateColumn string
	Min, Max   string
}

// SummarizeIngest derives the date range from the first date candidate column
// that holds at least one parseable timestamp.
func SummarizeIngest(source, path string, d *dataset.Dataset) IngestSummary {
	s := IngestSummary{Source: source, Rows: d.Len(), Path: path}
	for _, c := range dataset.DateColumnCandidates {
		if !d.Has(c) {
			continue
		}
		found := false
		var lo, hi = "", ""
		for r := 0; r < d.Len(); r++ {
			t, ok := d.Time(r, c)
			if !ok {
				continue
			}
			v := t.Format(timestampLayout)
			if !found || v < lo {
				lo = v
			}
			if !found || v > hi {
				hi = v
			}
			found = true
		}
		if found {
			s.DateColumn, s.Min, s.Max = c, lo, hi
			break
		}
	}
	return s
}

// RenderIngestSummary renders the ingestion summary document.
func RenderIngestSummary(s IngestSummary) []byte {
	var b strings.Builder
	b.WriteString("# Data Ingest Summary\n\n")
	fmt.Fprintf(&b, "- Source: **%s**\n", s.Source)
	fmt.Fprintf(&b, "- Rows: **%s**\n", count(s.Rows))
	if s.Path != "" {
		fmt.Fprintf(&b, "- File: `%s`\n", s.Path)
	}
	if s.DateColumn != "" {
		fmt.Fprintf(&b, "- Date range: **%s → %s** (`%s`)\n", s.Min, s.Max, s.DateColumn)
	}
	return []byte(b.String())
}
