package output

import (
	"fmt"
	"strings"
	"sync"

	"chi311/internal/rules"
)

// CheckRun is the header block of the checks report.
type CheckRun struct {
	RunID  string
	Source string
	Rows   int
	// Overall is recomputed from the results when empty.
	Overall rules.Status
}

// RenderCheckReport renders the gated checks as a Markdown table, one row per
// result in the order given.
func RenderCheckReport(run CheckRun, results []rules.Result) []byte {
	overall := run.Overall
	if overall == "" {
		overall = rules.Overall(results)
	}

	var b strings.Builder
	b.WriteString("# Chicago 311 – Step 2 Quality Checks\n\n")
	fmt.Fprintf(&b, "- Source: **%s**\n", run.Source)
	fmt.Fprintf(&b, "- Rows: **%s**\n", count(run.Rows))
	fmt.Fprintf(&b, "- Overall: **%s**\n", overall)
	if run.RunID != "" {
		fmt.Fprintf(&b, "- Run ID: `%s`\n", run.RunID)
	}
	b.WriteString("\n| Check | Status | Details |\n|---|---|---|\n")
	for _, r := range results {
		name := r.Check
		if name == "" {
			name = r.RuleID
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(name), r.Status, cell(r.Message))
	}
	return []byte(b.String())
}

// ReportSink collects a run's results and writes the Markdown checks report on Close.
type ReportSink struct {
	path    string
	mu      sync.Mutex
	run     CheckRun
	results []rules.Result
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	return &ReportSink{path: path}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case rules.Result:
		s.results = append(s.results, t)
	case Event:
		switch t.Type {
		case EventRunStarted:
			s.run.RunID = t.RunID
			s.run.Source = t.Source
			s.run.Rows = t.Rows
		case EventRunFinished:
			s.run.Overall = t.Overall
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteFileAtomic(s.path, RenderCheckReport(s.run, s.results))
}
