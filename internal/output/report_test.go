package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chi311/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCheckReport(t *testing.T) {
	results := []rules.Result{
		rules.PassResult("completeness-sr-number", "Completeness: sr_number", "missing=0 (0.00%)"),
		rules.WarnResult("coordinate-anomalies", "Coordinate anomalies (lat/lon null or 0)", "count=9000 (18.00%)"),
		rules.InfoResult("info-only-dominance", "Information-only address dominance", "info_calls=3, top_addr='A | B', dominance=100.00%"),
	}
	out := string(RenderCheckReport(CheckRun{RunID: "r-1", Source: "API (limit=50000)", Rows: 50000}, results))

	assert.True(t, strings.HasPrefix(out, "# Chicago 311 – Step 2 Quality Checks\n\n"))
	assert.Contains(t, out, "- Source: **API (limit=50000)**\n")
	assert.Contains(t, out, "- Rows: **50,000**\n")
	assert.Contains(t, out, "- Overall: **WARN**\n")
	assert.Contains(t, out, "- Run ID: `r-1`\n")
	assert.Contains(t, out, "| Check | Status | Details |\n|---|---|---|\n")
	assert.Contains(t, out, "| Coordinate anomalies (lat/lon null or 0) | WARN | count=9000 (18.00%) |\n")
	// Pipes in details must not break the table.
	assert.Contains(t, out, `top_addr='A \| B'`)

	// Row order follows result order.
	assert.Less(t, strings.Index(out, "Completeness: sr_number"), strings.Index(out, "Coordinate anomalies"))
}

func TestReportSink_UsesLifecycleEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes", "checks.md")
	s, err := NewReportSink(path)
	require.NoError(t, err)

	require.NoError(t, s.Write(Event{Type: EventRunStarted, RunID: "run-9", Source: "CSV (data/x.csv)", Rows: 3}))
	require.NoError(t, s.Write(rules.FailResult("duplicate-sr-numbers", "No duplicate SR numbers", "duplicates=1")))
	require.NoError(t, s.Write(Event{Type: EventRunFinished, Overall: rules.StatusFail, ExitCode: 1}))
	require.NoError(t, s.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "- Source: **CSV (data/x.csv)**")
	assert.Contains(t, out, "- Rows: **3**")
	assert.Contains(t, out, "- Overall: **FAIL**")
	assert.Contains(t, out, "`run-9`")
	assert.Contains(t, out, "| No duplicate SR numbers | FAIL | duplicates=1 |")
}

func TestReportSink_WriteFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	s, err := NewReportSink(filepath.Join(blocker, "checks.md"))
	require.NoError(t, err)
	require.NoError(t, s.Write(rules.PassResult("a", "A", "")))

	err = s.Close()
	require.Error(t, err)
	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, filepath.Join(blocker, "checks.md"), we.Path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_ReplacesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")

	require.NoError(t, WriteFileAtomic(path, []byte("first")))
	require.NoError(t, WriteFileAtomic(path, []byte("second")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not remain")
	assert.Equal(t, "report.md", entries[0].Name())

	assert.Error(t, WriteFileAtomic("", nil))
}

func TestWriteMarker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes")
	path, err := WriteMarker(dir, ".STEP1_DONE")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".STEP1_DONE"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "done\n", string(b))
}
