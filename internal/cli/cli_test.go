package cli

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func withoutEnv(keys ...string) []string {
	out := make([]string, 0, len(os.Environ()))
	for _, e := range os.Environ() {
		skip := false
		for _, key := range keys {
			if strings.HasPrefix(e, key+"=") {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, e)
		}
	}
	return out
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	// internal/cli -> repo root
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func goExe() string {
	if runtime.GOOS == "windows" {
		return "go.exe"
	}
	return "go"
}

func buildChi311Binary(t *testing.T) string {
	t.Helper()

	outPath := filepath.Join(t.TempDir(), "chi311-test")
	if runtime.GOOS == "windows" {
		outPath += ".exe"
	}

	cmd := exec.Command(goExe(), "build", "-o", outPath, "./cmd/chi311")
	cmd.Dir = repoRoot(t)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build chi311 binary: %v; output=%s", err, string(out))
	}

	return outPath
}

func exitCode(t *testing.T, err error, out []byte) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v; output=%s", err, err, string(out))
	}
	return exitErr.ProcessState.ExitCode()
}

func TestCheck_ExitCode3_WhenSourceUnsupported(t *testing.T) {
	binary := buildChi311Binary(t)
	cmd := exec.Command(binary, "check", "--source", "ftp")
	cmd.Dir = t.TempDir()

	out, err := cmd.CombinedOutput()
	if code := exitCode(t, err, out); code != 3 {
		t.Fatalf("expected exit code 3, got %d; output=%s", code, string(out))
	}
	if !strings.Contains(string(out), "unsupported --source: ftp") {
		t.Fatalf("expected validation message; output=%s", string(out))
	}
}

func TestCheck_ExitCode3_WhenResultsFormatCannotBeInferred(t *testing.T) {
	binary := buildChi311Binary(t)
	cmd := exec.Command(binary, "check", "--results", "results.unknown")
	cmd.Dir = t.TempDir()

	out, err := cmd.CombinedOutput()
	if code := exitCode(t, err, out); code != 3 {
		t.Fatalf("expected exit code 3, got %d; output=%s", code, string(out))
	}
	if !strings.Contains(string(out), "cannot infer results format") {
		t.Fatalf("expected results format inference error; output=%s", string(out))
	}
}

func TestExplore_ExitCode3_WhenAppTokenMissing(t *testing.T) {
	binary := buildChi311Binary(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "notes", "findings.md")
	cmd := exec.Command(binary, "explore", "--out", out, "--mark-done")
	// Run from an empty directory so no .env or chi311.yaml supplies a token.
	cmd.Dir = dir
	cmd.Env = withoutEnv("SOCRATA_APP_TOKEN", "SOCRATA_ACCESS_TOKEN")

	output, err := cmd.CombinedOutput()
	if code := exitCode(t, err, output); code != 3 {
		t.Fatalf("expected exit code 3, got %d; output=%s", code, string(output))
	}
	if !strings.Contains(string(output), "socrata app token is required") {
		t.Fatalf("expected token-required message; output=%s", string(output))
	}
	if strings.Contains(string(output), "READY_TO_PROCEED") {
		t.Fatalf("fatal run must not print the ready flag; output=%s", string(output))
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no report file, stat err=%v", err)
	}
}

func TestExplore_CSVSource_WritesReportAndMarker(t *testing.T) {
	binary := buildChi311Binary(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "chi311.csv")
	data := "sr_number,sr_type,status,created_date,latitude,longitude\n" +
		"SR1,Pothole in Street,Open,2024-01-02T10:00:00,41.88,-87.63\n" +
		"SR2,Aircraft Noise Complaint,Completed,2024-01-03T11:00:00,,\n"
	if err := os.WriteFile(csvPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	report := filepath.Join(dir, "notes", "findings.md")

	cmd := exec.Command(binary, "explore", "--source", "csv", "--path", csvPath, "--out", report, "--mark-done")
	cmd.Dir = dir
	cmd.Env = withoutEnv("SOCRATA_APP_TOKEN")

	out, err := cmd.CombinedOutput()
	if code := exitCode(t, err, out); code != 0 {
		t.Fatalf("expected exit code 0, got %d; output=%s", code, string(out))
	}
	if !strings.Contains(string(out), "READY_TO_PROCEED") {
		t.Fatalf("expected ready flag; output=%s", string(out))
	}
	if _, err := os.Stat(filepath.Join(dir, "notes", ".STEP1_DONE")); err != nil {
		t.Fatalf("expected marker next to report: %v", err)
	}
}

func TestCheck_Help_DocumentsOutputAndExitCodes(t *testing.T) {
	binary := buildChi311Binary(t)
	cmd := exec.Command(binary, "check", "--help")

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("expected zero exit; err=%v; output=%s", err, string(out))
	}

	s := string(out)
	// Command help must document machine-readable output and exit status semantics.
	required := []string{
		"Output:",
		"Exit codes:",
		"NDJSON mode emits",
		"run.started",
		"rule.result",
		"run.finished",
		"--source",
		"--set",
		"SOCRATA_APP_TOKEN",
	}
	for _, r := range required {
		if !strings.Contains(s, r) {
			t.Fatalf("expected check --help to contain %q; output=%s", r, s)
		}
	}
}

func TestFetch_Help_DocumentsWindowFlags(t *testing.T) {
	binary := buildChi311Binary(t)
	cmd := exec.Command(binary, "fetch", "--help")

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("expected zero exit; err=%v; output=%s", err, string(out))
	}

	s := string(out)
	for _, r := range []string{"--days", "--summary", "--created-field", "--max-pages", "data/raw_311.parquet", "DATA_READY_TO_PROCEED"} {
		if !strings.Contains(s, r) {
			t.Fatalf("expected fetch --help to contain %q; output=%s", r, s)
		}
	}
}

func TestVersion_PrintsBuildInfo(t *testing.T) {
	binary := buildChi311Binary(t)
	out, err := exec.Command(binary, "version").CombinedOutput()
	if err != nil {
		t.Fatalf("expected zero exit; err=%v; output=%s", err, string(out))
	}
	if !strings.HasPrefix(string(out), "chi311 dev\n") {
		t.Fatalf("unexpected version output: %s", string(out))
	}
}
