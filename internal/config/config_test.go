package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if cfg.Source.Kind != SourceAPI {
		t.Fatalf("Source.Kind = %q, want api", cfg.Source.Kind)
	}
	if cfg.Fetch.PageSize != 50000 || cfg.Fetch.MaxPages != 30 {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.Runtime.LogLevel != "info" || cfg.Runtime.LogFormat != "console" {
		t.Fatalf("unexpected runtime defaults: %+v", cfg.Runtime)
	}
}

func TestValidate_NormalizesCommaDelimitedLists(t *testing.T) {
	cfg := New()
	cfg.Checks.Set = []string{"coordinate-anomalies.max_rate=0.2, legacy-records.max_status=PASS", ",,"}
	cfg.Output.ConsoleFilterStatus = []string{"warn,fail"}
	cfg.Output.Emit = []string{" NDJSON "}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	wantSet := []string{"coordinate-anomalies.max_rate=0.2", "legacy-records.max_status=PASS"}
	if !reflect.DeepEqual(cfg.Checks.Set, wantSet) {
		t.Fatalf("Set normalized mismatch: got %v want %v", cfg.Checks.Set, wantSet)
	}
	if !reflect.DeepEqual(cfg.Output.ConsoleFilterStatus, []string{"WARN", "FAIL"}) {
		t.Fatalf("ConsoleFilterStatus mismatch: %v", cfg.Output.ConsoleFilterStatus)
	}
	if !reflect.DeepEqual(cfg.Output.Emit, []string{"ndjson"}) {
		t.Fatalf("Emit mismatch: %v", cfg.Output.Emit)
	}
}

func TestParseRuleOptionAssignments(t *testing.T) {
	got, err := ParseRuleOptionAssignments([]string{
		"coordinate-anomalies.max_rate=0.2, info-only-dominance.min_dominance=0.5",
		"legacy-records.max_status=", // empty value allowed
	})
	if err != nil {
		t.Fatalf("ParseRuleOptionAssignments returned error: %v", err)
	}
	if got["coordinate-anomalies"]["max_rate"] != "0.2" {
		t.Fatalf("unexpected parsed value: %v", got)
	}
	if got["info-only-dominance"]["min_dominance"] != "0.5" {
		t.Fatalf("unexpected parsed value: %v", got)
	}
	if v, ok := got["legacy-records"]["max_status"]; !ok || v != "" {
		t.Fatalf("expected empty string value to be preserved: %v", got)
	}
}

func TestParseRuleOptionAssignments_ErrorsOnInvalidSyntax(t *testing.T) {
	tests := []struct {
		name   string
		values []string
	}{
		{name: "missing_equals", values: []string{"a.b"}},
		{name: "missing_dot", values: []string{"ab=true"}},
		{name: "empty_rule", values: []string{".b=true"}},
		{name: "empty_opt", values: []string{"a.=true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRuleOptionAssignments(tt.values); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"source", func(c *Config) { c.Source.Kind = "ftp" }, "--source"},
		{"api_url", func(c *Config) { c.Source.APIURL = "data.cityofchicago.org" }, "--api-url"},
		{"limit", func(c *Config) { c.Fetch.Limit = 0 }, "--limit"},
		{"days", func(c *Config) { c.Fetch.Days = -1 }, "--days"},
		{"max_pages", func(c *Config) { c.Fetch.MaxPages = 0 }, "--max-pages"},
		{"page_size", func(c *Config) { c.Fetch.PageSize = -5 }, "--page-size"},
		{"rate_limit", func(c *Config) { c.Fetch.RateLimit = -1 }, "--rate-limit"},
		{"timeout", func(c *Config) { c.Fetch.Timeout = 0 }, "--timeout"},
		{"console_format", func(c *Config) { c.Output.ConsoleFormat = "xml" }, "--console-format"},
		{"console_format_empty", func(c *Config) { c.Output.ConsoleFormat = " " }, "--console-format"},
		{"filter_status", func(c *Config) { c.Output.ConsoleFilterStatus = []string{"SKIPPED"} }, "--console-filter-status"},
		{"emit", func(c *Config) { c.Output.Emit = []string{"yaml"} }, "--emit"},
		{"results_ext", func(c *Config) { c.Output.Results = "out.txt" }, "--results-format"},
		{"results_no_ext", func(c *Config) { c.Output.Results = "out" }, "missing extension"},
		{"results_format", func(c *Config) { c.Output.Results = "out.json"; c.Output.ResultsFormat = "csv" }, "unsupported results format"},
		{"log_level", func(c *Config) { c.Runtime.LogLevel = "loud" }, "--log-level"},
		{"log_format", func(c *Config) { c.Runtime.LogFormat = "xml" }, "--log-format"},
		{"set", func(c *Config) { c.Checks.Set = []string{"nodot=1"} }, "--set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesEnums(t *testing.T) {
	cfg := New()
	cfg.Source.Kind = " CSV "
	cfg.Output.ConsoleFormat = "JSON"
	cfg.Output.Results = filepath.Join("out", "results.jsonl")
	cfg.Runtime.Verbose = true
	cfg.Runtime.LogFormat = "JSON"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if cfg.Source.Kind != SourceCSV || cfg.Output.ConsoleFormat != "json" {
		t.Fatalf("enums not normalized: %+v %+v", cfg.Source, cfg.Output)
	}
	if cfg.Output.ResultsFormat != "ndjson" {
		t.Fatalf("ResultsFormat = %q, want ndjson", cfg.Output.ResultsFormat)
	}
	if cfg.Runtime.LogLevel != "debug" || cfg.Runtime.LogFormat != "json" {
		t.Fatalf("runtime not normalized: %+v", cfg.Runtime)
	}
}

// unsetEnv clears key for the duration of the test so .env loading can set it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetAll(t *testing.T) {
	for _, k := range []string{EnvAppToken, EnvAccessToken, EnvAPIURL, EnvLogLevel, EnvLogFormat} {
		unsetEnv(t, k)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadEnvironment_NoFiles(t *testing.T) {
	unsetAll(t)
	env, err := LoadEnvironment(t.TempDir())
	if err != nil {
		t.Fatalf("LoadEnvironment returned error: %v", err)
	}
	if env != (Environment{}) {
		t.Fatalf("expected empty environment, got %+v", env)
	}
}

func TestLoadEnvironment_DotEnvAndConfigFile(t *testing.T) {
	unsetAll(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "SOCRATA_APP_TOKEN=from-dotenv\n")
	writeFile(t, filepath.Join(dir, "config", "chi311.yaml"),
		"socrata_app_token: from-file\nchi311_log_level: warn\nchi311_api_url: https://example.test/resource/v6vf-nfxy.json\n")

	env, err := LoadEnvironment(dir)
	if err != nil {
		t.Fatalf("LoadEnvironment returned error: %v", err)
	}
	if env.AppToken != "from-dotenv" {
		t.Fatalf("AppToken = %q, want environment to win over file", env.AppToken)
	}
	if env.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", env.LogLevel)
	}
	if env.APIURL != "https://example.test/resource/v6vf-nfxy.json" {
		t.Fatalf("APIURL = %q", env.APIURL)
	}
	if filepath.Base(env.ConfigFile) != "chi311.yaml" {
		t.Fatalf("ConfigFile = %q", env.ConfigFile)
	}
}

func TestLoadEnvironment_DotEnvDoesNotOverrideShell(t *testing.T) {
	unsetAll(t)
	t.Setenv(EnvAppToken, "from-shell")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "SOCRATA_APP_TOKEN=from-dotenv\n")

	env, err := LoadEnvironment(dir)
	if err != nil {
		t.Fatalf("LoadEnvironment returned error: %v", err)
	}
	if env.AppToken != "from-shell" {
		t.Fatalf("AppToken = %q, want from-shell", env.AppToken)
	}
}

func TestApplyEnvironment_FlagsWin(t *testing.T) {
	cfg := New()
	cfg.Source.AppToken = "flag-token"
	cfg.ApplyEnvironment(Environment{
		AppToken:  "env-token",
		APIURL:    "https://example.test/x.json",
		LogLevel:  "error",
		LogFormat: "json",
	})
	if cfg.Source.AppToken != "flag-token" {
		t.Fatalf("AppToken = %q, want flag value", cfg.Source.AppToken)
	}
	if cfg.Source.APIURL != "https://example.test/x.json" || cfg.Runtime.LogLevel != "error" {
		t.Fatalf("environment not applied: %+v %+v", cfg.Source, cfg.Runtime)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if cfg.Fetch.Timeout != 120*time.Second {
		t.Fatalf("Timeout = %v", cfg.Fetch.Timeout)
	}
}
