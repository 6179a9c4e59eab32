package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"chi311/internal/rules"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect run
	// behavior, keep these in sync:
	// - CLI flags in internal/cli
	// - environment keys in env.go
	Source  Source
	Fetch   Fetch
	Checks  Checks
	Output  Output
	Runtime Runtime
}

const (
	SourceAPI = "api"
	SourceCSV = "csv"
)

type Source struct {
	// Kind selects where rows come from (see --source).
	// Allowed values: api, csv.
	Kind string

	// Path is the CSV file read when Kind is csv (see --path).
	Path string

	// AppToken is the Socrata app token (see --app-token). Falls back to SOCRATA_APP_TOKEN.
	AppToken string

	// AccessToken is an optional OAuth access token (see --access-token).
	AccessToken string

	// APIURL overrides the Socrata resource endpoint (see --api-url).
	APIURL string
}

type Fetch struct {
	// Limit is the number of rows pulled in limit mode (see --limit). Must be >= 1.
	Limit int

	// Days selects window mode when > 0 (see --days).
	Days int

	// CreatedField forces the date column used for the window filter (see --created-field).
	CreatedField string

	// MaxPages caps fallback pagination in window mode (see --max-pages). Must be >= 1.
	MaxPages int

	// PageSize is the number of rows per request (see --page-size). Must be >= 1.
	PageSize int

	// RateLimit paces requests per second (see --rate-limit). 0 disables pacing.
	RateLimit float64

	// Timeout bounds each HTTP request (see --timeout). Must be > 0.
	Timeout time.Duration
}

type Checks struct {
	// Selector selects which checks to run.
	// Empty means all checks; otherwise it is a rule selector expression (see --rules).
	Selector string

	// Set provides per-rule option overrides from the CLI.
	// Entries are of the form ruleID.option=value (repeatable; comma-separated accepted; see --set).
	Set []string
}

type Output struct {
	// Out is the primary artifact path: a Markdown report or the Parquet file (see --out).
	Out string

	// Summary is the ingest summary Markdown path (see --summary).
	Summary string

	// MarkDone writes the step marker next to the primary artifact (see --mark-done).
	MarkDone bool

	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterStatus filters console output by result status (see --console-filter-status).
	// Allowed values: PASS, INFO, WARN, FAIL, ERROR.
	ConsoleFilterStatus []string

	// Results writes structured check results to this path (see --results).
	Results string

	// ResultsFormat selects the format for --results (see --results-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the file extension.
	ResultsFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool

	// NoColor disables coloured status tags (see --no-color).
	NoColor bool
}

type Runtime struct {
	// Verbose enables debug logging including per-request HTTP lines (see --verbose).
	Verbose bool

	// LogLevel is a zap level name (see --log-level). Empty means info.
	LogLevel string

	// LogFormat is console or json (see --log-format). Empty means console.
	LogFormat string
}

func New() *Config {
	return &Config{
		Source: Source{
			Kind: SourceAPI,
		},
		Fetch: Fetch{
			Limit:    1000,
			MaxPages: 30,
			PageSize: 50000,
			Timeout:  120 * time.Second,
		},
		Output: Output{
			ConsoleFormat: "text",
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Checks.Set = splitCommaList(c.Checks.Set)
	c.Output.ConsoleFilterStatus = splitCommaList(c.Output.ConsoleFilterStatus)
	c.Output.Emit = splitCommaList(c.Output.Emit)

	// Source validation
	c.Source.Kind = normalizeEnumValue(c.Source.Kind)
	if c.Source.Kind == "" {
		c.Source.Kind = SourceAPI
	}
	if c.Source.Kind != SourceAPI && c.Source.Kind != SourceCSV {
		return fmt.Errorf("unsupported --source: %s (must be one of: api, csv)", c.Source.Kind)
	}
	c.Source.Path = strings.TrimSpace(c.Source.Path)
	if c.Source.APIURL != "" {
		u, err := url.Parse(strings.TrimSpace(c.Source.APIURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid --api-url value: %q", c.Source.APIURL)
		}
		c.Source.APIURL = u.String()
	}

	// Fetch validation
	if c.Fetch.Limit <= 0 {
		return errors.New("--limit must be >= 1")
	}
	if c.Fetch.Days < 0 {
		return errors.New("--days must be >= 0")
	}
	if c.Fetch.MaxPages <= 0 {
		return errors.New("--max-pages must be >= 1")
	}
	if c.Fetch.PageSize <= 0 {
		return errors.New("--page-size must be >= 1")
	}
	if c.Fetch.RateLimit < 0 {
		return errors.New("--rate-limit must be >= 0")
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}
	c.Fetch.CreatedField = strings.TrimSpace(c.Fetch.CreatedField)

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for i, st := range c.Output.ConsoleFilterStatus {
		parsed, ok := rules.ParseStatus(st)
		if !ok {
			return fmt.Errorf("unsupported --console-filter-status: %s (must be one of: PASS, INFO, WARN, FAIL, ERROR)", st)
		}
		c.Output.ConsoleFilterStatus[i] = string(parsed)
	}

	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", v)
		}
		c.Output.Emit[i] = v
	}

	if c.Output.Results != "" {
		c.Output.ResultsFormat = normalizeEnumValue(c.Output.ResultsFormat)
		if c.Output.ResultsFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Results))
			switch ext {
			case ".json":
				c.Output.ResultsFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.ResultsFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer results format from file extension (missing extension); use --results-format")
				}
				return fmt.Errorf("cannot infer results format from file extension %q; use --results-format", ext)
			}
		} else if c.Output.ResultsFormat != "json" && c.Output.ResultsFormat != "ndjson" {
			return fmt.Errorf("unsupported results format: %s", c.Output.ResultsFormat)
		}
	}

	// Runtime validation
	c.Runtime.LogLevel = normalizeEnumValue(c.Runtime.LogLevel)
	if c.Runtime.Verbose {
		c.Runtime.LogLevel = "debug"
	}
	if c.Runtime.LogLevel == "" {
		c.Runtime.LogLevel = "info"
	}
	switch c.Runtime.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported --log-level: %s (must be one of: debug, info, warn, error)", c.Runtime.LogLevel)
	}
	c.Runtime.LogFormat = normalizeEnumValue(c.Runtime.LogFormat)
	if c.Runtime.LogFormat == "" {
		c.Runtime.LogFormat = "console"
	}
	if c.Runtime.LogFormat != "console" && c.Runtime.LogFormat != "json" {
		return fmt.Errorf("unsupported --log-format: %s (must be one of: console, json)", c.Runtime.LogFormat)
	}

	// Rule option syntax validation (rule.option=value)
	if len(c.Checks.Set) > 0 {
		if _, err := ParseRuleOptionAssignments(c.Checks.Set); err != nil {
			return err
		}
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseRuleOptionAssignments parses values of the form "ruleID.option=value".
//
// Notes:
// - Entries may be provided via repeated flags and/or comma-delimited lists.
// - This validates syntax only (no validation of rule IDs or option names).
// - Empty values are allowed ("rule.option=").
func ParseRuleOptionAssignments(values []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for _, raw := range splitCommaList(values) {
		left, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set entry %q: expected rule.option=value", raw)
		}
		value = strings.TrimSpace(value)
		ruleID, opt, ok := strings.Cut(strings.TrimSpace(left), ".")
		if !ok {
			return nil, fmt.Errorf("invalid --set entry %q: expected rule.option=value", raw)
		}
		ruleID = strings.TrimSpace(ruleID)
		opt = strings.TrimSpace(opt)
		if ruleID == "" || opt == "" {
			return nil, fmt.Errorf("invalid --set entry %q: expected non-empty rule and option", raw)
		}
		if _, ok := out[ruleID]; !ok {
			out[ruleID] = make(map[string]string)
		}
		out[ruleID][opt] = value
	}
	return out, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
