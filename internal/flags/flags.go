package flags

// Package flags defines canonical CLI flag names shared across the CLI and engine.
// Keeping these as constants helps avoid drift between Cobra flag wiring and other
// code paths that need to reference flags (e.g. error hints).
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Source.Kind, flags.FlagSource, "api", "...")
//	arg := "--" + flags.FlagSource
const (
	// Source
	FlagSource      = "source"
	FlagPath        = "path"
	FlagAppToken    = "app-token"
	FlagAccessToken = "access-token"
	FlagAPIURL      = "api-url"

	// Fetch
	FlagLimit        = "limit"
	FlagDays         = "days"
	FlagCreatedField = "created-field"
	FlagMaxPages     = "max-pages"
	FlagPageSize     = "page-size"
	FlagRateLimit    = "rate-limit"
	FlagTimeout      = "timeout"

	// Checks
	FlagRules = "rules"
	FlagSet   = "set"

	// Output
	FlagOut                 = "out"
	FlagSummary             = "summary"
	FlagMarkDone            = "mark-done"
	FlagConsoleFormat       = "console-format"
	FlagConsoleFilterStatus = "console-filter-status"
	FlagResults             = "results"
	FlagResultsFormat       = "results-format"
	FlagEmit                = "emit"
	FlagNoConsole           = "no-console"
	FlagNoColor             = "no-color"

	// Runtime
	FlagVerbose   = "verbose"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
)
