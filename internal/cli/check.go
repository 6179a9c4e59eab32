package cli

import (
	"chi311/internal/config"
	"chi311/internal/engine"
	"chi311/internal/flags"

	"github.com/spf13/cobra"
)

var checkCfg = config.New()

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the gated data-quality checks (step 2)",
	Long: `Pull service requests, run every registered check and write a Markdown
status table.

Checks are read-only: they never modify the dataset. Thresholds are rule
options and can be changed with --set (see "chi311 rules list").

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --results / --results-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --no-console: suppress the console sink (use with --emit/--results for machine output)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, rule.result, run.finished). Rule results are
	represented as an Event with type "rule.result" and a nested "result" object.

	When structured output goes to stdout, status lines move to stderr.

Exit codes:
	0 = every check passed (STEP2_READY_TO_PROCEED)
	1 = attention needed: a check warned, failed or errored (STEP2_ATTENTION_NEEDED)
	3 = fatal error (config, fetch or write failure)

Examples:
  chi311 check --mark-done
  chi311 check --set coordinate-anomalies.max_rate=0.25
  chi311 check --rules duplicate-sr-numbers,future-created-date

	# AI Agent: stream machine-readable events to stdout
	chi311 check --no-console --emit ndjson
`,
	Args: cobra.NoArgs,
	Run:  runStep(checkCfg, (*engine.Engine).Check),
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.SetHelpTemplate(commandHelpTemplate)

	// Source
	addSourceFlags(checkCmd, checkCfg)
	checkCmd.Flags().IntVar(&checkCfg.Fetch.Limit, flags.FlagLimit, 50000, "Number of rows to pull")

	// Checks
	checkCmd.Flags().StringVar(&checkCfg.Checks.Selector, flags.FlagRules, "", "Rule selector expression (empty = all rules)")
	checkCmd.Flags().StringSliceVar(&checkCfg.Checks.Set, flags.FlagSet, nil, "Per-rule options as ruleID.option=value (repeatable; comma-separated accepted)")

	// Output
	checkCmd.Flags().StringVar(&checkCfg.Output.Out, flags.FlagOut, "notes/data_quality_checks.md", "Markdown report path")
	checkCmd.Flags().BoolVar(&checkCfg.Output.MarkDone, flags.FlagMarkDone, false, "Write .STEP2_DONE next to the report")
	checkCmd.Flags().StringVar(&checkCfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	checkCmd.Flags().StringSliceVar(&checkCfg.Output.ConsoleFilterStatus, flags.FlagConsoleFilterStatus, nil, "Filter console output by status (PASS, INFO, WARN, FAIL, ERROR). Comma-separated.")
	checkCmd.Flags().StringVar(&checkCfg.Output.Results, flags.FlagResults, "", "Write structured results to this path")
	checkCmd.Flags().StringVar(&checkCfg.Output.ResultsFormat, flags.FlagResultsFormat, "", "Structured format for --results: json|ndjson (default: inferred from file extension)")
	checkCmd.Flags().StringSliceVar(&checkCfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	checkCmd.Flags().BoolVar(&checkCfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--results)")
	checkCmd.Flags().BoolVar(&checkCfg.Output.NoColor, flags.FlagNoColor, false, "Disable coloured status tags")

	addRuntimeFlags(checkCmd, checkCfg)
}
