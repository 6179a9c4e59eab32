package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"chi311/internal/config"
	"chi311/internal/engine"
	"chi311/internal/flags"
	"chi311/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// pipelineStep is one engine entry point, e.g. (*engine.Engine).Check.
type pipelineStep func(*engine.Engine, context.Context, *config.Config) int

const commandHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	The Socrata API accepts anonymous requests, but chi311 requires an app token
	so pulls are not throttled.

	Sources (in order):
	1) --app-token flag
	2) SOCRATA_APP_TOKEN environment variable (a .env file in the working directory is read)
	3) socrata_app_token key in chi311.yaml (. or ./config)

	Other keys: SOCRATA_ACCESS_TOKEN, CHI311_API_URL, CHI311_LOG_LEVEL, CHI311_LOG_FORMAT.
	With --source csv no token is needed.

  Examples:
    # macOS/Linux
    export SOCRATA_APP_TOKEN="<your_token>"
    chi311 check

    # Windows PowerShell
    $env:SOCRATA_APP_TOKEN = "<your_token>"
    chi311 check

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

// runPipeline prepares cfg from the environment, validates it and runs step.
// It returns the process exit code.
func runPipeline(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, step pipelineStep) int {
	env, err := config.LoadEnvironment(".")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 3
	}
	cfg.ApplyEnvironment(env)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 3
	}

	log, err := logger.New(cfg.Runtime.LogLevel, cfg.Runtime.LogFormat, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 3
	}
	defer func() { _ = log.Sync() }()
	if env.ConfigFile != "" {
		log.Debug("config file loaded", zap.String("path", env.ConfigFile))
	}

	eng := engine.NewEngine(
		engine.WithLogger(log),
		engine.WithOutput(stdout, stderr),
	)
	return step(eng, ctx, cfg)
}

// runStep adapts a pipeline step to a cobra Run function that exits with the step's code.
func runStep(cfg *config.Config, step pipelineStep) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		code := runPipeline(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), step)
		stop()
		os.Exit(code)
	}
}

// addSourceFlags wires the flags every data-loading command shares.
func addSourceFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.Source.Kind, flags.FlagSource, cfg.Source.Kind, "Data source: api|csv (default: api)")
	cmd.Flags().StringVar(&cfg.Source.Path, flags.FlagPath, "", "CSV file to read when --source csv")
	cmd.Flags().StringVar(&cfg.Source.AppToken, flags.FlagAppToken, "", "Socrata app token (default: SOCRATA_APP_TOKEN)")
	cmd.Flags().StringVar(&cfg.Source.AccessToken, flags.FlagAccessToken, "", "Optional Socrata OAuth access token (default: SOCRATA_ACCESS_TOKEN)")
	cmd.Flags().StringVar(&cfg.Source.APIURL, flags.FlagAPIURL, "", "Override the Socrata resource URL (default: Chicago 311 dataset)")

	cmd.Flags().IntVar(&cfg.Fetch.PageSize, flags.FlagPageSize, cfg.Fetch.PageSize, "Rows per API request")
	cmd.Flags().Float64Var(&cfg.Fetch.RateLimit, flags.FlagRateLimit, 0, "Maximum API requests per second (0 = unpaced)")
	cmd.Flags().DurationVar(&cfg.Fetch.Timeout, flags.FlagTimeout, cfg.Fetch.Timeout, "Per-request HTTP timeout")
}

// addRuntimeFlags wires logging flags.
func addRuntimeFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every Socrata API call)")
	cmd.Flags().StringVar(&cfg.Runtime.LogLevel, flags.FlagLogLevel, "", "Log level: debug|info|warn|error (default: info)")
	cmd.Flags().StringVar(&cfg.Runtime.LogFormat, flags.FlagLogFormat, "", "Log format: console|json (default: console)")
}
