package cli

import (
	"chi311/internal/config"
	"chi311/internal/engine"
	"chi311/internal/flags"

	"github.com/spf13/cobra"
)

var fetchCfg = config.New()

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Ingest a trailing window of service requests to Parquet",
	Long: `Pull every service request created in the last --days days and write them to
a Parquet file, plus a Markdown ingest summary.

The date column is discovered from a one-row sample (override with
--created-field). If no column accepts a server-side filter, pages are pulled
newest first and filtered locally, up to --max-pages pages.

Date columns are stored as UTC RFC3339 text. A .INGEST_DONE marker is written
next to the summary and DATA_READY_TO_PROCEED is printed.

Exit codes:
	0 = data written
	3 = fatal error (config, fetch or write failure)

Examples:
  chi311 fetch
  chi311 fetch --days 30 --out data/raw_311.parquet --summary notes/data_ingest_summary.md
`,
	Args: cobra.NoArgs,
	Run:  runStep(fetchCfg, (*engine.Engine).Ingest),
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.SetHelpTemplate(commandHelpTemplate)

	addSourceFlags(fetchCmd, fetchCfg)
	fetchCmd.Flags().IntVar(&fetchCfg.Fetch.Days, flags.FlagDays, 90, "Trailing window in days")
	fetchCmd.Flags().StringVar(&fetchCfg.Fetch.CreatedField, flags.FlagCreatedField, "", "Date column used for the window filter (default: discovered)")
	fetchCmd.Flags().IntVar(&fetchCfg.Fetch.MaxPages, flags.FlagMaxPages, fetchCfg.Fetch.MaxPages, "Page cap for the fallback pagination")

	fetchCmd.Flags().StringVar(&fetchCfg.Output.Out, flags.FlagOut, "data/raw_311.parquet", "Parquet output path")
	fetchCmd.Flags().StringVar(&fetchCfg.Output.Summary, flags.FlagSummary, "notes/data_ingest_summary.md", "Markdown ingest summary path")

	addRuntimeFlags(fetchCmd, fetchCfg)
}
