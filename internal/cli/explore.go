package cli

import (
	"chi311/internal/config"
	"chi311/internal/engine"
	"chi311/internal/flags"

	"github.com/spf13/cobra"
)

var exploreCfg = config.New()

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Write the data-quality findings report (step 1)",
	Long: `Pull a sample of service requests and write a Markdown findings report
covering schema, missing values, SR number uniqueness, temporal and spatial
anomalies, LEGACY_RECORD usage and "INFORMATION ONLY" calls.

With --mark-done, a .STEP1_DONE marker is written next to the report and
READY_TO_PROCEED is printed.

Exit codes:
	0 = report written
	3 = fatal error (config, fetch or write failure)

Examples:
  chi311 explore
  chi311 explore --limit 5000 --out notes/findings.md --mark-done
`,
	Args: cobra.NoArgs,
	Run:  runStep(exploreCfg, (*engine.Engine).Explore),
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.SetHelpTemplate(commandHelpTemplate)

	addSourceFlags(exploreCmd, exploreCfg)
	exploreCmd.Flags().IntVar(&exploreCfg.Fetch.Limit, flags.FlagLimit, 1000, "Number of rows to pull")

	exploreCmd.Flags().StringVar(&exploreCfg.Output.Out, flags.FlagOut, "notes/data_quality_findings.md", "Markdown report path")
	exploreCmd.Flags().BoolVar(&exploreCfg.Output.MarkDone, flags.FlagMarkDone, false, "Write .STEP1_DONE next to the report")

	addRuntimeFlags(exploreCmd, exploreCfg)
}
