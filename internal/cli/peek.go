package cli

import (
	"chi311/internal/config"
	"chi311/internal/engine"
	"chi311/internal/flags"

	"github.com/spf13/cobra"
)

var peekCfg = config.New()

var peekCmd = &cobra.Command{
	Use:   "peek",
	Short: "Print the columns and missing counts of a sample",
	Long: `Load a sample of service requests and print the row count, the column list
and the number of missing values per column.

Examples:
  chi311 peek --limit 200
  chi311 peek --source csv --path data/chi311.csv
`,
	Args: cobra.NoArgs,
	Run:  runStep(peekCfg, (*engine.Engine).Peek),
}

func init() {
	rootCmd.AddCommand(peekCmd)
	peekCmd.SetHelpTemplate(commandHelpTemplate)

	addSourceFlags(peekCmd, peekCfg)
	peekCmd.Flags().IntVar(&peekCfg.Fetch.Limit, flags.FlagLimit, 1000, "Number of rows to pull")
	addRuntimeFlags(peekCmd, peekCfg)
}
