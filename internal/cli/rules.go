package cli

import (
	"fmt"
	"io"
	"strings"

	"chi311/internal/rules"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rulesListQuiet bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List and inspect data-quality checks",
	Long: `Inspect the data-quality checks registered in this build.

Checks are evaluated by "chi311 check" (see "chi311 check --help"). Their
thresholds are options that can be overridden with --set ruleID.option=value.

Examples:
  chi311 rules list
  chi311 rules show coordinate-anomalies
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered checks in report order",
	Long: `List every registered check, one per line, in the order the checks report
presents them.

Examples:
  chi311 rules list
  chi311 rules list -q
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		writeRuleList(cmd.OutOrStdout(), rules.List(), rulesListQuiet)
		return nil
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <rule-id|prefix*>",
	Short: "Show a check's description and options",
	Long: `Show the description and options of the checks matching a selector.
A trailing "*" selects every check whose ID starts with the prefix.

Examples:
  chi311 rules show coordinate-anomalies
  chi311 rules show 'completeness-*'
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selected, err := rules.Resolve(args[0])
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return fmt.Errorf("rule not found: %s", args[0])
		}
		for _, r := range selected {
			writeRuleDetail(cmd.OutOrStdout(), r)
		}
		return nil
	},
}

func writeRuleList(w io.Writer, rs []rules.Rule, quiet bool) {
	width := 0
	for _, r := range rs {
		width = max(width, len(r.ID()))
	}
	for _, r := range rs {
		if quiet {
			fmt.Fprintln(w, r.ID())
			continue
		}
		fmt.Fprintf(w, "%-*s  %s\n", width, r.ID(), r.Title())
	}
}

func writeRuleDetail(w io.Writer, r rules.Rule) {
	color.New(color.Bold).Fprintln(w, r.ID())
	fmt.Fprintf(w, "  %s\n\n", r.Title())
	for _, line := range strings.Split(r.Description(), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}

	cr, ok := r.(rules.ConfigurableRule)
	if !ok || len(cr.Options()) == 0 {
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintln(w, "\n  Options (--set "+r.ID()+".<option>=<value>):")
	for _, opt := range cr.Options() {
		def := opt.Default
		if def == "" {
			def = "(none)"
		}
		fmt.Fprintf(w, "    %s = %s\n", opt.Name, def)
		fmt.Fprintf(w, "      %s\n", opt.Description)
	}
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesListCmd.Flags().BoolVarP(&rulesListQuiet, "quiet", "q", false, "Only print rule IDs")
	rulesCmd.AddCommand(rulesShowCmd)
}
