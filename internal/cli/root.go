package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "chi311",
	Short: "Pull, profile and quality-check Chicago 311 service requests",
	Long: `chi311 pulls Chicago 311 service requests from the city's Socrata open data
API (or a local CSV export), profiles their data quality and runs gated checks
before downstream analysis.

Pipeline:
	1) chi311 explore   writes a data-quality findings report (.STEP1_DONE)
	2) chi311 check     runs registered checks and writes a status table (.STEP2_DONE)
	3) chi311 fetch     ingests a trailing window of requests to Parquet (.INGEST_DONE)

Examples:
	# Show available commands and global flags
	chi311 --help

	# Look at the first rows of the dataset
	chi311 peek --limit 200

	# Explore a sample and mark step 1 as done
	chi311 explore --limit 1000 --mark-done

	# Run the checks against a local export
	chi311 check --source csv --path data/chi311.csv

	# Ingest the last 90 days
	chi311 fetch --days 90

	# List checks
	chi311 rules list

Output:
	Human-readable output goes to stdout; logs go to stderr.
	The check command supports structured output via --emit and --results.`,
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
