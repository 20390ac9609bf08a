package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	asOf    string
	verbose bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "sciquant",
	Short: "Scientific stock-pick pipeline",
	Long: `sciquant - scientific stock-pick pipeline

Regime-gated scoring strategies over a fixed symbol universe, an
append-only pick ledger, and a two-sided verification/backtest layer that
reconciles historical picks against realized prices.

Examples:
  sciquant scan
  sciquant verify --as-of 2026-08-01
  sciquant backtest
  sciquant portfolio
  sciquant serve`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&asOf, "as-of", "", "reference time for the run (RFC3339 or YYYY-MM-DD, default now)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// referenceTime resolves the injected reference time for a run. Every
// entry point goes through this so runs are reproducible without
// wall-clock coupling.
func referenceTime() (time.Time, error) {
	if asOf == "" {
		return time.Now().UTC(), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, asOf); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --as-of value %q", asOf)
}
