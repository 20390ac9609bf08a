package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rmorand/sciquant/internal/api"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report ledger and artifact freshness",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, skipped, err := a.archive.ReadAll()
		if err != nil {
			return err
		}

		fmt.Printf("Ledger:    %d entries (%d malformed skipped)\n", len(entries), skipped)
		if len(entries) > 0 {
			last := entries[len(entries)-1]
			fmt.Printf("Last pick: %s %s at %s\n",
				last.Symbol, last.Algorithm, last.PickedAt.UTC().Format("2006-01-02 15:04"))
		}

		current, err := a.archive.ReadCurrent()
		if err != nil {
			return err
		}
		if current == nil {
			fmt.Println("Current:   no snapshot, run a scan first")
		} else {
			fmt.Printf("Current:   %d picks, updated %s\n",
				len(current.Stocks), current.LastUpdated.UTC().Format("2006-01-02 15:04"))
		}

		for _, name := range []string{api.PerformanceArtifact, api.BacktestArtifact, api.PortfolioArtifact} {
			path := filepath.Join(a.cfg.OutputDir, name)
			info, err := os.Stat(path)
			if err != nil {
				fmt.Printf("Artifact:  %-16s not generated\n", name)
				continue
			}
			fmt.Printf("Artifact:  %-16s %s\n", name, info.ModTime().UTC().Format("2006-01-02 15:04"))
		}

		if a.mirror != nil {
			count, err := a.mirror.Count(cmd.Context())
			if err != nil {
				a.log.WithError(err).Warn("Ledger mirror unreachable")
			} else {
				fmt.Printf("Mirror:    %d rows\n", count)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
