package commands

import (
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the universe and append picks to the ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		now, err := referenceTime()
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.runScan(cmd.Context(), now)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
