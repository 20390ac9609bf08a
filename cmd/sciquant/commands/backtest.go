package commands

import (
	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest every archived pick against its full price path",
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

		return a.runBacktest(cmd.Context(), now)
	},
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}
