package commands

import (
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Build the equal-weight allocation from current picks",
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

		return a.runPortfolio(cmd.Context(), now)
	},
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
}
