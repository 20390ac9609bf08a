package commands

import (
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify matured picks and write the performance report",
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

		return a.runVerify(cmd.Context(), now)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
