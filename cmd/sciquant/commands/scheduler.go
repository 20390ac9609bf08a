package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmorand/sciquant/internal/scheduler"
	"github.com/rmorand/sciquant/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the recurring scan, verify, and backtest jobs",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sched := scheduler.New(a.log)
		for _, job := range []scheduler.Job{
			jobs.NewScanJob(a.runScan, a.log),
			jobs.NewVerifyJob(a.runVerify, a.log),
			jobs.NewBacktestJob(a.runBacktest, a.log),
		} {
			if err := sched.AddJob(job); err != nil {
				return err
			}
		}

		sched.Start()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		a.log.WithField("signal", sig.String()).Info("Shutdown signal received")

		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}
