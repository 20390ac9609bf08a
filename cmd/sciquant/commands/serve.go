package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmorand/sciquant/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the output artifacts over HTTP",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		router := api.NewRouter(a.cfg.OutputDir, a.cfg.LedgerDir, a.log)
		server := api.NewServer(a.cfg.Port, a.log, router)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			a.log.WithField("signal", sig.String()).Info("Shutdown signal received")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
