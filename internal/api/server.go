// Package api serves the pipeline's output artifacts read-only over HTTP.
// The dashboard consumes these endpoints; the core never depends on it.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rmorand/sciquant/pkg/logger"
)

// Server is the artifact HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer creates the server on the given port.
func NewServer(port string, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting artifact API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down artifact API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
