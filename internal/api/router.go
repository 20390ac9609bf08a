package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"github.com/rmorand/sciquant/pkg/logger"
)

// Artifact file names as written by the pipeline commands.
const (
	PerformanceArtifact = "performance.json"
	BacktestArtifact    = "backtest.json"
	PortfolioArtifact   = "portfolio.json"
)

// NewRouter builds the read-only artifact router. Every endpoint streams
// the latest atomically-written JSON artifact straight from disk.
func NewRouter(outputDir, ledgerDir string, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler).Methods("GET")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/picks", artifactHandler(filepath.Join(ledgerDir, "current.json"))).Methods("GET")
	apiRouter.HandleFunc("/performance", artifactHandler(filepath.Join(outputDir, PerformanceArtifact))).Methods("GET")
	apiRouter.HandleFunc("/backtest", artifactHandler(filepath.Join(outputDir, BacktestArtifact))).Methods("GET")
	apiRouter.HandleFunc("/portfolio", artifactHandler(filepath.Join(outputDir, PortfolioArtifact))).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthHandler reports server liveness.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "sciquant-api",
	})
}

// artifactHandler serves one artifact file, 404ing until the first run has
// produced it.
func artifactHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := os.ReadFile(path)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "artifact not generated yet",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from handler panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
