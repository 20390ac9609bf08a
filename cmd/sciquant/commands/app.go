package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rmorand/sciquant/internal/backtest"
	"github.com/rmorand/sciquant/internal/engine"
	"github.com/rmorand/sciquant/internal/ledger"
	"github.com/rmorand/sciquant/internal/portfolio"
	"github.com/rmorand/sciquant/internal/provider"
	"github.com/rmorand/sciquant/internal/regime"
	"github.com/rmorand/sciquant/internal/universe"
	"github.com/rmorand/sciquant/internal/verify"
	"github.com/rmorand/sciquant/pkg/config"
	"github.com/rmorand/sciquant/pkg/database"
	"github.com/rmorand/sciquant/pkg/fsio"
	"github.com/rmorand/sciquant/pkg/httputil"
	"github.com/rmorand/sciquant/pkg/logger"
	"github.com/rmorand/sciquant/pkg/redis"
)

// app holds the wired pipeline components shared by all commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	provider *provider.Client
	archive  *ledger.FileArchive
	universe *universe.Loader

	// Optional ledger mirror; nil unless DATABASE_URL is configured.
	db     *database.DB
	mirror *ledger.Mirror
}

// newApp loads configuration and wires the components.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.LogFormat)

	httpClient := httputil.New(log, cfg.Provider.Timeout, cfg.Provider.RequestsPerSec)
	cache := redis.NewCache(redis.New(cfg.Redis, log), "sciquant")

	a := &app{
		cfg:      cfg,
		log:      log,
		provider: provider.New(cfg.Provider, httpClient, cache, log),
		archive:  ledger.NewFileArchive(cfg.LedgerDir, log),
		universe: universe.NewLoader(httpClient, log),
	}

	if cfg.Database.Enabled() {
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("ledger mirror unavailable: %w", err)
		}
		a.db = db
		a.mirror = ledger.NewMirror(db)
	}

	return a, nil
}

// Close releases held resources.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// runScan executes one scan run: resolve universe, score, append to the
// ledger, and mirror when configured.
func (a *app) runScan(ctx context.Context, now time.Time) error {
	symbols, err := a.universe.Load(ctx, a.cfg.Universe)
	if err != nil {
		return err
	}

	eng := engine.New(a.provider, regime.NewDetector(a.log), a.log)
	result, err := eng.Run(ctx, symbols, a.cfg.Benchmark, now)
	if err != nil {
		return err
	}

	if err := a.archive.Append(result.File, now); err != nil {
		return err
	}

	if a.mirror != nil {
		if err := a.mirror.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := a.mirror.Append(ctx, result.File.Stocks); err != nil {
			a.log.WithError(err).Warn("Ledger mirror append failed, files remain canonical")
		}
	}

	return nil
}

// runVerify recomputes the performance report and writes it atomically.
func (a *app) runVerify(ctx context.Context, now time.Time) error {
	eng := verify.New(a.provider, a.archive, a.log)
	report, err := eng.Run(ctx, now)
	if err != nil {
		return err
	}

	path := filepath.Join(a.cfg.OutputDir, "performance.json")
	if err := fsio.WriteJSONAtomic(path, report); err != nil {
		return err
	}

	a.log.WithFields(map[string]interface{}{
		"total":    report.TotalPicks,
		"verified": report.Verified,
		"pending":  report.Pending,
		"win_rate": report.WinRate,
	}).Info("Performance report written")

	return nil
}

// runBacktest regenerates the backtest report and writes it atomically.
func (a *app) runBacktest(ctx context.Context, now time.Time) error {
	eng := backtest.New(a.provider, a.archive, a.cfg.Provider.LookbackYears, a.log)
	report, err := eng.Run(ctx, now)
	if err != nil {
		return err
	}

	path := filepath.Join(a.cfg.OutputDir, "backtest.json")
	if err := fsio.WriteJSONAtomic(path, report); err != nil {
		return err
	}

	a.log.WithFields(map[string]interface{}{
		"picks":        report.TotalPicks,
		"valid":        report.WithValidReturn,
		"hit_rate_pct": report.HitRatePct,
	}).Info("Backtest report written")

	return nil
}

// runPortfolio builds the allocation artifact from the current pick set.
func (a *app) runPortfolio(_ context.Context, now time.Time) error {
	current, err := a.archive.ReadCurrent()
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("no current picks, run a scan first")
	}

	opt := portfolio.NewOptimizer(a.cfg.Portfolio, a.log)
	artifact := opt.EqualWeight(current.Stocks, now)

	path := filepath.Join(a.cfg.OutputDir, "portfolio.json")
	if err := fsio.WriteJSONAtomic(path, artifact); err != nil {
		return err
	}

	a.log.WithFields(map[string]interface{}{
		"positions":    artifact.TotalPositions,
		"total_weight": artifact.TotalWeight,
	}).Info("Portfolio artifact written")

	return nil
}
