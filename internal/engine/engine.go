// Package engine orchestrates a scan run: fetch the universe, compute the
// regime once, fan every symbol out to all scorers, rank, truncate and
// append to the ledger.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/internal/regime"
	"github.com/rmorand/sciquant/internal/strategy"
	"github.com/rmorand/sciquant/pkg/logger"
)

const (
	// maxPicks caps a run's output after ranking.
	maxPicks = 20

	// Slippage model for very-high-risk entries: assume a 2% adverse fill
	// and protect it with an 8% stop.
	adverseFillPct = 0.02
	stopLossPct    = 0.08
)

// Engine runs the scan pipeline.
type Engine struct {
	provider contracts.MarketData
	detector *regime.Detector
	scorers  []strategy.Scorer
	logger   *logger.Logger
}

// RunResult summarizes one scan run.
type RunResult struct {
	Regime         *contracts.RegimeSignal
	UniverseSize   int
	FetchedCount   int
	CandidateCount int
	File           *contracts.ArchiveFile
}

// New creates a scan engine over the full scorer set.
func New(provider contracts.MarketData, detector *regime.Detector, log *logger.Logger) *Engine {
	return &Engine{
		provider: provider,
		detector: detector,
		scorers:  strategy.All(),
		logger:   log,
	}
}

// Run executes one scan at the injected reference time. Zero resolvable
// symbols across the entire universe is process-fatal; everything else is
// fault-isolated per symbol.
func (e *Engine) Run(ctx context.Context, symbols []string, benchmark string, now time.Time) (*RunResult, error) {
	if len(symbols) == 0 {
		return nil, contracts.ErrEmptyUniverse
	}

	// Regime is computed once per run from the benchmark. A configured
	// benchmark whose snapshot cannot be fetched yields an indeterminate
	// signal that gates the vetoed strategies off; the permissive default
	// applies only when no benchmark is configured at all.
	var regimeSignal *contracts.RegimeSignal
	if benchmark != "" {
		bench, err := e.provider.FetchStockData(ctx, benchmark)
		if err != nil {
			e.logger.WithError(err).Warn("Benchmark snapshot unavailable, regime indeterminate")
			regimeSignal = &contracts.RegimeSignal{
				BenchmarkSymbol: benchmark,
				Status:          contracts.RegimeIndeterminate,
			}
		} else {
			regimeSignal = e.detector.Detect(bench)
		}
	}

	snapshots := e.provider.FetchMultipleStocks(ctx, exclude(symbols, benchmark))
	if len(snapshots) == 0 {
		return nil, contracts.ErrEmptyUniverse
	}

	picks, bySymbol := e.scoreAll(snapshots, regimeSignal)
	candidates := len(picks)

	// Global ranking over raw scores; no cross-algorithm normalization.
	// Symbol then algorithm break ties so runs are deterministic.
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Score != picks[j].Score {
			return picks[i].Score > picks[j].Score
		}
		if picks[i].Symbol != picks[j].Symbol {
			return picks[i].Symbol < picks[j].Symbol
		}
		return picks[i].Algorithm < picks[j].Algorithm
	})
	if len(picks) > maxPicks {
		picks = picks[:maxPicks]
	}

	entries := make([]contracts.LedgerEntry, 0, len(picks))
	for _, pick := range picks {
		entries = append(entries, newEntry(pick, bySymbol[pick.Symbol], now))
	}

	result := &RunResult{
		Regime:         regimeSignal,
		UniverseSize:   len(symbols),
		FetchedCount:   len(snapshots),
		CandidateCount: candidates,
		File: &contracts.ArchiveFile{
			Stocks:      entries,
			LastUpdated: now,
			Regime:      regimeSignal,
		},
	}

	e.logger.WithFields(map[string]interface{}{
		"universe":   len(symbols),
		"fetched":    len(snapshots),
		"candidates": candidates,
		"picks":      len(entries),
	}).Info("Scan run completed")

	return result, nil
}

// scoreAll fans every snapshot out to all scorers.
func (e *Engine) scoreAll(snapshots []*contracts.StockSnapshot, regimeSignal *contracts.RegimeSignal) ([]*contracts.Pick, map[string]*contracts.StockSnapshot) {
	var picks []*contracts.Pick
	bySymbol := make(map[string]*contracts.StockSnapshot, len(snapshots))

	for _, snap := range snapshots {
		bySymbol[snap.Symbol] = snap
		for _, scorer := range e.scorers {
			if pick := scorer.Score(snap, regimeSignal); pick != nil {
				picks = append(picks, pick)
			}
		}
	}
	return picks, bySymbol
}

// newEntry converts a pick into its ledger form. Very-high-risk picks get
// a simulated entry with an adverse fill plus a protective stop, so the
// verification side measures execution-realistic returns.
func newEntry(pick *contracts.Pick, snap *contracts.StockSnapshot, now time.Time) contracts.LedgerEntry {
	entry := contracts.LedgerEntry{
		Pick:       *pick,
		PickedAt:   now,
		EntryPrice: snap.Price,
	}

	if pick.Risk == contracts.RiskVeryHigh {
		entry.SimulatedEntryPrice = snap.Price * (1 + adverseFillPct)
		entry.StopLoss = entry.SimulatedEntryPrice * (1 - stopLossPct)
	}
	return entry
}

// exclude drops the benchmark from the scored universe.
func exclude(symbols []string, benchmark string) []string {
	if benchmark == "" {
		return symbols
	}
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s != benchmark {
			out = append(out, s)
		}
	}
	return out
}
