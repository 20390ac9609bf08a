// Package backtest reconciles every historical pick against its full
// subsequent price path, independent of whether the real timeframe has
// elapsed. Output is purely derived from ledger + history: re-running on
// unchanged inputs yields identical rows.
package backtest

import (
	"context"
	"sort"
	"time"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/logger"
)

const (
	// minSampleForRanking is the eligibility floor for a ranking row.
	minSampleForRanking = 2

	// lowSampleThreshold flags rankings built on thin evidence. Low-n
	// rankings are emitted with the flag, never hidden, to avoid
	// survivorship bias in reporting.
	lowSampleThreshold = 5
)

// Engine runs the two-sided reconciliation over the whole ledger.
type Engine struct {
	provider      contracts.MarketData
	archive       contracts.Archive
	lookbackYears int
	logger        *logger.Logger
}

// New creates a backtest engine. lookbackYears caps how far back history
// is fetched; picks older than that anchor at the ceiling.
func New(provider contracts.MarketData, archive contracts.Archive, lookbackYears int, log *logger.Logger) *Engine {
	if lookbackYears <= 0 {
		lookbackYears = 2
	}
	return &Engine{
		provider:      provider,
		archive:       archive,
		lookbackYears: lookbackYears,
		logger:        log,
	}
}

// Run backtests every archived pick at the injected reference time.
func (e *Engine) Run(ctx context.Context, now time.Time) (*contracts.BacktestReport, error) {
	entries, skipped, err := e.archive.ReadAll()
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		e.logger.WithField("skipped", skipped).Warn("Skipped malformed entries during backtest")
	}

	histories := make(map[string][]contracts.PriceBar)
	from := now.AddDate(-e.lookbackYears, 0, 0)

	report := &contracts.BacktestReport{
		GeneratedAt:         now,
		TotalPicks:          len(entries),
		MinSampleForRanking: minSampleForRanking,
		AlgorithmRanking:    []contracts.AlgorithmRanking{},
		Rows:                []contracts.BacktestRow{},
	}

	type algoStats struct {
		count     int
		hits      int
		sumReturn float64
	}
	byAlgo := make(map[string]*algoStats)

	var sumReturn float64
	for _, entry := range entries {
		history, ok := histories[entry.Symbol]
		if !ok {
			var err error
			history, err = e.provider.FetchHistory(ctx, entry.Symbol, from)
			if err != nil {
				e.logger.WithFields(map[string]interface{}{
					"symbol": entry.Symbol,
					"error":  err.Error(),
				}).Warn("History unavailable, pick excluded from window stats")
				history = nil
			}
			histories[entry.Symbol] = history
		}

		row, valid := buildRow(entry, history)
		report.Rows = append(report.Rows, row)
		if !valid {
			continue
		}

		report.WithValidReturn++
		sumReturn += row.ReturnInTimeframePct
		if row.Hit {
			report.HitCount++
		}

		stats := byAlgo[entry.Algorithm]
		if stats == nil {
			stats = &algoStats{}
			byAlgo[entry.Algorithm] = stats
		}
		stats.count++
		stats.sumReturn += row.ReturnInTimeframePct
		if row.Hit {
			stats.hits++
		}
	}

	if report.WithValidReturn > 0 {
		report.HitRatePct = float64(report.HitCount) / float64(report.WithValidReturn) * 100.0
		report.AvgReturnInTimeframePct = sumReturn / float64(report.WithValidReturn)
	}

	for name, stats := range byAlgo {
		if stats.count < minSampleForRanking {
			continue
		}
		report.AlgorithmRanking = append(report.AlgorithmRanking, contracts.AlgorithmRanking{
			Algorithm:    name,
			HitRatePct:   float64(stats.hits) / float64(stats.count) * 100.0,
			AvgReturnPct: stats.sumReturn / float64(stats.count),
			Count:        stats.count,
			LowSample:    stats.count < lowSampleThreshold,
		})
	}
	sort.Slice(report.AlgorithmRanking, func(i, j int) bool {
		a, b := report.AlgorithmRanking[i], report.AlgorithmRanking[j]
		if a.HitRatePct != b.HitRatePct {
			return a.HitRatePct > b.HitRatePct
		}
		if a.AvgReturnPct != b.AvgReturnPct {
			return a.AvgReturnPct > b.AvgReturnPct
		}
		return a.Algorithm < b.Algorithm
	})

	e.logger.WithFields(map[string]interface{}{
		"picks":        report.TotalPicks,
		"valid":        report.WithValidReturn,
		"hit_rate_pct": report.HitRatePct,
	}).Info("Backtest completed")

	return report, nil
}

// buildRow computes window statistics for one entry. The windowed return
// anchors on the first and last in-window bars rather than the nominal
// pick price, smoothing gap-open noise. The second result reports whether
// the row carries a valid windowed return.
func buildRow(entry contracts.LedgerEntry, history []contracts.PriceBar) (contracts.BacktestRow, bool) {
	row := contracts.BacktestRow{LedgerEntry: entry}

	forward := forwardBars(history, entry.PickedAt)
	if len(forward) == 0 {
		return row, false
	}

	windowDays := contracts.TimeframeDays(entry.Timeframe)
	pickedDay := entry.PickedAt.UTC().Truncate(24 * time.Hour)

	var window []contracts.PriceBar
	for _, bar := range forward {
		offset := int(bar.Date.Sub(pickedDay).Hours() / 24)
		if offset <= windowDays {
			window = append(window, bar)
		}
	}
	if len(window) == 0 {
		return row, false
	}

	first := window[0].Close
	last := window[len(window)-1].Close

	row.MinInWindow = first
	row.MaxInWindow = first
	for _, bar := range window {
		if bar.Close < row.MinInWindow {
			row.MinInWindow = bar.Close
		}
		if bar.Close > row.MaxInWindow {
			row.MaxInWindow = bar.Close
		}
	}

	if first > 0 {
		row.ReturnInTimeframePct = (last - first) / first * 100.0
	}

	latest := forward[len(forward)-1].Close
	row.LatestPrice = latest
	if first > 0 {
		row.ReturnSincePickPct = (latest - first) / first * 100.0
	}

	row.Hit = isHit(entry.Rating, row.ReturnInTimeframePct)
	return row, true
}

// isHit applies the rating-asymmetric success rule: buy-side picks must
// realize a positive windowed return, everything else gets a -5% tolerance
// band (boundary inclusive).
func isHit(rating contracts.Rating, returnInWindowPct float64) bool {
	if rating.IsBuySide() {
		return returnInWindowPct > 0
	}
	return returnInWindowPct >= -5.0
}

// forwardBars slices the history to bars on or after the pick date.
func forwardBars(history []contracts.PriceBar, pickedAt time.Time) []contracts.PriceBar {
	pickedDay := pickedAt.UTC().Truncate(24 * time.Hour)
	for i, bar := range history {
		if !bar.Date.Before(pickedDay) {
			return history[i:]
		}
	}
	return nil
}
