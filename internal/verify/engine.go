// Package verify matures archived picks past their timeframe and
// classifies them Win/Loss/Pending against current prices. The whole
// report is recomputed from the ledger on every run; nothing is patched
// incrementally.
package verify

import (
	"context"
	"sort"
	"time"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/logger"
)

// topHitCount is the size of the recent-wins list in the report.
const topHitCount = 10

// Engine reconciles ledger entries against current prices.
type Engine struct {
	provider contracts.MarketData
	archive  contracts.Archive
	logger   *logger.Logger
}

// New creates a verification engine.
func New(provider contracts.MarketData, archive contracts.Archive, log *logger.Logger) *Engine {
	return &Engine{provider: provider, archive: archive, logger: log}
}

// Run verifies every archived pick at the injected reference time and
// builds the performance report.
func (e *Engine) Run(ctx context.Context, now time.Time) (*contracts.PerformanceReport, error) {
	entries, skipped, err := e.archive.ReadAll()
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		e.logger.WithField("skipped", skipped).Warn("Skipped malformed entries during verification")
	}

	// One price fetch per symbol per run; picks of the same symbol share it.
	prices := make(map[string]float64)

	verified := make([]contracts.VerifiedPick, 0, len(entries))
	for _, entry := range entries {
		verified = append(verified, e.verifyOne(ctx, entry, now, prices))
	}

	return buildReport(verified, now), nil
}

// verifyOne classifies a single entry. Immature picks never trigger a
// price fetch; fetch failures stay Pending rather than silently becoming
// losses.
func (e *Engine) verifyOne(ctx context.Context, entry contracts.LedgerEntry, now time.Time, prices map[string]float64) contracts.VerifiedPick {
	vp := contracts.VerifiedPick{
		LedgerEntry: entry,
		VerifiedAt:  now,
		DaysHeld:    int(now.Sub(entry.PickedAt).Hours() / 24),
		Status:      contracts.StatusPending,
	}

	if vp.DaysHeld < contracts.TimeframeDays(entry.Timeframe) {
		return vp
	}

	exitPrice, ok := prices[entry.Symbol]
	if !ok {
		snap, err := e.provider.FetchStockData(ctx, entry.Symbol)
		if err != nil || snap == nil || snap.Price <= 0 {
			e.logger.WithFields(map[string]interface{}{
				"symbol": entry.Symbol,
				"error":  errString(err),
			}).Warn("Exit price unavailable, pick stays pending")
			prices[entry.Symbol] = 0
			return vp
		}
		exitPrice = snap.Price
		prices[entry.Symbol] = exitPrice
	}
	if exitPrice <= 0 {
		return vp
	}

	entryPrice := entry.EffectiveEntryPrice()
	if entryPrice <= 0 {
		return vp
	}

	vp.ExitPrice = exitPrice
	vp.ReturnPercent = (exitPrice - entryPrice) / entryPrice * 100.0

	if vp.ReturnPercent > 0 {
		vp.Status = contracts.StatusWin
	} else {
		vp.Status = contracts.StatusLoss
	}

	// A breached stop overrides any other computation.
	if entry.StopLoss > 0 && exitPrice <= entry.StopLoss {
		vp.Status = contracts.StatusLoss
	}

	return vp
}

// buildReport aggregates verified picks into the performance artifact.
func buildReport(picks []contracts.VerifiedPick, now time.Time) *contracts.PerformanceReport {
	report := &contracts.PerformanceReport{
		LastVerified: now,
		TotalPicks:   len(picks),
		ByAlgorithm:  make(map[string]contracts.AlgorithmPerformance),
		RecentHits:   []contracts.VerifiedPick{},
		AllPicks:     picks,
	}

	var totalReturn float64
	byAlgo := make(map[string]*contracts.AlgorithmPerformance)

	for _, p := range picks {
		algo := byAlgo[p.Algorithm]
		if algo == nil {
			algo = &contracts.AlgorithmPerformance{Algorithm: p.Algorithm}
			byAlgo[p.Algorithm] = algo
		}
		algo.Total++

		switch p.Status {
		case contracts.StatusPending:
			report.Pending++
			continue
		case contracts.StatusWin:
			report.Wins++
			algo.Wins++
		case contracts.StatusLoss:
			report.Losses++
			algo.Losses++
		}

		report.Verified++
		algo.Verified++
		totalReturn += p.ReturnPercent
		algo.AvgReturn += p.ReturnPercent
	}

	if report.Verified > 0 {
		report.WinRate = float64(report.Wins) / float64(report.Verified) * 100.0
		report.AvgReturn = totalReturn / float64(report.Verified)
	}

	for name, algo := range byAlgo {
		if algo.Verified > 0 {
			algo.WinRate = float64(algo.Wins) / float64(algo.Verified) * 100.0
			algo.AvgReturn /= float64(algo.Verified)
		}
		report.ByAlgorithm[name] = *algo
	}

	wins := make([]contracts.VerifiedPick, 0, report.Wins)
	for _, p := range picks {
		if p.Status == contracts.StatusWin {
			wins = append(wins, p)
		}
	}
	sort.Slice(wins, func(i, j int) bool { return wins[i].ReturnPercent > wins[j].ReturnPercent })
	if len(wins) > topHitCount {
		wins = wins[:topHitCount]
	}
	report.RecentHits = wins

	return report
}

func errString(err error) string {
	if err == nil {
		return "price not positive"
	}
	return err.Error()
}
