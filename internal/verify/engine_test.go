package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/logger"
)

type fakeProvider struct {
	prices     map[string]float64
	fetchCalls int
}

func (f *fakeProvider) FetchStockData(_ context.Context, symbol string) (*contracts.StockSnapshot, error) {
	f.fetchCalls++
	price, ok := f.prices[symbol]
	if !ok {
		return nil, contracts.ErrDataUnavailable
	}
	return &contracts.StockSnapshot{Symbol: symbol, Price: price}, nil
}

func (f *fakeProvider) FetchMultipleStocks(_ context.Context, _ []string) []*contracts.StockSnapshot {
	return nil
}

func (f *fakeProvider) FetchHistory(_ context.Context, _ string, _ time.Time) ([]contracts.PriceBar, error) {
	return nil, contracts.ErrDataUnavailable
}

// emptySnapshotProvider resolves every symbol to no snapshot and no
// error, which a conforming market-data client is allowed to do.
type emptySnapshotProvider struct{ fakeProvider }

func (e *emptySnapshotProvider) FetchStockData(_ context.Context, _ string) (*contracts.StockSnapshot, error) {
	return nil, nil
}

type fakeArchive struct {
	entries []contracts.LedgerEntry
	skipped int
}

func (f *fakeArchive) ReadAll() ([]contracts.LedgerEntry, int, error) {
	return f.entries, f.skipped, nil
}

func (f *fakeArchive) ReadCurrent() (*contracts.ArchiveFile, error) { return nil, nil }

func pickAt(symbol, algorithm, timeframe string, pickedAt time.Time, entryPrice float64) contracts.LedgerEntry {
	return contracts.LedgerEntry{
		Pick: contracts.Pick{
			Symbol:    symbol,
			Rating:    contracts.RatingBuy,
			Algorithm: algorithm,
			Timeframe: timeframe,
		},
		PickedAt:   pickedAt,
		EntryPrice: entryPrice,
	}
}

func TestEngine_Run(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	t.Run("immature picks stay pending without a price fetch", func(t *testing.T) {
		provider := &fakeProvider{prices: map[string]float64{"AAPL": 120}}
		archive := &fakeArchive{entries: []contracts.LedgerEntry{
			pickAt("AAPL", "regime_reversion", "7d", now.AddDate(0, 0, -2), 100),
		}}

		report, err := New(provider, archive, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 1, report.TotalPicks)
		assert.Equal(t, 1, report.Pending)
		assert.Zero(t, report.Verified)
		assert.Zero(t, provider.fetchCalls, "immature picks must not fetch prices")
	})

	t.Run("matured picks classify win or loss", func(t *testing.T) {
		provider := &fakeProvider{prices: map[string]float64{"AAPL": 110, "MSFT": 90}}
		archive := &fakeArchive{entries: []contracts.LedgerEntry{
			pickAt("AAPL", "regime_reversion", "7d", now.AddDate(0, 0, -10), 100),
			pickAt("MSFT", "regime_reversion", "7d", now.AddDate(0, 0, -10), 100),
		}}

		report, err := New(provider, archive, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 2, report.Verified)
		assert.Equal(t, 1, report.Wins)
		assert.Equal(t, 1, report.Losses)
		assert.InDelta(t, 50.0, report.WinRate, 1e-9)
		assert.InDelta(t, 0.0, report.AvgReturn, 1e-9) // +10% and -10%

		perf, ok := report.ByAlgorithm["regime_reversion"]
		require.True(t, ok)
		assert.Equal(t, 2, perf.Verified)
		assert.Equal(t, 1, perf.Wins)
	})

	t.Run("fetch failures stay pending, never become losses", func(t *testing.T) {
		provider := &fakeProvider{prices: map[string]float64{}}
		archive := &fakeArchive{entries: []contracts.LedgerEntry{
			pickAt("GONE", "regime_reversion", "7d", now.AddDate(0, 0, -30), 100),
		}}

		report, err := New(provider, archive, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 1, report.Pending)
		assert.Zero(t, report.Losses)
	})

	t.Run("a nil snapshot without an error stays pending", func(t *testing.T) {
		archive := &fakeArchive{entries: []contracts.LedgerEntry{
			pickAt("AAPL", "regime_reversion", "7d", now.AddDate(0, 0, -10), 100),
		}}

		report, err := New(&emptySnapshotProvider{}, archive, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 1, report.Pending)
		assert.Zero(t, report.Losses)
	})

	t.Run("one fetch per symbol per run", func(t *testing.T) {
		provider := &fakeProvider{prices: map[string]float64{"AAPL": 110}}
		archive := &fakeArchive{entries: []contracts.LedgerEntry{
			pickAt("AAPL", "regime_reversion", "7d", now.AddDate(0, 0, -10), 100),
			pickAt("AAPL", "volatility_momentum", "1m", now.AddDate(0, 0, -40), 100),
		}}

		_, err := New(provider, archive, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, provider.fetchCalls)
	})

	t.Run("a breached stop is a loss", func(t *testing.T) {
		entry := pickAt("PNNY", "liquidity_penny", "24h", now.AddDate(0, 0, -10), 2.50)
		entry.SimulatedEntryPrice = 2.55
		entry.StopLoss = 2.346

		provider := &fakeProvider{prices: map[string]float64{"PNNY": 2.30}}
		archive := &fakeArchive{entries: []contracts.LedgerEntry{entry}}

		report, err := New(provider, archive, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)

		require.Len(t, report.AllPicks, 1)
		verified := report.AllPicks[0]
		assert.Equal(t, contracts.StatusLoss, verified.Status)
		assert.InDelta(t, (2.30-2.55)/2.55*100, verified.ReturnPercent, 1e-9,
			"return measures from the simulated entry")
	})

	t.Run("recent hits rank wins by return", func(t *testing.T) {
		provider := &fakeProvider{prices: map[string]float64{"AAA": 105, "BBB": 130, "CCC": 90}}
		archive := &fakeArchive{entries: []contracts.LedgerEntry{
			pickAt("AAA", "regime_reversion", "7d", now.AddDate(0, 0, -10), 100),
			pickAt("BBB", "regime_reversion", "7d", now.AddDate(0, 0, -10), 100),
			pickAt("CCC", "regime_reversion", "7d", now.AddDate(0, 0, -10), 100),
		}}

		report, err := New(provider, archive, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)

		require.Len(t, report.RecentHits, 2)
		assert.Equal(t, "BBB", report.RecentHits[0].Symbol)
		assert.Equal(t, "AAA", report.RecentHits[1].Symbol)
	})
}
