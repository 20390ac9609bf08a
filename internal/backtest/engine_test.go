package backtest

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
	histories map[string][]contracts.PriceBar
}

func (f *fakeProvider) FetchStockData(_ context.Context, _ string) (*contracts.StockSnapshot, error) {
	return nil, contracts.ErrDataUnavailable
}

func (f *fakeProvider) FetchMultipleStocks(_ context.Context, _ []string) []*contracts.StockSnapshot {
	return nil
}

func (f *fakeProvider) FetchHistory(_ context.Context, symbol string, _ time.Time) ([]contracts.PriceBar, error) {
	history, ok := f.histories[symbol]
	if !ok {
		return nil, contracts.ErrDataUnavailable
	}
	return history, nil
}

type fakeArchive struct {
	entries []contracts.LedgerEntry
}

func (f *fakeArchive) ReadAll() ([]contracts.LedgerEntry, int, error) { return f.entries, 0, nil }
func (f *fakeArchive) ReadCurrent() (*contracts.ArchiveFile, error)  { return nil, nil }

func bars(start time.Time, closes ...float64) []contracts.PriceBar {
	out := make([]contracts.PriceBar, 0, len(closes))
	for i, c := range closes {
		out = append(out, contracts.PriceBar{Date: start.AddDate(0, 0, i), Close: c})
	}
	return out
}

func ratedEntry(symbol string, rating contracts.Rating, timeframe string, pickedAt time.Time) contracts.LedgerEntry {
	return contracts.LedgerEntry{
		Pick: contracts.Pick{
			Symbol:    symbol,
			Rating:    rating,
			Algorithm: "regime_reversion",
			Timeframe: timeframe,
		},
		PickedAt:   pickedAt,
		EntryPrice: 100,
	}
}

func TestIsHit(t *testing.T) {
	tests := []struct {
		name   string
		rating contracts.Rating
		ret    float64
		want   bool
	}{
		{"buy barely positive", contracts.RatingBuy, 0.01, true},
		{"buy flat misses", contracts.RatingBuy, 0, false},
		{"strong buy negative misses", contracts.RatingStrongBuy, -0.01, false},
		{"hold flat hits", contracts.RatingHold, 0, true},
		{"hold at the band boundary hits", contracts.RatingHold, -5.0, true},
		{"hold past the band misses", contracts.RatingHold, -5.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHit(tt.rating, tt.ret))
		})
	}
}

func TestBuildRow(t *testing.T) {
	pickedAt := time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC)
	pickedDay := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("window stats anchor on in-window bars", func(t *testing.T) {
		// 7d timeframe: a five trading-day window. Bars beyond day 5 only
		// feed the since-pick return.
		history := bars(pickedDay, 100, 98, 97, 101, 103, 104, 108, 110)
		entry := ratedEntry("AAPL", contracts.RatingBuy, "7d", pickedAt)

		row, valid := buildRow(entry, history)
		require.True(t, valid)

		assert.InDelta(t, 4.0, row.ReturnInTimeframePct, 1e-9)
		assert.InDelta(t, 97.0, row.MinInWindow, 1e-9)
		assert.InDelta(t, 104.0, row.MaxInWindow, 1e-9)
		assert.InDelta(t, 110.0, row.LatestPrice, 1e-9)
		assert.InDelta(t, 10.0, row.ReturnSincePickPct, 1e-9)
		assert.True(t, row.Hit)
	})

	t.Run("bars before the pick date are ignored", func(t *testing.T) {
		history := bars(pickedDay.AddDate(0, 0, -3), 90, 91, 92, 100, 105)
		entry := ratedEntry("AAPL", contracts.RatingBuy, "24h", pickedAt)

		row, valid := buildRow(entry, history)
		require.True(t, valid)
		assert.InDelta(t, 5.0, row.ReturnInTimeframePct, 1e-9)
	})

	t.Run("no forward bars invalidates the row", func(t *testing.T) {
		history := bars(pickedDay.AddDate(0, 0, -5), 90, 91, 92)
		entry := ratedEntry("AAPL", contracts.RatingBuy, "7d", pickedAt)

		_, valid := buildRow(entry, history)
		assert.False(t, valid)
	})

	t.Run("missing history invalidates the row", func(t *testing.T) {
		entry := ratedEntry("AAPL", contracts.RatingBuy, "7d", pickedAt)
		_, valid := buildRow(entry, nil)
		assert.False(t, valid)
	})
}

func TestEngine_Run(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	pickedAt := time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC)
	pickedDay := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	newFixture := func() (*fakeProvider, *fakeArchive) {
		provider := &fakeProvider{histories: map[string][]contracts.PriceBar{
			"WIN":  bars(pickedDay, 100, 102, 104, 106, 108, 110),
			"MISS": bars(pickedDay, 100, 99, 98, 97, 96, 95),
		}}
		archive := &fakeArchive{entries: []contracts.LedgerEntry{
			ratedEntry("WIN", contracts.RatingBuy, "7d", pickedAt),
			ratedEntry("MISS", contracts.RatingBuy, "7d", pickedAt),
			ratedEntry("WIN", contracts.RatingBuy, "24h", pickedAt.AddDate(0, 0, 1)),
			ratedEntry("GONE", contracts.RatingBuy, "7d", pickedAt),
		}}
		return provider, archive
	}

	t.Run("aggregates hits and per-algorithm rankings", func(t *testing.T) {
		provider, archive := newFixture()
		report, err := New(provider, archive, 2, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 4, report.TotalPicks)
		assert.Len(t, report.Rows, 4, "rows without history are kept, just excluded from stats")
		assert.Equal(t, 3, report.WithValidReturn)
		assert.Equal(t, 2, report.HitCount)
		assert.InDelta(t, 100.0*2/3, report.HitRatePct, 1e-9)

		require.Len(t, report.AlgorithmRanking, 1)
		ranking := report.AlgorithmRanking[0]
		assert.Equal(t, "regime_reversion", ranking.Algorithm)
		assert.Equal(t, 3, ranking.Count)
		assert.True(t, ranking.LowSample)
	})

	t.Run("rerunning on unchanged inputs is byte-identical", func(t *testing.T) {
		provider, archive := newFixture()
		engine := New(provider, archive, 2, logger.NewNop())

		first, err := engine.Run(context.Background(), now)
		require.NoError(t, err)
		second, err := engine.Run(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("algorithms below the sample floor are not ranked", func(t *testing.T) {
		provider := &fakeProvider{histories: map[string][]contracts.PriceBar{
			"WIN": bars(pickedDay, 100, 102),
		}}
		archive := &fakeArchive{entries: []contracts.LedgerEntry{
			ratedEntry("WIN", contracts.RatingBuy, "24h", pickedAt),
		}}

		report, err := New(provider, archive, 2, logger.NewNop()).Run(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, report.WithValidReturn)
		assert.Empty(t, report.AlgorithmRanking)
	})
}
