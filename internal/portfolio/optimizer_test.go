package portfolio

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/config"
	"github.com/rmorand/sciquant/pkg/logger"
)

func makeEntries(n int) []contracts.LedgerEntry {
	entries := make([]contracts.LedgerEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, contracts.LedgerEntry{
			Pick: contracts.Pick{
				Symbol:    fmt.Sprintf("SYM%02d", i),
				Score:     float64(90 - i),
				Rating:    contracts.RatingBuy,
				Algorithm: "volatility_momentum",
			},
			EntryPrice: 100,
		})
	}
	return entries
}

func TestOptimizer_EqualWeight(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	cfg := config.PortfolioConfig{MaxPositions: 10, MaxWeight: 0.2, ReferenceCapital: 10_000}
	opt := NewOptimizer(cfg, logger.NewNop())

	t.Run("no picks yields an empty allocation", func(t *testing.T) {
		artifact := opt.EqualWeight(nil, now)
		assert.Zero(t, artifact.TotalPositions)
		assert.Zero(t, artifact.TotalWeight)
		assert.Empty(t, artifact.Allocations)
	})

	t.Run("full book splits evenly across the position cap", func(t *testing.T) {
		artifact := opt.EqualWeight(makeEntries(20), now)

		require.Len(t, artifact.Allocations, 10)
		for _, alloc := range artifact.Allocations {
			assert.InDelta(t, 0.1, alloc.Weight, 1e-9)
			assert.InDelta(t, 1_000.0, alloc.NotionalPer10K, 1e-9)
		}
		assert.InDelta(t, 1.0, artifact.TotalWeight, 1e-9)

		// Highest scores first.
		assert.Equal(t, "SYM00", artifact.Allocations[0].Symbol)
		assert.Equal(t, "SYM09", artifact.Allocations[9].Symbol)
	})

	t.Run("sparse book clamps without renormalizing", func(t *testing.T) {
		artifact := opt.EqualWeight(makeEntries(3), now)

		require.Len(t, artifact.Allocations, 3)
		for _, alloc := range artifact.Allocations {
			assert.InDelta(t, 0.2, alloc.Weight, 1e-9, "1/3 clamps to the cap")
			assert.InDelta(t, 2_000.0, alloc.NotionalPer10K, 1e-9)
		}
		// The remaining 40% is implicit cash, not redistributed.
		assert.InDelta(t, 0.6, artifact.TotalWeight, 1e-9)
	})

	t.Run("unpriced picks are dropped before sizing", func(t *testing.T) {
		entries := makeEntries(4)
		entries[1].EntryPrice = 0
		artifact := opt.EqualWeight(entries, now)

		require.Len(t, artifact.Allocations, 3)
		for _, alloc := range artifact.Allocations {
			assert.NotEqual(t, "SYM01", alloc.Symbol)
		}
	})

	t.Run("simulated entry price sizes the position", func(t *testing.T) {
		entries := makeEntries(1)
		entries[0].SimulatedEntryPrice = 102
		artifact := opt.EqualWeight(entries, now)

		require.Len(t, artifact.Allocations, 1)
		assert.InDelta(t, 102.0, artifact.Allocations[0].EntryPrice, 1e-9)
	})

	t.Run("ties break on symbol for deterministic output", func(t *testing.T) {
		entries := []contracts.LedgerEntry{
			{Pick: contracts.Pick{Symbol: "BBB", Score: 80}, EntryPrice: 10},
			{Pick: contracts.Pick{Symbol: "AAA", Score: 80}, EntryPrice: 10},
		}
		artifact := opt.EqualWeight(entries, now)
		require.Len(t, artifact.Allocations, 2)
		assert.Equal(t, "AAA", artifact.Allocations[0].Symbol)
	})
}
