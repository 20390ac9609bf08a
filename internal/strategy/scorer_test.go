package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmorand/sciquant/internal/contracts"
)

func snapshotWithCloses(symbol string, closes []float64) *contracts.StockSnapshot {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	history := make([]contracts.PriceBar, 0, len(closes))
	for i, c := range closes {
		history = append(history, contracts.PriceBar{
			Date:   base.AddDate(0, 0, i),
			Close:  c,
			High:   c,
			Low:    c,
			Volume: 1_000_000,
		})
	}

	snap := &contracts.StockSnapshot{
		Symbol:    symbol,
		Name:      symbol + " Inc.",
		Volume:    1_000_000,
		AvgVolume: 1_000_000,
		History:   history,
	}
	if len(closes) > 0 {
		snap.Price = closes[len(closes)-1]
	}
	return snap
}

func bullish() *contracts.RegimeSignal {
	return &contracts.RegimeSignal{BenchmarkSymbol: "SPY", Status: contracts.RegimeBullish}
}

func bearish() *contracts.RegimeSignal {
	return &contracts.RegimeSignal{BenchmarkSymbol: "SPY", Status: contracts.RegimeBearish}
}

// oversoldUptrend builds a series whose price sits far above its 200-bar
// average while the last 14 deltas are all losses, driving RSI to 0.
func oversoldUptrend() *contracts.StockSnapshot {
	closes := make([]float64, 0, 200)
	for i := 0; i < 185; i++ {
		closes = append(closes, 100)
	}
	for i := 0; i < 15; i++ {
		closes = append(closes, 210-float64(i)*2)
	}
	return snapshotWithCloses("DIP", closes)
}

func TestRegimeReversion_Score(t *testing.T) {
	scorer := RegimeReversion{}

	t.Run("oversold stock in an uptrend qualifies", func(t *testing.T) {
		pick := scorer.Score(oversoldUptrend(), bullish())
		require.NotNil(t, pick)

		assert.Equal(t, "regime_reversion", pick.Algorithm)
		assert.Equal(t, "7d", pick.Timeframe)
		assert.Equal(t, contracts.RiskMedium, pick.Risk)
		assert.Equal(t, contracts.RatingStrongBuy, pick.Rating)
		assert.InDelta(t, 100.0, pick.Score, 1e-9)
		assert.InDelta(t, 0.0, pick.Metrics["rsi"], 1e-9)
		assert.NotEmpty(t, pick.ContentHash)
	})

	t.Run("moderate oversold maps to Buy", func(t *testing.T) {
		// Last 14 deltas: one +7 gain, thirteen -1 losses. RSI lands at
		// exactly 35, so the score is (40-35)*2+60 = 70.
		closes := make([]float64, 0, 200)
		for i := 0; i < 185; i++ {
			closes = append(closes, 50)
		}
		closes = append(closes, 100, 107)
		for i := 0; i < 13; i++ {
			closes = append(closes, 107-float64(i+1))
		}
		pick := scorer.Score(snapshotWithCloses("DIP", closes), bullish())
		require.NotNil(t, pick)

		assert.InDelta(t, 35.0, pick.Metrics["rsi"], 1e-9)
		assert.InDelta(t, 70.0, pick.Score, 1e-9)
		assert.Equal(t, contracts.RatingBuy, pick.Rating)
	})

	t.Run("bearish regime vetoes absolutely", func(t *testing.T) {
		assert.Nil(t, scorer.Score(oversoldUptrend(), bearish()))
	})

	t.Run("indeterminate regime vetoes too", func(t *testing.T) {
		indeterminate := &contracts.RegimeSignal{Status: contracts.RegimeIndeterminate}
		assert.Nil(t, scorer.Score(oversoldUptrend(), indeterminate))
	})

	t.Run("no benchmark defaults permissive", func(t *testing.T) {
		assert.NotNil(t, scorer.Score(oversoldUptrend(), nil))
	})

	t.Run("calm stock is not oversold", func(t *testing.T) {
		closes := make([]float64, 200)
		for i := range closes {
			closes[i] = 100 + float64(i)*0.1
		}
		assert.Nil(t, scorer.Score(snapshotWithCloses("FLAT", closes), bullish()))
	})

	t.Run("insufficient history disqualifies", func(t *testing.T) {
		closes := make([]float64, 150)
		for i := range closes {
			closes[i] = 100
		}
		assert.Nil(t, scorer.Score(snapshotWithCloses("NEW", closes), bullish()))
	})
}

func TestVolatilityMomentum_Score(t *testing.T) {
	scorer := VolatilityMomentum{}

	t.Run("smooth momentum scores at the ceiling", func(t *testing.T) {
		// Strictly rising 10% over the window: Ulcer 0, Martin = return.
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100 + float64(i)*10.0/59.0
		}
		pick := scorer.Score(snapshotWithCloses("MOMO", closes), nil)
		require.NotNil(t, pick)

		assert.Equal(t, "volatility_momentum", pick.Algorithm)
		assert.Equal(t, "1m", pick.Timeframe)
		assert.Equal(t, contracts.RiskLow, pick.Risk)
		assert.Equal(t, contracts.RatingStrongBuy, pick.Rating)
		assert.InDelta(t, 100.0, pick.Score, 1e-9)
		assert.InDelta(t, 0.0, pick.Metrics["ulcerIndex"], 1e-9)
	})

	t.Run("jagged path with the same return is rejected", func(t *testing.T) {
		// Repeated 30% drawdowns crush the Martin ratio below the floor.
		closes := make([]float64, 60)
		for i := range closes {
			if i%2 == 0 {
				closes[i] = 100
			} else {
				closes[i] = 70
			}
		}
		closes[0] = 100
		closes[59] = 106
		assert.Nil(t, scorer.Score(snapshotWithCloses("CHOP", closes), nil))
	})

	t.Run("weak momentum is rejected", func(t *testing.T) {
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100 + float64(i)*0.01
		}
		assert.Nil(t, scorer.Score(snapshotWithCloses("SLOW", closes), nil))
	})

	t.Run("insufficient history disqualifies", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		assert.Nil(t, scorer.Score(snapshotWithCloses("NEW", closes), nil))
	})
}

func TestLiquidityPenny_Score(t *testing.T) {
	scorer := LiquidityPenny{}

	qualifying := func() *contracts.StockSnapshot {
		return &contracts.StockSnapshot{
			Symbol:        "PNNY",
			Price:         2.50,
			ChangePercent: 5.0,
			AvgVolume:     200_000, // $500k daily, $10k tradable depth
		}
	}

	t.Run("liquid penny mover qualifies", func(t *testing.T) {
		pick := scorer.Score(qualifying(), nil)
		require.NotNil(t, pick)

		assert.Equal(t, "liquidity_penny", pick.Algorithm)
		assert.Equal(t, "24h", pick.Timeframe)
		assert.Equal(t, contracts.RiskVeryHigh, pick.Risk)
		assert.InDelta(t, 70.0, pick.Score, 1e-9) // (5-3)*10+50
		assert.InDelta(t, 2.0, pick.Metrics["tortureAdjustedPct"], 1e-9)
		assert.InDelta(t, 10_000.0, pick.Metrics["tradableDepth"], 1e-9)
	})

	t.Run("haircut boundary is inclusive", func(t *testing.T) {
		snap := qualifying()
		snap.ChangePercent = 4.0 // exactly 1% survives the 3% haircut
		pick := scorer.Score(snap, nil)
		require.NotNil(t, pick)
		assert.InDelta(t, 60.0, pick.Score, 1e-9)
	})

	tests := []struct {
		name   string
		mutate func(*contracts.StockSnapshot)
	}{
		{
			name:   "above the penny ceiling",
			mutate: func(s *contracts.StockSnapshot) { s.Price = 6.0 },
		},
		{
			name:   "below the penny floor",
			mutate: func(s *contracts.StockSnapshot) { s.Price = 0.05 },
		},
		{
			name:   "book too thin to exit",
			mutate: func(s *contracts.StockSnapshot) { s.AvgVolume = 50_000 },
		},
		{
			name:   "edge dies in the haircut",
			mutate: func(s *contracts.StockSnapshot) { s.ChangePercent = 3.5 },
		},
		{
			name:   "no move at all",
			mutate: func(s *contracts.StockSnapshot) { s.ChangePercent = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := qualifying()
			tt.mutate(snap)
			assert.Nil(t, scorer.Score(snap, nil))
		})
	}
}

func TestScientificCANSLIM_Score(t *testing.T) {
	scorer := ScientificCANSLIM{}

	stageTwo := func() *contracts.StockSnapshot {
		// Linear rise from 100 to 150 over a year: stacked averages,
		// rising 200-bar SMA, at the high, +50% twelve-month return.
		closes := make([]float64, 252)
		for i := range closes {
			closes[i] = 100 + float64(i)*50.0/251.0
		}
		return snapshotWithCloses("GROW", closes)
	}

	t.Run("stage-two leader qualifies", func(t *testing.T) {
		pick := scorer.Score(stageTwo(), bullish())
		require.NotNil(t, pick)

		assert.Equal(t, "scientific_canslim", pick.Algorithm)
		assert.Equal(t, "1y", pick.Timeframe)
		assert.Equal(t, contracts.RiskMedium, pick.Risk)
		assert.InDelta(t, 100.0, pick.Metrics["rsRating"], 1e-9)
		assert.InDelta(t, 0.0, pick.Metrics["pctOffHigh"], 1e-6)
		assert.Greater(t, pick.Score, 60.0)
	})

	t.Run("bearish regime vetoes regardless of the chart", func(t *testing.T) {
		assert.Nil(t, scorer.Score(stageTwo(), bearish()))
	})

	t.Run("downtrend fails the ladder", func(t *testing.T) {
		closes := make([]float64, 252)
		for i := range closes {
			closes[i] = 150 - float64(i)*50.0/251.0
		}
		assert.Nil(t, scorer.Score(snapshotWithCloses("FADE", closes), bullish()))
	})

	t.Run("deep off the high disqualifies", func(t *testing.T) {
		// Same uptrend, but with an old blow-off spike the price never
		// reclaimed, leaving it more than 25% below the 52-week high.
		closes := make([]float64, 252)
		for i := range closes {
			closes[i] = 100 + float64(i)*50.0/251.0
		}
		closes[60] = 210
		assert.Nil(t, scorer.Score(snapshotWithCloses("BLOW", closes), bullish()))
	})

	t.Run("weak relative strength disqualifies", func(t *testing.T) {
		// +10% over the year maps to an RS rating of 60, below the floor.
		closes := make([]float64, 252)
		for i := range closes {
			closes[i] = 100 + float64(i)*10.0/251.0
		}
		assert.Nil(t, scorer.Score(snapshotWithCloses("MEH", closes), bullish()))
	})
}

func TestAll(t *testing.T) {
	scorers := All()
	require.Len(t, scorers, 4)

	names := make(map[string]bool)
	for _, s := range scorers {
		names[s.Name()] = true
	}
	assert.True(t, names["regime_reversion"])
	assert.True(t, names["volatility_momentum"])
	assert.True(t, names["liquidity_penny"])
	assert.True(t, names["scientific_canslim"])
}
