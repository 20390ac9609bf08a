package strategy

import (
	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/internal/indicators"
)

// VolatilityMomentum is the Volatility-Adjusted Momentum (VAM) strategy:
// reward recent momentum in proportion to how smoothly it was earned,
// using a Martin-like ratio (return over Ulcer Index) on the last 60 bars.
type VolatilityMomentum struct{}

// Name implements Scorer.
func (VolatilityMomentum) Name() string { return "volatility_momentum" }

// Score implements Scorer. Momentum is regime-agnostic here; the Ulcer
// denominator already punishes picks made into jagged declines.
func (VolatilityMomentum) Score(snap *contracts.StockSnapshot, _ *contracts.RegimeSignal) *contracts.Pick {
	closes := snap.Closes()
	if len(closes) < 50 {
		return nil
	}

	window := closes
	if len(window) > 60 {
		window = window[len(window)-60:]
	}

	totalReturn := indicators.TotalReturnPct(window)
	if totalReturn < 5.0 {
		return nil
	}

	ulcer := indicators.UlcerIndex(window)
	martin := indicators.MartinRatio(totalReturn, ulcer)

	score := indicators.Clamp(martin*10.0+40.0, 0, 100)
	if score <= 60 {
		return nil
	}

	rating := contracts.RatingBuy
	if score > 85 {
		rating = contracts.RatingStrongBuy
	}

	return seal(&contracts.Pick{
		Score:     score,
		Rating:    rating,
		Algorithm: VolatilityMomentum{}.Name(),
		Timeframe: "1m",
		Risk:      contracts.RiskLow,
		Metrics: map[string]float64{
			"totalReturnPct": totalReturn,
			"ulcerIndex":     ulcer,
			"martinRatio":    martin,
			"windowBars":     float64(len(window)),
		},
	}, snap)
}
