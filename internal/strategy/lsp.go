package strategy

import (
	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/internal/indicators"
)

const (
	pennyPriceFloor   = 0.1
	pennyPriceCeiling = 5.0

	// A pick must support a $5,000 position at 2% of average daily dollar
	// volume, otherwise the quoted move is not tradable at size.
	minTradableDollars  = 5_000.0
	participationRate   = 0.02
	slippageHaircutPct  = 3.0
	minSurvivingEdgePct = 1.0
	minRawChangePct     = 2.0
)

// LiquidityPenny is the Liquidity-Shielded Penny (LSP) strategy: chase
// intraday movers in the penny band, but only when the move survives a
// punitive slippage haircut and the book is deep enough to get out of.
type LiquidityPenny struct{}

// Name implements Scorer.
func (LiquidityPenny) Name() string { return "liquidity_penny" }

// Score implements Scorer.
func (LiquidityPenny) Score(snap *contracts.StockSnapshot, _ *contracts.RegimeSignal) *contracts.Pick {
	if snap.Price <= pennyPriceFloor || snap.Price > pennyPriceCeiling {
		return nil
	}

	avgDollarVolume := float64(snap.AvgVolume) * snap.Price
	tradableDepth := avgDollarVolume * participationRate
	if tradableDepth < minTradableDollars {
		return nil
	}

	// Slippage torture test: the apparent edge must survive a flat 3%
	// haircut with at least 1% remaining.
	tortureAdjusted := snap.ChangePercent - slippageHaircutPct
	if tortureAdjusted < minSurvivingEdgePct {
		return nil
	}

	if snap.ChangePercent < minRawChangePct {
		return nil
	}

	score := indicators.Clamp(tortureAdjusted*10.0+50.0, 0, 100)

	rating := contracts.RatingBuy
	if score > 80 {
		rating = contracts.RatingStrongBuy
	}

	return seal(&contracts.Pick{
		Score:     score,
		Rating:    rating,
		Algorithm: LiquidityPenny{}.Name(),
		Timeframe: "24h",
		Risk:      contracts.RiskVeryHigh,
		Metrics: map[string]float64{
			"price":              snap.Price,
			"changePercent":      snap.ChangePercent,
			"avgDollarVolume":    avgDollarVolume,
			"tradableDepth":      tradableDepth,
			"tortureAdjustedPct": tortureAdjusted,
		},
	}, snap)
}
