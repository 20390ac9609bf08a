package strategy

import (
	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/internal/indicators"
)

// RegimeReversion is the Regime-Aware Reversion (RAR) strategy: buy
// short-term oversold stocks, but only inside an established uptrend and
// only while the market regime is bullish. Reversion-into-trend only —
// the bearish veto is absolute.
type RegimeReversion struct{}

// Name implements Scorer.
func (RegimeReversion) Name() string { return "regime_reversion" }

// Score implements Scorer.
func (RegimeReversion) Score(snap *contracts.StockSnapshot, regime *contracts.RegimeSignal) *contracts.Pick {
	if !regime.IsBullish() {
		return nil
	}

	closes := snap.Closes()
	if len(closes) < 200 {
		return nil
	}

	// Must already be in an uptrend: price above the stock's own 200-bar SMA.
	sma200 := indicators.SMA(closes, 200)
	if snap.Price <= sma200 {
		return nil
	}

	rsi := indicators.RSI(closes, 14)
	if rsi >= 40 {
		return nil
	}

	score := indicators.Clamp((40.0-rsi)*2.0+60.0, 0, 100)

	rating := contracts.RatingBuy
	if score > 80 {
		rating = contracts.RatingStrongBuy
	}

	return seal(&contracts.Pick{
		Score:     score,
		Rating:    rating,
		Algorithm: RegimeReversion{}.Name(),
		Timeframe: "7d",
		Risk:      contracts.RiskMedium,
		Metrics: map[string]float64{
			"rsi":    rsi,
			"sma200": sma200,
			"price":  snap.Price,
			"bars":   float64(len(closes)),
		},
	}, snap)
}
