package strategy

import (
	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/internal/indicators"
)

const (
	// Classical CAN SLIM trend-template bounds.
	maxPctOffHigh = 25.0
	minRSRating   = 70.0
)

// ScientificCANSLIM is the regime-gated CAN SLIM screen (SCS): a classical
// growth template — stage-2 uptrend, proximity to the 52-week high, a
// relative-strength floor — with the market-direction veto applied first.
// Under a bearish regime nothing qualifies, regardless of the chart.
type ScientificCANSLIM struct{}

// Name implements Scorer.
func (ScientificCANSLIM) Name() string { return "scientific_canslim" }

// Score implements Scorer.
func (ScientificCANSLIM) Score(snap *contracts.StockSnapshot, regime *contracts.RegimeSignal) *contracts.Pick {
	if !regime.IsBullish() {
		return nil
	}

	closes := snap.Closes()
	if len(closes) < 200 {
		return nil
	}

	sma50 := indicators.SMA(closes, 50)
	sma150 := indicators.SMA(closes, 150)
	sma200 := indicators.SMA(closes, 200)

	// Stage-2 trend: price above a properly stacked moving-average ladder.
	if !(snap.Price > sma50 && sma50 > sma150 && sma150 > sma200) {
		return nil
	}

	// The 200-bar average itself must be rising when enough history exists
	// to measure its slope over the last month of bars.
	if len(closes) >= 221 {
		prior := indicators.SMA(closes[:len(closes)-21], 200)
		if sma200 <= prior {
			return nil
		}
	}

	yearWindow := closes
	if len(yearWindow) > 252 {
		yearWindow = yearWindow[len(yearWindow)-252:]
	}

	high52 := yearWindow[0]
	for _, c := range yearWindow {
		if c > high52 {
			high52 = c
		}
	}
	if high52 <= 0 {
		return nil
	}
	pctOffHigh := (high52 - snap.Price) / high52 * 100.0
	if pctOffHigh > maxPctOffHigh {
		return nil
	}

	// RS rating proxy: 12-month return mapped onto a 0..100 scale. Without
	// a cross-sectional universe percentile this anchors 0% return at 50.
	return12m := indicators.TotalReturnPct(yearWindow)
	rsRating := indicators.Clamp(50.0+return12m, 0, 100)
	if rsRating < minRSRating {
		return nil
	}

	volumeRatio := 1.0
	if snap.AvgVolume > 0 {
		volumeRatio = float64(snap.Volume) / float64(snap.AvgVolume)
	}

	score := indicators.Clamp(rsRating*0.5+(maxPctOffHigh-pctOffHigh)*1.2+volumeRatio*5.0, 0, 100)
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
		Algorithm: ScientificCANSLIM{}.Name(),
		Timeframe: "1y",
		Risk:      contracts.RiskMedium,
		Metrics: map[string]float64{
			"rsRating":    rsRating,
			"return12m":   return12m,
			"sma50":       sma50,
			"sma150":      sma150,
			"sma200":      sma200,
			"pctOffHigh":  pctOffHigh,
			"volumeRatio": volumeRatio,
		},
	}, snap)
}
