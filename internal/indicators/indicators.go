// Package indicators holds the pure numeric functions shared by all
// strategy scorers. Everything here is referentially transparent: no I/O,
// no state, series in, number out. Insufficient input returns a neutral
// marker instead of an error so scorers can treat it as a disqualifier.
package indicators

import "math"

// SMA returns the simple moving average of the last n values. With fewer
// than n points it returns 0; callers must guard before comparing against
// prices.
func SMA(prices []float64, n int) float64 {
	if n <= 0 || len(prices) < n {
		return 0
	}

	var sum float64
	for _, p := range prices[len(prices)-n:] {
		sum += p
	}
	return sum / float64(n)
}

// RSI computes a Wilder-style relative strength index over the most recent
// `period` deltas. With insufficient history it returns 50, the documented
// "no signal" neutral default.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50.0
	}

	var gains, losses float64
	start := len(prices) - period
	for i := start; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	if avgGain == 0 {
		return 0.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// UlcerIndex measures drawdown severity: sqrt(mean(drawdown^2)) where
// drawdown is the percentage decline from the running peak. The peak only
// advances on new highs, so a strictly rising series scores exactly 0.
func UlcerIndex(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	peak := prices[0]
	var sumSq float64
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			dd := (peak - p) / peak * 100.0
			sumSq += dd * dd
		}
	}
	return math.Sqrt(sumSq / float64(len(prices)))
}

// TotalReturnPct is the percentage return from the first to the last value.
// Returns 0 for series shorter than two points or a non-positive start.
func TotalReturnPct(prices []float64) float64 {
	if len(prices) < 2 || prices[0] <= 0 {
		return 0
	}
	return (prices[len(prices)-1] - prices[0]) / prices[0] * 100.0
}

// MartinRatio divides a return by (UlcerIndex + 1), rewarding smooth
// compounding over jagged volatility. The +1 keeps the ratio defined when
// volatility is near zero.
func MartinRatio(returnPct, ulcer float64) float64 {
	return returnPct / (ulcer + 1.0)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
