package contracts

import "time"

// PriceBar is a single daily bar. Series are ordered ascending by date,
// deduplicated, and only bars with Close > 0 are considered valid.
type PriceBar struct {
	Date   time.Time `json:"date"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// StockSnapshot is the transient per-symbol view handed to scorers.
// It is never persisted; only derived Picks survive a run.
type StockSnapshot struct {
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	Change        float64    `json:"change"`
	ChangePercent float64    `json:"changePercent"`
	Volume        int64      `json:"volume"`
	AvgVolume     int64      `json:"avgVolume"`
	MarketCap     float64    `json:"marketCap,omitempty"`
	PE            float64    `json:"pe,omitempty"`
	History       []PriceBar `json:"history,omitempty"`
}

// Closes returns the close series of the snapshot history.
func (s *StockSnapshot) Closes() []float64 {
	closes := make([]float64, 0, len(s.History))
	for _, bar := range s.History {
		closes = append(closes, bar.Close)
	}
	return closes
}

// RegimeStatus is the macro market-state classification.
type RegimeStatus string

const (
	RegimeBullish RegimeStatus = "Bullish"
	RegimeBearish RegimeStatus = "Bearish"

	// RegimeIndeterminate: a benchmark was supplied but carried fewer than
	// 200 bars. Regime-vetoed strategies treat this as not-bullish; the
	// permissive default is reserved for the no-benchmark case.
	RegimeIndeterminate RegimeStatus = "Indeterminate"
)

// RegimeSignal captures the benchmark-vs-trend decision for one run.
// It is recomputed every run and embedded into ledger entries for audit,
// never stored standalone.
type RegimeSignal struct {
	BenchmarkSymbol string       `json:"benchmarkSymbol"`
	Price           float64      `json:"price"`
	SMA200          float64      `json:"sma200"`
	Status          RegimeStatus `json:"status"`
}

// IsBullish reports whether the regime allows long entries. A nil signal
// means no benchmark was supplied at all, which defaults permissively to
// bullish; whenever a benchmark IS supplied the 200-bar rule governs.
func (r *RegimeSignal) IsBullish() bool {
	if r == nil {
		return true
	}
	return r.Status == RegimeBullish
}
