// Package regime derives the Bullish/Bearish market signal that gates the
// regime-aware strategies.
package regime

import (
	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/internal/indicators"
	"github.com/rmorand/sciquant/pkg/logger"
)

// Detector classifies the market regime from a benchmark snapshot.
type Detector struct {
	logger *logger.Logger
}

// NewDetector creates a new regime detector.
func NewDetector(log *logger.Logger) *Detector {
	return &Detector{logger: log}
}

// Detect returns Bullish iff the benchmark trades above its 200-bar SMA,
// Bearish otherwise. With fewer than 200 bars the signal is Indeterminate,
// which gates vetoed strategies off; the permissive "assume bullish"
// default applies only when no benchmark is supplied at all (see
// RegimeSignal.IsBullish).
func (d *Detector) Detect(benchmark *contracts.StockSnapshot) *contracts.RegimeSignal {
	if benchmark == nil {
		d.logger.Warn("No benchmark supplied, regime defaults to bullish")
		return nil
	}

	closes := benchmark.Closes()
	if len(closes) < 200 {
		d.logger.WithFields(map[string]interface{}{
			"benchmark": benchmark.Symbol,
			"bars":      len(closes),
		}).Warn("Benchmark history too short, regime indeterminate")
		return &contracts.RegimeSignal{
			BenchmarkSymbol: benchmark.Symbol,
			Price:           benchmark.Price,
			Status:          contracts.RegimeIndeterminate,
		}
	}

	sma200 := indicators.SMA(closes, 200)
	status := contracts.RegimeBearish
	if benchmark.Price > sma200 {
		status = contracts.RegimeBullish
	}

	signal := &contracts.RegimeSignal{
		BenchmarkSymbol: benchmark.Symbol,
		Price:           benchmark.Price,
		SMA200:          sma200,
		Status:          status,
	}

	d.logger.WithFields(map[string]interface{}{
		"benchmark": benchmark.Symbol,
		"price":     benchmark.Price,
		"sma200":    sma200,
		"status":    string(status),
	}).Info("Market regime detected")

	return signal
}
