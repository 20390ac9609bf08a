// Package strategy implements the scoring strategies as a small closed set
// of tagged variants behind one shared interface. Every scorer is a pure,
// side-effect-free function of a snapshot plus an optional regime signal:
// any unmet precondition yields nil, never an error.
package strategy

import "github.com/rmorand/sciquant/internal/contracts"

// Scorer maps a stock snapshot (and optional regime) to a pick or nothing.
// Implementations must be stateless so the engine can fan out freely.
type Scorer interface {
	// Name is the stable algorithm tag written into picks and reports.
	Name() string

	// Score returns a sealed pick or nil when the stock does not qualify.
	Score(snap *contracts.StockSnapshot, regime *contracts.RegimeSignal) *contracts.Pick
}

// All returns the full scorer set in evaluation order.
func All() []Scorer {
	return []Scorer{
		RegimeReversion{},
		VolatilityMomentum{},
		LiquidityPenny{},
		ScientificCANSLIM{},
	}
}

// seal fills the shared pick fields and computes the content hash.
func seal(p *contracts.Pick, snap *contracts.StockSnapshot) *contracts.Pick {
	p.Symbol = snap.Symbol
	p.Name = snap.Name
	p.Seal()
	return p
}
