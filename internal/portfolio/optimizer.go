// Package portfolio converts the current top-N picks into a constrained
// equal-weight allocation over a fixed reference capital.
package portfolio

import (
	"sort"
	"time"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/config"
	"github.com/rmorand/sciquant/pkg/logger"
)

// Optimizer builds equal-weight portfolios from current picks only, never
// historical ones.
type Optimizer struct {
	cfg    config.PortfolioConfig
	logger *logger.Logger
}

// NewOptimizer creates a portfolio optimizer.
func NewOptimizer(cfg config.PortfolioConfig, log *logger.Logger) *Optimizer {
	if cfg.MaxPositions <= 0 {
		cfg.MaxPositions = 10
	}
	if cfg.MaxWeight <= 0 {
		cfg.MaxWeight = 0.2
	}
	if cfg.ReferenceCapital <= 0 {
		cfg.ReferenceCapital = 10_000
	}
	return &Optimizer{cfg: cfg, logger: log}
}

// EqualWeight allocates 1/n to each of the top-N picks, clamped to the
// per-position cap WITHOUT renormalizing the remainder: with few picks the
// total weight stays below 100% and the difference is implicit cash. That
// is intentional, not a defect.
func (o *Optimizer) EqualWeight(entries []contracts.LedgerEntry, now time.Time) *contracts.PortfolioArtifact {
	artifact := &contracts.PortfolioArtifact{
		GeneratedAt: now,
		Strategy:    "equal_weight",
		Constraints: contracts.PortfolioConstraints{
			MaxPositions:         o.cfg.MaxPositions,
			MaxWeightPerPosition: o.cfg.MaxWeight,
			ReferenceCapital:     o.cfg.ReferenceCapital,
		},
		Allocations: []contracts.PortfolioAllocation{},
	}

	// Picks without any usable price field cannot be sized.
	priced := make([]contracts.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.EffectiveEntryPrice() > 0 {
			priced = append(priced, e)
		}
	}
	if len(priced) == 0 {
		return artifact
	}

	sort.Slice(priced, func(i, j int) bool {
		if priced[i].Score != priced[j].Score {
			return priced[i].Score > priced[j].Score
		}
		return priced[i].Symbol < priced[j].Symbol
	})
	if len(priced) > o.cfg.MaxPositions {
		priced = priced[:o.cfg.MaxPositions]
	}

	rawWeight := 1.0 / float64(len(priced))
	weight := rawWeight
	if weight > o.cfg.MaxWeight {
		weight = o.cfg.MaxWeight
	}

	for _, e := range priced {
		artifact.Allocations = append(artifact.Allocations, contracts.PortfolioAllocation{
			Symbol:         e.Symbol,
			Name:           e.Name,
			Weight:         weight,
			NotionalPer10K: weight * o.cfg.ReferenceCapital,
			EntryPrice:     e.EffectiveEntryPrice(),
			Score:          e.Score,
			Rating:         e.Rating,
			Algorithm:      e.Algorithm,
		})
		artifact.TotalWeight += weight
	}
	artifact.TotalPositions = len(artifact.Allocations)

	o.logger.WithFields(map[string]interface{}{
		"positions":    artifact.TotalPositions,
		"total_weight": artifact.TotalWeight,
	}).Info("Portfolio constructed")

	return artifact
}
