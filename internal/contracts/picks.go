package contracts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Rating is the conviction label attached to a pick.
type Rating string

const (
	RatingStrongBuy Rating = "StrongBuy"
	RatingBuy       Rating = "Buy"
	RatingHold      Rating = "Hold"
)

// IsBuySide reports whether the rating carries the strict hit threshold.
// Buy-side picks must realize a positive windowed return to count as a hit;
// everything else gets the -5% tolerance band.
func (r Rating) IsBuySide() bool {
	return r == RatingStrongBuy || r == RatingBuy
}

// Risk is the qualitative risk label of a strategy.
type Risk string

const (
	RiskLow      Risk = "Low"
	RiskMedium   Risk = "Medium"
	RiskHigh     Risk = "High"
	RiskVeryHigh Risk = "VeryHigh"
)

// Pick is a single scored recommendation. Immutable once created by a
// scorer; every intermediate statistic behind the score is exposed in
// Metrics so the decision can be audited.
type Pick struct {
	Symbol      string             `json:"symbol"`
	Name        string             `json:"name"`
	Score       float64            `json:"score"` // 0..100
	Rating      Rating             `json:"rating"`
	Algorithm   string             `json:"algorithm"`
	Timeframe   string             `json:"timeframe"`
	Risk        Risk               `json:"risk"`
	Metrics     map[string]float64 `json:"metrics"`
	ContentHash string             `json:"contentHash"`
}

// Seal computes and stores the content hash over the pick's identifying
// fields and metrics. Metric keys are hashed in sorted order so the hash
// is deterministic.
func (p *Pick) Seal() {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s|%s|%.4f", p.Symbol, p.Algorithm, p.Timeframe, p.Rating, p.Risk, p.Score)

	keys := make([]string, 0, len(p.Metrics))
	for k := range p.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%.6f", k, p.Metrics[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	p.ContentHash = hex.EncodeToString(sum[:8])
}

// LedgerEntry is a pick as appended to the archive. Created once, never
// mutated or deleted; corrections are new entries.
type LedgerEntry struct {
	Pick
	PickedAt            time.Time `json:"pickedAt"`
	EntryPrice          float64   `json:"entryPrice"`
	SimulatedEntryPrice float64   `json:"simulatedEntryPrice,omitempty"`
	StopLoss            float64   `json:"stopLoss,omitempty"`
}

// EffectiveEntryPrice returns the simulated entry when one was recorded,
// otherwise the raw entry price.
func (e *LedgerEntry) EffectiveEntryPrice() float64 {
	if e.SimulatedEntryPrice > 0 {
		return e.SimulatedEntryPrice
	}
	return e.EntryPrice
}

// Key identifies an entry for read-side deduplication. The full pick
// timestamp is part of the key: same-day reruns and corrections carry
// distinct times and stay distinct entries.
func (e *LedgerEntry) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", e.Symbol, e.Algorithm, e.Timeframe, e.PickedAt.UTC().Format(time.RFC3339))
}

// VerifyStatus classifies a matured (or not yet matured) pick.
type VerifyStatus string

const (
	StatusWin     VerifyStatus = "Win"
	StatusLoss    VerifyStatus = "Loss"
	StatusPending VerifyStatus = "Pending"
)

// VerifiedPick is a ledger entry reconciled against the current price.
// Recomputed wholesale on each verification run; the LedgerEntry remains
// canonical.
type VerifiedPick struct {
	LedgerEntry
	VerifiedAt    time.Time    `json:"verifiedAt"`
	ExitPrice     float64      `json:"exitPrice,omitempty"`
	ReturnPercent float64      `json:"returnPercent"`
	DaysHeld      int          `json:"daysHeld"`
	Status        VerifyStatus `json:"status"`
}

// BacktestRow is a ledger entry reconciled against its full subsequent
// price path. Purely derived and regenerable at any time.
type BacktestRow struct {
	LedgerEntry
	ReturnInTimeframePct float64 `json:"returnInTimeframePct"`
	ReturnSincePickPct   float64 `json:"returnSincePickPct"`
	MinInWindow          float64 `json:"minInWindow"`
	MaxInWindow          float64 `json:"maxInWindow"`
	Hit                  bool    `json:"hit"`
	LatestPrice          float64 `json:"latestPrice"`
}

// AlgorithmRanking is a per-algorithm hit-rate summary, recomputed from
// the full backtest row set each run. Low-sample rankings are emitted with
// the flag set, never hidden.
type AlgorithmRanking struct {
	Algorithm    string  `json:"algorithm"`
	HitRatePct   float64 `json:"hitRatePct"`
	AvgReturnPct float64 `json:"avgReturnPct"`
	Count        int     `json:"count"`
	LowSample    bool    `json:"lowSample"`
}

// PortfolioAllocation is one position of the equal-weight portfolio,
// derived only from current picks.
type PortfolioAllocation struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Weight         float64 `json:"weight"`
	NotionalPer10K float64 `json:"notionalPer10k"`
	EntryPrice     float64 `json:"entryPrice"`
	Score          float64 `json:"score"`
	Rating         Rating  `json:"rating"`
	Algorithm      string  `json:"algorithm"`
}
