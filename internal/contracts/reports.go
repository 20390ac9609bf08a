package contracts

import "time"

// ArchiveFile is the per-run ledger artifact. Archive files may carry a
// pickedAt per entry or a single shared timestamp; readers accept both.
type ArchiveFile struct {
	Stocks      []LedgerEntry `json:"stocks"`
	PickedAt    *time.Time    `json:"pickedAt,omitempty"`
	LastUpdated time.Time     `json:"lastUpdated"`

	// Regime is the signal the run was generated under, embedded for
	// audit. Recomputed every run, never stored standalone.
	Regime *RegimeSignal `json:"regime,omitempty"`
}

// AlgorithmPerformance is the per-algorithm slice of a performance report.
type AlgorithmPerformance struct {
	Algorithm string  `json:"algorithm"`
	Total     int     `json:"total"`
	Verified  int     `json:"verified"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	WinRate   float64 `json:"winRate"`
	AvgReturn float64 `json:"avgReturn"`
}

// PerformanceReport is the verification-side output artifact.
type PerformanceReport struct {
	LastVerified time.Time                       `json:"lastVerified"`
	TotalPicks   int                             `json:"totalPicks"`
	Verified     int                             `json:"verified"`
	Pending      int                             `json:"pending"`
	Wins         int                             `json:"wins"`
	Losses       int                             `json:"losses"`
	WinRate      float64                         `json:"winRate"`
	AvgReturn    float64                         `json:"avgReturn"`
	ByAlgorithm  map[string]AlgorithmPerformance `json:"byAlgorithm"`
	RecentHits   []VerifiedPick                  `json:"recentHits"`
	AllPicks     []VerifiedPick                  `json:"allPicks"`
}

// BacktestReport is the backtest-side output artifact.
type BacktestReport struct {
	GeneratedAt             time.Time          `json:"generatedAt"`
	TotalPicks              int                `json:"totalPicks"`
	WithValidReturn         int                `json:"withValidReturn"`
	HitCount                int                `json:"hitCount"`
	HitRatePct              float64            `json:"hitRatePct"`
	AvgReturnInTimeframePct float64            `json:"avgReturnInTimeframePct"`
	AlgorithmRanking        []AlgorithmRanking `json:"algorithmRanking"`
	MinSampleForRanking     int                `json:"minSampleForRanking"`
	Rows                    []BacktestRow      `json:"rows"`
}

// PortfolioConstraints are the allocation limits applied by the optimizer.
type PortfolioConstraints struct {
	MaxPositions         int     `json:"maxPositions"`
	MaxWeightPerPosition float64 `json:"maxWeightPerPosition"`
	ReferenceCapital     float64 `json:"referenceCapital"`
}

// PortfolioArtifact is the optimizer output artifact.
type PortfolioArtifact struct {
	GeneratedAt    time.Time             `json:"generatedAt"`
	Strategy       string                `json:"strategy"`
	TotalPositions int                   `json:"totalPositions"`
	TotalWeight    float64               `json:"totalWeight"`
	Constraints    PortfolioConstraints  `json:"constraints"`
	Allocations    []PortfolioAllocation `json:"allocations"`
}
