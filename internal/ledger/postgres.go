package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rmorand/sciquant/internal/contracts"
	"github.com/rmorand/sciquant/pkg/database"
)

// Mirror replicates appended entries into PostgreSQL for dashboard-side
// SQL queries. Files stay canonical; the mirror is write-once per entry
// (ON CONFLICT DO NOTHING keeps it append-only) and fully rebuildable.
type Mirror struct {
	db *database.DB
}

// NewMirror creates a ledger mirror.
func NewMirror(db *database.DB) *Mirror {
	return &Mirror{db: db}
}

// EnsureSchema creates the picks table when missing.
func (m *Mirror) EnsureSchema(ctx context.Context) error {
	_, err := m.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS picks (
			symbol                TEXT        NOT NULL,
			algorithm             TEXT        NOT NULL,
			timeframe             TEXT        NOT NULL,
			picked_at             TIMESTAMPTZ NOT NULL,
			name                  TEXT        NOT NULL DEFAULT '',
			score                 DOUBLE PRECISION NOT NULL,
			rating                TEXT        NOT NULL,
			risk                  TEXT        NOT NULL,
			entry_price           DOUBLE PRECISION NOT NULL,
			simulated_entry_price DOUBLE PRECISION,
			stop_loss             DOUBLE PRECISION,
			content_hash          TEXT        NOT NULL,
			metrics               JSONB       NOT NULL DEFAULT '{}',
			PRIMARY KEY (symbol, algorithm, timeframe, picked_at)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure picks schema failed: %w", err)
	}
	return nil
}

// Append inserts entries, silently skipping keys already mirrored.
func (m *Mirror) Append(ctx context.Context, entries []contracts.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		metrics, err := json.Marshal(e.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics for %s failed: %w", e.Symbol, err)
		}

		batch.Queue(`
			INSERT INTO picks (
				symbol, algorithm, timeframe, picked_at, name, score, rating,
				risk, entry_price, simulated_entry_price, stop_loss,
				content_hash, metrics
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, 0), NULLIF($11, 0), $12, $13)
			ON CONFLICT (symbol, algorithm, timeframe, picked_at) DO NOTHING
		`,
			e.Symbol, e.Algorithm, e.Timeframe, e.PickedAt.UTC(), e.Name,
			e.Score, string(e.Rating), string(e.Risk), e.EntryPrice,
			e.SimulatedEntryPrice, e.StopLoss, e.ContentHash, metrics,
		)
	}

	results := m.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("mirror insert failed: %w", err)
		}
	}
	return nil
}

// Count returns the number of mirrored picks.
func (m *Mirror) Count(ctx context.Context) (int, error) {
	var count int
	err := m.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM picks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mirrored picks failed: %w", err)
	}
	return count, nil
}
