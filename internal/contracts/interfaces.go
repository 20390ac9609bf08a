package contracts

import (
	"context"
	"time"
)

// MarketData is the external market data provider boundary. Any failure
// yields a nil result or an error for that symbol only, never a panic that
// aborts a batch; batch operations are fault-isolated per item.
type MarketData interface {
	// FetchStockData returns the current snapshot for a symbol, including
	// up to a year of daily history, or an error when nothing is available.
	FetchStockData(ctx context.Context, symbol string) (*StockSnapshot, error)

	// FetchMultipleStocks fetches snapshots for many symbols, skipping
	// failures. The result carries only the symbols that resolved.
	FetchMultipleStocks(ctx context.Context, symbols []string) []*StockSnapshot

	// FetchHistory returns daily bars from a given date, ascending and
	// filtered to close > 0.
	FetchHistory(ctx context.Context, symbol string, from time.Time) ([]PriceBar, error)
}

// Archive is the read side of the pick ledger: the full deduplicated
// entry log plus the count of malformed entries that were skipped.
type Archive interface {
	ReadAll() (entries []LedgerEntry, skipped int, err error)
	ReadCurrent() (*ArchiveFile, error)
}
