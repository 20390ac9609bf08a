package contracts

import "errors"

// Sentinel errors for the pipeline failure taxonomy. All batch operations
// are fault-isolated per item; these mark the recoverable classes.
var (
	// ErrDataUnavailable: the provider returned nothing for a symbol.
	// Recovered by skipping that symbol.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrInsufficientHistory: fewer bars than a scorer needs. Recovered by
	// the scorer returning no pick, never by aborting the engine.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrMalformedEntry: an archive entry missing its symbol or pick date.
	// Skipped with a count surfaced, never crashing the whole pass.
	ErrMalformedEntry = errors.New("malformed archive entry")

	// ErrEmptyUniverse: zero symbols returned across the entire universe.
	// Process-fatal: a run with no inputs must not produce an artifact.
	ErrEmptyUniverse = errors.New("no symbols available in universe")
)
