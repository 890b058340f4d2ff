package tracker

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that no durable state exists for a strategy. It is
// distinct from an I/O failure so callers can treat a cold start as a
// valid default state rather than an error.
var ErrNotFound = errors.New("tracker state not found")

// Gateway is the persistence contract the core requires. Implementations
// live outside the statistical core and carry their own timeout/retry
// policy; a failing gateway must never prevent in-memory tracking.
//
// All operations are safe to call concurrently for different strategy
// names. Calls for the same strategy assume a single writer.
type Gateway interface {
	// SaveTrackerState upserts the durable counters, keyed by strategy
	// name. Idempotent.
	SaveTrackerState(ctx context.Context, snap Snapshot) error

	// LoadTrackerState returns ErrNotFound when the strategy has never
	// been persisted.
	LoadTrackerState(ctx context.Context, strategyName string) (*Snapshot, error)

	// SaveTrade appends one closed trade, deduplicated by trade ID so
	// retries are safe.
	SaveTrade(ctx context.Context, strategyName string, outcome TradeOutcome) error

	// Trades returns time-descending trade history. A zero since means
	// no lower bound.
	Trades(ctx context.Context, strategyName string, limit, offset int, since time.Time) ([]TradeOutcome, error)

	// SaveEquitySnapshot appends one row to the equity time series.
	// Prior rows are never mutated.
	SaveEquitySnapshot(ctx context.Context, point EquityPoint) error

	// EquityCurve returns time-ascending snapshots within the last
	// `days` days.
	EquityCurve(ctx context.Context, strategyName string, days int) ([]EquityPoint, error)
}
