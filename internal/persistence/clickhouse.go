package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/edge-tracker/internal/tracker"
)

// ClickHouseStore persists the append-only equity time series
type ClickHouseStore struct {
	db *sqlx.DB
}

// NewClickHouseStore creates new ClickHouse store
func NewClickHouseStore(db *sqlx.DB) *ClickHouseStore {
	return &ClickHouseStore{db: db}
}

// SaveEquitySnapshot appends one row to the equity curve. Prior rows are
// never mutated.
func (s *ClickHouseStore) SaveEquitySnapshot(ctx context.Context, point tracker.EquityPoint) error {
	query := `
		INSERT INTO equity_snapshots
		(timestamp, strategy_name, equity, cumulative_pnl, unrealized_pnl, win_rate, edge_probability, total_trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		point.Timestamp,
		point.StrategyName,
		point.Equity,
		point.CumulativePnL,
		point.UnrealizedPnL,
		point.WinRate,
		point.EdgeProbability,
		point.TotalTrades,
	)
	if err != nil {
		return fmt.Errorf("failed to save equity snapshot: %w", err)
	}

	return nil
}

// EquityCurve returns time-ascending snapshots within the last `days`
// days.
func (s *ClickHouseStore) EquityCurve(ctx context.Context, strategyName string, days int) ([]tracker.EquityPoint, error) {
	query := `
		SELECT timestamp, strategy_name, equity, cumulative_pnl, unrealized_pnl, win_rate, edge_probability, total_trades
		FROM equity_snapshots
		WHERE strategy_name = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`

	cutoff := time.Now().AddDate(0, 0, -days)

	rows, err := s.db.QueryContext(ctx, query, strategyName, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query equity curve: %w", err)
	}
	defer rows.Close()

	var points []tracker.EquityPoint
	for rows.Next() {
		var p tracker.EquityPoint
		err := rows.Scan(
			&p.Timestamp,
			&p.StrategyName,
			&p.Equity,
			&p.CumulativePnL,
			&p.UnrealizedPnL,
			&p.WinRate,
			&p.EdgeProbability,
			&p.TotalTrades,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equity snapshot: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}
