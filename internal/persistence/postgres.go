package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/selivandex/edge-tracker/internal/tracker"
)

// PostgresStore persists tracker state and the append-only trade log
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates new postgres store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// SaveTrackerState upserts the durable counters keyed by strategy name
func (s *PostgresStore) SaveTrackerState(ctx context.Context, snap tracker.Snapshot) error {
	query := `
		INSERT INTO tracker_state (
			strategy_name, version, starting_capital, breakeven_win_rate,
			alpha, beta, total_wins, total_losses, cumulative_pnl,
			high_water_mark, max_drawdown, max_drawdown_duration_seconds,
			current_streak, max_win_streak, max_loss_streak,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (strategy_name) DO UPDATE SET
			version = $2,
			alpha = $5,
			beta = $6,
			total_wins = $7,
			total_losses = $8,
			cumulative_pnl = $9,
			high_water_mark = $10,
			max_drawdown = $11,
			max_drawdown_duration_seconds = $12,
			current_streak = $13,
			max_win_streak = $14,
			max_loss_streak = $15,
			updated_at = $17
	`

	_, err := s.db.ExecContext(ctx, query,
		snap.StrategyName,
		snap.Version,
		snap.StartingCapital,
		snap.BreakevenWinRate,
		snap.Alpha,
		snap.Beta,
		snap.TotalWins,
		snap.TotalLosses,
		snap.CumulativePnL,
		snap.HighWaterMark,
		snap.MaxDrawdown,
		int64(snap.MaxDrawdownDuration.Seconds()),
		snap.CurrentStreak,
		snap.MaxWinStreak,
		snap.MaxLossStreak,
		snap.CreatedAt,
		snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save tracker state: %w", err)
	}

	return nil
}

// trackerStateRow mirrors the tracker_state table
type trackerStateRow struct {
	StrategyName        string    `db:"strategy_name"`
	Version             int       `db:"version"`
	StartingCapital     float64   `db:"starting_capital"`
	BreakevenWinRate    float64   `db:"breakeven_win_rate"`
	Alpha               float64   `db:"alpha"`
	Beta                float64   `db:"beta"`
	TotalWins           int       `db:"total_wins"`
	TotalLosses         int       `db:"total_losses"`
	CumulativePnL       float64   `db:"cumulative_pnl"`
	HighWaterMark       float64   `db:"high_water_mark"`
	MaxDrawdown         float64   `db:"max_drawdown"`
	MaxDrawdownSeconds  int64     `db:"max_drawdown_duration_seconds"`
	CurrentStreak       int       `db:"current_streak"`
	MaxWinStreak        int       `db:"max_win_streak"`
	MaxLossStreak       int       `db:"max_loss_streak"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// LoadTrackerState returns tracker.ErrNotFound when the strategy has
// never been persisted.
func (s *PostgresStore) LoadTrackerState(ctx context.Context, strategyName string) (*tracker.Snapshot, error) {
	query := `
		SELECT strategy_name, version, starting_capital, breakeven_win_rate,
		       alpha, beta, total_wins, total_losses, cumulative_pnl,
		       high_water_mark, max_drawdown, max_drawdown_duration_seconds,
		       current_streak, max_win_streak, max_loss_streak,
		       created_at, updated_at
		FROM tracker_state
		WHERE strategy_name = $1
	`

	var row trackerStateRow
	err := s.db.GetContext(ctx, &row, query, strategyName)
	if err == sql.ErrNoRows {
		return nil, tracker.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker state: %w", err)
	}

	return &tracker.Snapshot{
		Version:             row.Version,
		StrategyName:        row.StrategyName,
		StartingCapital:     row.StartingCapital,
		BreakevenWinRate:    row.BreakevenWinRate,
		Alpha:               row.Alpha,
		Beta:                row.Beta,
		TotalWins:           row.TotalWins,
		TotalLosses:         row.TotalLosses,
		CumulativePnL:       row.CumulativePnL,
		HighWaterMark:       row.HighWaterMark,
		MaxDrawdown:         row.MaxDrawdown,
		MaxDrawdownDuration: time.Duration(row.MaxDrawdownSeconds) * time.Second,
		CurrentStreak:       row.CurrentStreak,
		MaxWinStreak:        row.MaxWinStreak,
		MaxLossStreak:       row.MaxLossStreak,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}, nil
}

// SaveTrade appends one closed trade, deduplicated by trade ID so
// retries are safe.
func (s *PostgresStore) SaveTrade(ctx context.Context, strategyName string, outcome tracker.TradeOutcome) error {
	query := `
		INSERT INTO trades (
			strategy_name, trade_id, symbol, side, entry_price, exit_price,
			pnl, contracts, entry_time, exit_time,
			funding_regime, leverage_regime, volatility_state, bias
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (strategy_name, trade_id) DO NOTHING
	`

	outcome = outcome.Normalize()

	_, err := s.db.ExecContext(ctx, query,
		strategyName,
		outcome.ID,
		outcome.Symbol,
		string(outcome.Side),
		outcome.EntryPrice.InexactFloat64(),
		outcome.ExitPrice.InexactFloat64(),
		outcome.PnL.InexactFloat64(),
		outcome.Contracts,
		outcome.EntryTime,
		outcome.ExitTime,
		outcome.FundingRegime,
		outcome.LeverageRegime,
		outcome.VolatilityState,
		outcome.Bias,
	)
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}

	return nil
}

// Trades returns time-descending trade history for a strategy. A zero
// since means no lower bound.
func (s *PostgresStore) Trades(ctx context.Context, strategyName string, limit, offset int, since time.Time) ([]tracker.TradeOutcome, error) {
	query := `
		SELECT trade_id, symbol, side, entry_price, exit_price, pnl,
		       contracts, entry_time, exit_time,
		       funding_regime, leverage_regime, volatility_state, bias
		FROM trades
		WHERE strategy_name = $1 AND ($4::timestamptz IS NULL OR exit_time >= $4)
		ORDER BY exit_time DESC
		LIMIT $2 OFFSET $3
	`

	var sinceArg interface{}
	if !since.IsZero() {
		sinceArg = since
	}

	rows, err := s.db.QueryContext(ctx, query, strategyName, limit, offset, sinceArg)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []tracker.TradeOutcome
	for rows.Next() {
		var (
			trade            tracker.TradeOutcome
			entry, exit, pnl float64
			side             string
		)

		err := rows.Scan(
			&trade.ID,
			&trade.Symbol,
			&side,
			&entry,
			&exit,
			&pnl,
			&trade.Contracts,
			&trade.EntryTime,
			&trade.ExitTime,
			&trade.FundingRegime,
			&trade.LeverageRegime,
			&trade.VolatilityState,
			&trade.Bias,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		trade.Side = tracker.TradeSide(side)
		trade.EntryPrice = decimal.NewFromFloat(entry)
		trade.ExitPrice = decimal.NewFromFloat(exit)
		trade.PnL = decimal.NewFromFloat(pnl)
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}
