package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/selivandex/edge-tracker/internal/tracker"
)

// Gateway bundles the Postgres state/trade store with the ClickHouse
// equity series into one tracker.Gateway. The equity store is optional;
// without it equity operations report an explicit error the service
// layer logs and tolerates.
type Gateway struct {
	state  *PostgresStore
	equity *ClickHouseStore
}

var _ tracker.Gateway = (*Gateway)(nil)

// NewGateway creates the composite gateway. equity may be nil when
// ClickHouse is disabled.
func NewGateway(state *PostgresStore, equity *ClickHouseStore) *Gateway {
	return &Gateway{state: state, equity: equity}
}

func (g *Gateway) SaveTrackerState(ctx context.Context, snap tracker.Snapshot) error {
	return g.state.SaveTrackerState(ctx, snap)
}

func (g *Gateway) LoadTrackerState(ctx context.Context, strategyName string) (*tracker.Snapshot, error) {
	return g.state.LoadTrackerState(ctx, strategyName)
}

func (g *Gateway) SaveTrade(ctx context.Context, strategyName string, outcome tracker.TradeOutcome) error {
	return g.state.SaveTrade(ctx, strategyName, outcome)
}

func (g *Gateway) Trades(ctx context.Context, strategyName string, limit, offset int, since time.Time) ([]tracker.TradeOutcome, error) {
	return g.state.Trades(ctx, strategyName, limit, offset, since)
}

func (g *Gateway) SaveEquitySnapshot(ctx context.Context, point tracker.EquityPoint) error {
	if g.equity == nil {
		return fmt.Errorf("equity store not configured")
	}
	return g.equity.SaveEquitySnapshot(ctx, point)
}

func (g *Gateway) EquityCurve(ctx context.Context, strategyName string, days int) ([]tracker.EquityPoint, error) {
	if g.equity == nil {
		return nil, fmt.Errorf("equity store not configured")
	}
	return g.equity.EquityCurve(ctx, strategyName, days)
}
