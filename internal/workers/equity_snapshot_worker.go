package workers

import (
	"context"

	"github.com/selivandex/edge-tracker/internal/tracker"
)

// EquitySnapshotWorker periodically writes one equity snapshot per live
// strategy to the equity time series.
type EquitySnapshotWorker struct {
	service *tracker.Service
}

// NewEquitySnapshotWorker creates new equity snapshot worker
func NewEquitySnapshotWorker(service *tracker.Service) *EquitySnapshotWorker {
	return &EquitySnapshotWorker{service: service}
}

// Name returns worker name for logging
func (w *EquitySnapshotWorker) Name() string {
	return "equity_snapshot"
}

// Run writes snapshots for every strategy alive in this process
func (w *EquitySnapshotWorker) Run(ctx context.Context) error {
	return w.service.SnapshotEquity(ctx)
}
