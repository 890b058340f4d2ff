package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/edge-tracker/pkg/logger"
)

// Notifier receives verdict transitions for alerting. Implementations
// must not block for long; failures are logged and dropped.
type Notifier interface {
	VerdictChanged(ctx context.Context, strategyName string, previous, current Verdict, est Estimate) error
}

// WriterLock is an exclusive per-strategy writer claim, extending the
// single-writer assumption across processes.
type WriterLock interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
	// Held reports whether the claim is still valid. A lease-backed lock
	// can be lost when renewal fails.
	Held(ctx context.Context) (bool, error)
}

// WriterLockFactory creates writer locks per strategy
type WriterLockFactory interface {
	WriterLock(strategyName string) WriterLock
}

// ErrNotWriter reports that another process holds the writer lock for
// the strategy.
var ErrNotWriter = errors.New("writer lock held by another process")

// Service is the recording/reporting facade: it computes everything
// in memory first, then performs best-effort persistence and alerting.
// A storage outage degrades durability, never tracking.
type Service struct {
	registry *Registry
	gateway  Gateway
	notifier Notifier

	locks    WriterLockFactory
	lockMu   sync.Mutex
	acquired map[string]WriterLock
}

// NewService creates the tracker service. gateway, notifier and locks
// may be nil for in-memory-only operation (tests, backtests, single-pod
// runs).
func NewService(registry *Registry, gateway Gateway, notifier Notifier, locks WriterLockFactory) *Service {
	return &Service{
		registry: registry,
		gateway:  gateway,
		notifier: notifier,
		locks:    locks,
		acquired: make(map[string]WriterLock),
	}
}

// Registry exposes the underlying registry for reporting callers
func (s *Service) Registry() *Registry {
	return s.registry
}

// RecordTrade folds one closed trade into the strategy's tracker and
// returns the refreshed estimate. Persistence and alerts happen after
// the estimate is computed and are best-effort.
func (s *Service) RecordTrade(ctx context.Context, strategyName string, outcome TradeOutcome) (Estimate, error) {
	if err := s.claimWriter(ctx, strategyName); err != nil {
		return Estimate{}, err
	}

	t, err := s.registry.GetOrCreate(ctx, strategyName)
	if err != nil {
		return Estimate{}, err
	}

	previous := t.Estimate().Verdict
	est := t.RecordTrade(outcome)

	logger.Info("trade recorded",
		zap.String("strategy", strategyName),
		zap.String("symbol", outcome.Symbol),
		zap.String("side", string(outcome.Side)),
		zap.Float64("pnl", outcome.PnL.InexactFloat64()),
		zap.Float64("mean_win_rate", est.MeanWinRate),
		zap.Float64("edge_probability", est.EdgeProbability),
		zap.String("verdict", string(est.Verdict)),
	)

	s.persist(ctx, t, strategyName, outcome)

	if s.notifier != nil && est.Verdict != previous {
		if err := s.notifier.VerdictChanged(ctx, strategyName, previous, est.Verdict, est); err != nil {
			logger.Warn("verdict alert failed",
				zap.String("strategy", strategyName),
				zap.Error(err),
			)
		}
	}

	return est, nil
}

// claimWriter acquires the distributed writer lock for a strategy on
// first use. Without a lock factory every caller is a writer.
func (s *Service) claimWriter(ctx context.Context, strategyName string) error {
	if s.locks == nil {
		return nil
	}

	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if lock, ok := s.acquired[strategyName]; ok {
		held, err := lock.Held(ctx)
		if err == nil && held {
			return nil
		}
		// Lease expired or was lost; drop the stale claim and reclaim
		delete(s.acquired, strategyName)
	}

	lock := s.locks.WriterLock(strategyName)
	ok, err := lock.TryAcquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire writer lock: %w", err)
	}
	if !ok {
		return ErrNotWriter
	}

	s.acquired[strategyName] = lock
	return nil
}

// ReleaseWriterLocks releases every held writer lock; called on
// shutdown.
func (s *Service) ReleaseWriterLocks(ctx context.Context) {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	for strategyName, lock := range s.acquired {
		if err := lock.Release(ctx); err != nil {
			logger.Warn("failed to release writer lock",
				zap.String("strategy", strategyName),
				zap.Error(err),
			)
		}
		delete(s.acquired, strategyName)
	}
}

// persist writes the trade and the updated counters. Failures are logged
// and swallowed so RecordTrade never fails on a storage outage.
func (s *Service) persist(ctx context.Context, t *Tracker, strategyName string, outcome TradeOutcome) {
	if s.gateway == nil {
		return
	}

	if err := s.gateway.SaveTrade(ctx, strategyName, outcome); err != nil {
		logger.Error("failed to persist trade",
			zap.String("strategy", strategyName),
			zap.String("trade_id", outcome.ID),
			zap.Error(err),
		)
	}

	if err := s.gateway.SaveTrackerState(ctx, t.Snapshot()); err != nil {
		logger.Error("failed to persist tracker state",
			zap.String("strategy", strategyName),
			zap.Error(err),
		)
	}
}

// GetEstimate returns the current estimate for a strategy, restoring or
// creating the tracker if needed. A never-traded strategy is a valid
// default state, not an error.
func (s *Service) GetEstimate(ctx context.Context, strategyName string) (Estimate, error) {
	t, err := s.registry.GetOrCreate(ctx, strategyName)
	if err != nil {
		return Estimate{}, err
	}
	return t.Estimate(), nil
}

// GetFullReport returns the aggregate report for a strategy
func (s *Service) GetFullReport(ctx context.Context, strategyName string) (FullReport, error) {
	t, err := s.registry.GetOrCreate(ctx, strategyName)
	if err != nil {
		return FullReport{}, err
	}
	return t.FullReport(), nil
}

// SnapshotEquity writes one equity snapshot per live strategy. Called
// periodically by the equity snapshot worker.
func (s *Service) SnapshotEquity(ctx context.Context) error {
	if s.gateway == nil {
		return nil
	}

	for _, name := range s.registry.Strategies() {
		t, ok := s.registry.Get(name)
		if !ok {
			continue
		}

		est := t.Estimate()
		point := EquityPoint{
			StrategyName:    name,
			Timestamp:       time.Now(),
			Equity:          t.Equity(),
			CumulativePnL:   t.CumulativePnL(),
			WinRate:         est.MeanWinRate,
			EdgeProbability: est.EdgeProbability,
			TotalTrades:     est.TotalTrades,
		}

		if err := s.gateway.SaveEquitySnapshot(ctx, point); err != nil {
			logger.Error("failed to save equity snapshot",
				zap.String("strategy", name),
				zap.Error(err),
			)
		}
	}

	return nil
}
