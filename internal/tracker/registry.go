package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/selivandex/edge-tracker/pkg/logger"
)

// StateLoader is the slice of Gateway the registry needs to restore
// trackers on first reference.
type StateLoader interface {
	LoadTrackerState(ctx context.Context, strategyName string) (*Snapshot, error)
}

// Registry owns one tracker instance per strategy name, created lazily.
// Creation is guarded by a mutex so two callers referencing a new
// strategy concurrently cannot end up with two instances.
type Registry struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
	defaults Config
	loader   StateLoader
}

// NewRegistry creates a registry. loader may be nil, in which case every
// tracker starts cold.
func NewRegistry(defaults Config, loader StateLoader) *Registry {
	return &Registry{
		trackers: make(map[string]*Tracker),
		defaults: defaults,
		loader:   loader,
	}
}

// GetOrCreate returns the tracker for a strategy, restoring it from the
// state loader on first reference or creating a fresh one if no durable
// state exists. A loader I/O failure falls back to a cold tracker rather
// than blocking tracking.
func (r *Registry) GetOrCreate(ctx context.Context, strategyName string) (*Tracker, error) {
	if strategyName == "" {
		return nil, fmt.Errorf("strategy name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trackers[strategyName]; ok {
		return t, nil
	}

	t, err := r.build(ctx, strategyName)
	if err != nil {
		return nil, err
	}

	r.trackers[strategyName] = t
	return t, nil
}

// Get returns the tracker if it already exists in this process
func (r *Registry) Get(strategyName string) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[strategyName]
	return t, ok
}

// Strategies returns the names of all trackers alive in this process
func (r *Registry) Strategies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.trackers))
	for name := range r.trackers {
		names = append(names, name)
	}
	return names
}

func (r *Registry) build(ctx context.Context, strategyName string) (*Tracker, error) {
	cfg := r.defaults
	cfg.StrategyName = strategyName

	if r.loader == nil {
		return New(cfg)
	}

	snap, err := r.loader.LoadTrackerState(ctx, strategyName)
	if errors.Is(err, ErrNotFound) {
		logger.Info("no persisted state, starting cold",
			zap.String("strategy", strategyName),
		)
		return New(cfg)
	}
	if err != nil {
		logger.Error("failed to load tracker state, starting cold",
			zap.String("strategy", strategyName),
			zap.Error(err),
		)
		return New(cfg)
	}

	logger.Info("tracker restored from persisted state",
		zap.String("strategy", strategyName),
		zap.Float64("alpha", snap.Alpha),
		zap.Float64("beta", snap.Beta),
		zap.Float64("cumulative_pnl", snap.CumulativePnL),
	)

	return FromSnapshot(*snap, cfg)
}
