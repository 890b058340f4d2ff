package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/selivandex/edge-tracker/internal/tracker"
	"github.com/selivandex/edge-tracker/pkg/logger"
)

// lockManager is the slice of redlock.RedLock the writer lock needs,
// narrowed to an interface so lease behavior can be faked in tests.
type lockManager interface {
	Lock(ctx context.Context, resource string, ttl time.Duration) (time.Duration, error)
	UnLock(ctx context.Context, resource string) error
}

var _ lockManager = (*redlock.RedLock)(nil)

type redisLockFactory struct {
	lockManager lockManager
	ping        func(ctx context.Context) error
}

var _ tracker.WriterLockFactory = (*redisLockFactory)(nil)

func (f *redisLockFactory) WriterLock(strategyName string) tracker.WriterLock {
	return &distributedWriterLock{
		lockManager: f.lockManager,
		ping:        f.ping,
		strategy:    strategyName,
		lockName:    fmt.Sprintf("tracker:writer:%s", strategyName),
		ttl:         30 * time.Second,
	}
}

// distributedWriterLock holds a per-strategy redlock lease and renews it
// in the background until released. Losing the lease marks the lock as
// not held so the service can step down or reclaim.
type distributedWriterLock struct {
	lockManager lockManager
	ping        func(ctx context.Context) error
	strategy    string
	lockName    string
	ttl         time.Duration

	mu     sync.Mutex
	locked bool
	stop   chan struct{}
}

// TryAcquire attempts to take the writer lock and starts lease renewal on
// success. Returns false without error when another pod holds it; a Redis
// connectivity failure is reported as an error instead so an outage is
// never mistaken for contention.
func (l *distributedWriterLock) TryAcquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return true, nil
	}

	expiry, err := l.lockManager.Lock(ctx, l.lockName, l.ttl)
	if err != nil {
		// Contention and connectivity both surface as a Lock error;
		// a ping tells them apart.
		if l.ping != nil {
			if pingErr := l.ping(ctx); pingErr != nil {
				return false, fmt.Errorf("redis unreachable while acquiring writer lock: %w", pingErr)
			}
		}
		logger.Debug("writer lock held by another pod",
			zap.String("strategy", l.strategy),
			zap.String("lock_name", l.lockName),
		)
		return false, nil
	}
	if expiry <= 0 {
		return false, fmt.Errorf("failed to acquire lock: invalid expiry %v", expiry)
	}

	l.locked = true
	l.stop = make(chan struct{})
	go l.renew(l.stop)

	logger.Info("writer lock acquired",
		zap.String("strategy", l.strategy),
		zap.Duration("ttl", l.ttl),
	)
	return true, nil
}

// renew extends the lease at 2/3 of the TTL for a safety margin, until
// the lock is released or lost.
func (l *distributedWriterLock) renew(stop chan struct{}) {
	ticker := time.NewTicker(l.ttl * 2 / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			ok := l.extend(ctx)
			cancel()
			if !ok {
				return
			}
		}
	}
}

// extend refreshes the lease. redlock-go has no native extend, so the
// lock is released and immediately re-acquired.
func (l *distributedWriterLock) extend(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.locked {
		return false
	}

	if err := l.lockManager.UnLock(ctx, l.lockName); err != nil {
		logger.Error("writer lock renewal failed",
			zap.String("strategy", l.strategy),
			zap.Error(err),
		)
		l.locked = false
		return false
	}

	expiry, err := l.lockManager.Lock(ctx, l.lockName, l.ttl)
	if err != nil || expiry <= 0 {
		logger.Error("writer lock lost, another pod may have taken over",
			zap.String("strategy", l.strategy),
			zap.String("lock_name", l.lockName),
			zap.Error(err),
		)
		l.locked = false
		return false
	}

	logger.Debug("writer lock renewed",
		zap.String("strategy", l.strategy),
		zap.Duration("expiry", expiry),
	)
	return true
}

// Release stops renewal and releases the lease. An unlock failure is
// tolerated, the lease may have already expired.
func (l *distributedWriterLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.locked {
		return nil
	}

	l.locked = false
	close(l.stop)

	if err := l.lockManager.UnLock(ctx, l.lockName); err != nil {
		logger.Warn("failed to release writer lock (may have expired)",
			zap.String("strategy", l.strategy),
			zap.Error(err),
		)
	}
	return nil
}

// Held reports whether the lease is still valid
func (l *distributedWriterLock) Held(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked, nil
}

// MockLockFactory always grants locks; for tests and single-pod runs
type MockLockFactory struct{}

var _ tracker.WriterLockFactory = MockLockFactory{}

func (MockLockFactory) WriterLock(strategyName string) tracker.WriterLock {
	return mockLock{}
}

type mockLock struct{}

func (mockLock) TryAcquire(ctx context.Context) (bool, error) { return true, nil }
func (mockLock) Release(ctx context.Context) error            { return nil }
func (mockLock) Held(ctx context.Context) (bool, error)       { return true, nil }
