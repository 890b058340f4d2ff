package tracker

import (
	"context"
	"errors"
	"testing"
)

type stubLoader struct {
	snap *Snapshot
	err  error
}

func (l *stubLoader) LoadTrackerState(ctx context.Context, strategyName string) (*Snapshot, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.snap, nil
}

func testDefaults() Config {
	return Config{StartingCapital: 1000}
}

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry(testDefaults(), nil)
	ctx := context.Background()

	first, err := r.GetOrCreate(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	second, err := r.GetOrCreate(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first != second {
		t.Error("same strategy returned two tracker instances")
	}

	if _, err := r.GetOrCreate(ctx, ""); err == nil {
		t.Error("empty strategy name should be rejected")
	}
}

func TestRegistryRestoresFromLoader(t *testing.T) {
	loader := &stubLoader{snap: &Snapshot{
		Version:          SnapshotVersion,
		StrategyName:     "alpha",
		StartingCapital:  500,
		BreakevenWinRate: 0.5,
		Alpha:            8,
		Beta:             4,
		TotalWins:        7,
		TotalLosses:      3,
		CumulativePnL:    55,
		HighWaterMark:    560,
	}}

	r := NewRegistry(testDefaults(), loader)

	tr, err := r.GetOrCreate(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	est := tr.Estimate()
	almostEqual(t, est.Alpha, 8, 1e-9, "alpha")
	almostEqual(t, est.Beta, 4, 1e-9, "beta")
	if est.TotalTrades != 10 {
		t.Errorf("total trades = %d, want 10", est.TotalTrades)
	}
	almostEqual(t, tr.Equity(), 555, 1e-9, "equity")
}

func TestRegistryColdStartOnMissingState(t *testing.T) {
	r := NewRegistry(testDefaults(), &stubLoader{err: ErrNotFound})

	tr, err := r.GetOrCreate(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if got := tr.Estimate().TotalTrades; got != 0 {
		t.Errorf("total trades = %d, want 0 for cold start", got)
	}
}

func TestRegistryColdStartOnLoaderFailure(t *testing.T) {
	r := NewRegistry(testDefaults(), &stubLoader{err: errors.New("connection refused")})

	tr, err := r.GetOrCreate(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("loader failure should fall back to cold start, got: %v", err)
	}
	if got := tr.Estimate().TotalTrades; got != 0 {
		t.Errorf("total trades = %d, want 0 for cold start", got)
	}
}

func TestRegistryStrategies(t *testing.T) {
	r := NewRegistry(testDefaults(), nil)
	ctx := context.Background()

	if _, err := r.GetOrCreate(ctx, "alpha"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := r.GetOrCreate(ctx, "beta"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	names := r.Strategies()
	if len(names) != 2 {
		t.Errorf("strategies = %v, want 2 entries", names)
	}

	if _, ok := r.Get("alpha"); !ok {
		t.Error("Get(alpha) = false, want true")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}
}
