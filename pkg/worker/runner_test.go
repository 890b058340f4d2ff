package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingWorker struct {
	runs int64
	err  error
}

func (w *countingWorker) Name() string { return "counting" }

func (w *countingWorker) Run(ctx context.Context) error {
	atomic.AddInt64(&w.runs, 1)
	return w.err
}

func TestPeriodicWorkerRunsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &countingWorker{}
	pw := RunBackground(ctx, w, time.Hour)

	deadline := time.After(time.Second)
	for atomic.LoadInt64(&w.runs) == 0 {
		select {
		case <-deadline:
			t.Fatal("worker did not run immediately on start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	pw.Stop(time.Second)
}

func TestPeriodicWorkerTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &countingWorker{}
	pw := RunBackground(ctx, w, 10*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&w.runs) < 3 {
		select {
		case <-deadline:
			t.Fatalf("worker ran %d times, want at least 3", atomic.LoadInt64(&w.runs))
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	pw.Stop(time.Second)
}

func TestPeriodicWorkerSurvivesErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &countingWorker{err: errors.New("boom")}
	pw := RunBackground(ctx, w, 10*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&w.runs) < 2 {
		select {
		case <-deadline:
			t.Fatal("worker stopped after an error, want it to keep running")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	pw.Stop(time.Second)
}
