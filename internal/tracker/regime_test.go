package tracker

import (
	"testing"
)

func TestRegimePerformanceApply(t *testing.T) {
	var perf RegimePerformance

	perf.Apply(tradeWithPnL(10))
	perf.Apply(tradeWithPnL(20))
	perf.Apply(tradeWithPnL(-6))

	if perf.Wins != 2 || perf.Losses != 1 {
		t.Errorf("wins/losses = %d/%d, want 2/1", perf.Wins, perf.Losses)
	}
	almostEqual(t, perf.TotalPnL, 24, 1e-9, "total pnl")
	almostEqual(t, perf.AvgWin, 15, 1e-9, "avg win")
	almostEqual(t, perf.AvgLoss, 6, 1e-9, "avg loss magnitude")
	almostEqual(t, perf.BestTrade, 20, 1e-9, "best trade")
	almostEqual(t, perf.WorstTrade, -6, 1e-9, "worst trade")
}

func TestRegimePerformanceZeroPnLCountsAsLoss(t *testing.T) {
	var perf RegimePerformance
	perf.Apply(tradeWithPnL(0))

	if perf.Losses != 1 {
		t.Errorf("losses = %d, want 1 for zero P&L", perf.Losses)
	}
}

func TestBreakdownOf(t *testing.T) {
	stats := map[string]*RegimePerformance{
		"POSITIVE": {Wins: 3, Losses: 1, TotalPnL: 25, AvgWin: 10, AvgLoss: 5},
		"EMPTY":    {},
	}

	out := breakdownOf(stats)

	if _, ok := out["EMPTY"]; ok {
		t.Error("regime with no trades should be omitted")
	}

	b, ok := out["POSITIVE"]
	if !ok {
		t.Fatal("missing POSITIVE breakdown")
	}

	// Laplace smoothing: (3+1)/(3+1+1+1)
	almostEqual(t, b.WinRate, 4.0/6.0, 1e-9, "win rate")
	if b.CILower < 0 || b.CIUpper > 1 {
		t.Errorf("CI [%v, %v] outside [0,1]", b.CILower, b.CIUpper)
	}
	if b.CILower >= b.WinRate || b.CIUpper <= b.WinRate {
		t.Errorf("CI [%v, %v] does not bracket win rate %v", b.CILower, b.CIUpper, b.WinRate)
	}
}
