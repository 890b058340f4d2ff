package tracker

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func almostEqual(t *testing.T, got, want, tolerance float64, name string) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %v, want %v (tolerance %v)", name, got, want, tolerance)
	}
}

func TestPosteriorUpdate(t *testing.T) {
	alpha, beta := 1.0, 1.0

	alpha, beta = PosteriorUpdate(alpha, beta, true)
	if alpha != 2 || beta != 1 {
		t.Errorf("after win: alpha=%v beta=%v, want 2/1", alpha, beta)
	}

	alpha, beta = PosteriorUpdate(alpha, beta, false)
	if alpha != 2 || beta != 2 {
		t.Errorf("after loss: alpha=%v beta=%v, want 2/2", alpha, beta)
	}
}

func TestNormalCDF(t *testing.T) {
	cases := []struct {
		z    float64
		want float64
	}{
		{0, 0.5},
		{1, 0.8413},
		{-1, 0.1587},
		{1.96, 0.9750},
		{-1.96, 0.0250},
		{3, 0.99865},
	}

	for _, tc := range cases {
		got := NormalCDF(tc.z)
		almostEqual(t, got, tc.want, 0.0005, "NormalCDF")
	}

	t.Run("saturation", func(t *testing.T) {
		if got := NormalCDF(7); got != 1 {
			t.Errorf("NormalCDF(7) = %v, want 1", got)
		}
		if got := NormalCDF(-7); got != 0 {
			t.Errorf("NormalCDF(-7) = %v, want 0", got)
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		for _, z := range []float64{0.3, 1.1, 2.4, 4.8} {
			sum := NormalCDF(z) + NormalCDF(-z)
			almostEqual(t, sum, 1.0, 1e-9, "NormalCDF(z)+NormalCDF(-z)")
		}
	})

	t.Run("monotonic", func(t *testing.T) {
		prev := NormalCDF(-6)
		for z := -5.5; z <= 6; z += 0.5 {
			cur := NormalCDF(z)
			if cur < prev {
				t.Fatalf("NormalCDF not monotonic at z=%v: %v < %v", z, cur, prev)
			}
			prev = cur
		}
	})
}

func TestNewEstimateUniformPrior(t *testing.T) {
	est := NewEstimate(1, 1, 0.5, 0, nil)

	almostEqual(t, est.MeanWinRate, 0.5, 1e-9, "mean")
	almostEqual(t, est.MedianWinRate, 0.5, 1e-9, "median")
	almostEqual(t, est.ModeWinRate, 0.5, 1e-9, "mode")
	if est.Verdict != VerdictInconclusive {
		t.Errorf("verdict = %v, want INCONCLUSIVE", est.Verdict)
	}
	if est.KellyFraction != 0 {
		t.Errorf("kelly = %v, want 0", est.KellyFraction)
	}
	if est.CILower < 0 || est.CIUpper > 1 {
		t.Errorf("CI [%v, %v] outside [0,1]", est.CILower, est.CIUpper)
	}
}

func TestNewEstimateSevenWinsThreeLosses(t *testing.T) {
	// Uniform prior plus 7 wins and 3 losses: Beta(8, 4)
	est := NewEstimate(8, 4, 0.5, 10, nil)

	almostEqual(t, est.MeanWinRate, 8.0/12.0, 1e-9, "mean")
	almostEqual(t, est.MedianWinRate, (8-1.0/3.0)/(12-2.0/3.0), 1e-9, "median")
	almostEqual(t, est.ModeWinRate, 7.0/10.0, 1e-9, "mode")

	wantStd := math.Sqrt(8 * 4 / (144.0 * 13.0))
	almostEqual(t, est.StdDev, wantStd, 1e-9, "std")

	// z = (0.6667 - 0.5) / 0.1307 = 1.2747
	almostEqual(t, est.EdgeProbability, 0.8988, 0.001, "edge probability")
	if est.Verdict != VerdictProbableEdge {
		t.Errorf("verdict = %v, want PROBABLE_EDGE", est.Verdict)
	}
}

func TestVerdictBands(t *testing.T) {
	cases := []struct {
		edgeProb float64
		trades   int
		want     Verdict
	}{
		{0.99, 3, VerdictInconclusive},
		{0.01, 4, VerdictInconclusive},
		{0.96, 20, VerdictConfirmedEdge},
		{0.95, 20, VerdictConfirmedEdge},
		{0.90, 20, VerdictProbableEdge},
		{0.80, 20, VerdictProbableEdge},
		{0.60, 20, VerdictInconclusive},
		{0.50, 20, VerdictInconclusive},
		{0.30, 20, VerdictProbablyNoEdge},
		{0.20, 20, VerdictProbablyNoEdge},
		{0.10, 20, VerdictNoEdge},
	}

	for _, tc := range cases {
		got := classifyVerdict(tc.edgeProb, tc.trades)
		if got != tc.want {
			t.Errorf("classifyVerdict(%v, %d) = %v, want %v", tc.edgeProb, tc.trades, got, tc.want)
		}
	}
}

func tradeWithPnL(pnl float64) TradeOutcome {
	now := time.Now()
	return TradeOutcome{
		ID:         "t",
		Symbol:     "BTC-PERP",
		Side:       SideLong,
		EntryPrice: decimal.NewFromInt(100),
		ExitPrice:  decimal.NewFromInt(101),
		PnL:        decimal.NewFromFloat(pnl),
		Contracts:  1,
		EntryTime:  now.Add(-5 * time.Minute),
		ExitTime:   now,
	}
}

func TestKellyFraction(t *testing.T) {
	t.Run("no losses", func(t *testing.T) {
		trades := []TradeOutcome{tradeWithPnL(10), tradeWithPnL(5)}
		if got := kellyFraction(0.9, trades); got != 0 {
			t.Errorf("kelly = %v, want 0 with no losses", got)
		}
	})

	t.Run("no wins", func(t *testing.T) {
		trades := []TradeOutcome{tradeWithPnL(-10)}
		if got := kellyFraction(0.9, trades); got != 0 {
			t.Errorf("kelly = %v, want 0 with no wins", got)
		}
	})

	t.Run("symmetric payoff", func(t *testing.T) {
		// b = 1, win rate 0.6: full Kelly 0.2, half-Kelly 0.1
		trades := []TradeOutcome{tradeWithPnL(10), tradeWithPnL(-10)}
		almostEqual(t, kellyFraction(0.6, trades), 0.1, 1e-9, "kelly")
	})

	t.Run("negative edge clamps to zero", func(t *testing.T) {
		trades := []TradeOutcome{tradeWithPnL(10), tradeWithPnL(-10)}
		if got := kellyFraction(0.4, trades); got != 0 {
			t.Errorf("kelly = %v, want 0 for negative edge", got)
		}
	})

	t.Run("cap at quarter", func(t *testing.T) {
		// b = 4, win rate 0.9: full Kelly 0.875, half-Kelly 0.4375, capped
		trades := []TradeOutcome{tradeWithPnL(40), tradeWithPnL(-10)}
		almostEqual(t, kellyFraction(0.9, trades), 0.25, 1e-9, "kelly")
	})
}

func TestEdgeProbabilityMonotonicInWins(t *testing.T) {
	alpha, beta := 1.0, 1.0
	prev := NewEstimate(alpha, beta, 0.5, 0, nil).EdgeProbability

	for i := 1; i <= 30; i++ {
		alpha, beta = PosteriorUpdate(alpha, beta, true)
		cur := NewEstimate(alpha, beta, 0.5, i, nil).EdgeProbability
		if cur < prev {
			t.Fatalf("edge probability dropped after win %d: %v < %v", i, cur, prev)
		}
		prev = cur
	}

	if prev < 0.99 {
		t.Errorf("edge probability after 30 straight wins = %v, want > 0.99", prev)
	}
}
