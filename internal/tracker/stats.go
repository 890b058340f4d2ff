package tracker

import "math"

// Beta-Binomial statistics engine. Pure functions, no state.
//
// The normal CDF is implemented by hand (Abramowitz & Stegun 26.2.17)
// so the estimator stays self-contained, with no statistics library
// dependency.

// PosteriorUpdate folds one trade outcome into the Beta posterior.
// Alpha counts wins, beta counts losses; nothing else changes.
func PosteriorUpdate(alpha, beta float64, isWin bool) (float64, float64) {
	if isWin {
		return alpha + 1, beta
	}
	return alpha, beta + 1
}

// NormalCDF approximates the standard normal CDF to ~7 decimal places
// using the Abramowitz–Stegun polynomial, saturating outside |z| > 6.
func NormalCDF(z float64) float64 {
	if z > 6 {
		return 1
	}
	if z < -6 {
		return 0
	}

	const (
		b0 = 0.2316419
		b1 = 0.319381530
		b2 = -0.356563782
		b3 = 1.781477937
		b4 = -1.821255978
		b5 = 1.330274429
	)

	t := 1.0 / (1.0 + b0*math.Abs(z))
	pdf := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)
	poly := t * (b1 + t*(b2+t*(b3+t*(b4+t*b5))))

	p := 1 - pdf*poly
	if z < 0 {
		return 1 - p
	}
	return p
}

// NewEstimate derives the full posterior snapshot from alpha/beta.
// recentTrades is the bounded buffer used for the Kelly payoff ratio.
func NewEstimate(alpha, beta, breakeven float64, totalTrades int, recentTrades []TradeOutcome) Estimate {
	mean := alpha / (alpha + beta)

	median := 0.5
	if alpha+beta > 1 {
		median = (alpha - 1.0/3.0) / (alpha + beta - 2.0/3.0)
	}

	// Mode is undefined on the boundary, fall back to the mean
	mode := mean
	if alpha > 1 && beta > 1 {
		mode = (alpha - 1) / (alpha + beta - 2)
	}

	variance := alpha * beta / ((alpha + beta) * (alpha + beta) * (alpha + beta + 1))
	std := math.Sqrt(variance)

	ciLower := clamp01(mean - 1.96*std)
	ciUpper := clamp01(mean + 1.96*std)

	var edgeProb float64
	if std == 0 {
		if mean > breakeven {
			edgeProb = 1.0
		}
	} else {
		edgeProb = NormalCDF((mean - breakeven) / std)
	}

	return Estimate{
		Alpha:           alpha,
		Beta:            beta,
		MeanWinRate:     mean,
		MedianWinRate:   median,
		ModeWinRate:     mode,
		StdDev:          std,
		CILower:         ciLower,
		CIUpper:         ciUpper,
		TotalTrades:     totalTrades,
		EdgeProbability: edgeProb,
		Verdict:         classifyVerdict(edgeProb, totalTrades),
		KellyFraction:   kellyFraction(mean, recentTrades),
	}
}

// classifyVerdict maps edge probability to a categorical verdict.
// Below 5 trades the evidence is never enough to leave INCONCLUSIVE.
func classifyVerdict(edgeProb float64, totalTrades int) Verdict {
	if totalTrades < 5 {
		return VerdictInconclusive
	}

	switch {
	case edgeProb >= 0.95:
		return VerdictConfirmedEdge
	case edgeProb >= 0.80:
		return VerdictProbableEdge
	case edgeProb >= 0.50:
		return VerdictInconclusive
	case edgeProb >= 0.20:
		return VerdictProbablyNoEdge
	default:
		return VerdictNoEdge
	}
}

// kellyFraction computes the half-Kelly bet size from the posterior win
// rate and the realized payoff ratio of the recent-trade buffer. Returns 0
// unless the buffer holds at least one win and one loss. Capped at 25%.
func kellyFraction(winRate float64, recentTrades []TradeOutcome) float64 {
	var (
		winSum, lossSum float64
		wins, losses    int
	)

	for _, trade := range recentTrades {
		pnl := trade.PnL.InexactFloat64()
		if pnl > 0 {
			winSum += pnl
			wins++
		} else if pnl < 0 {
			lossSum += math.Abs(pnl)
			losses++
		}
	}

	if wins == 0 || losses == 0 {
		return 0
	}

	avgWin := winSum / float64(wins)
	avgLoss := lossSum / float64(losses)
	if avgLoss == 0 {
		return 0
	}

	b := avgWin / avgLoss
	kelly := (winRate*b - (1 - winRate)) / b

	// Half-Kelly, clamped to [0, 0.25]
	kelly *= 0.5
	if kelly < 0 {
		return 0
	}
	if kelly > 0.25 {
		return 0.25
	}
	return kelly
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
