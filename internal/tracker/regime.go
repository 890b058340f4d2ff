package tracker

import "math"

// RegimePerformance accumulates win/loss/P&L statistics for one market
// regime label. Created lazily on the first trade carrying the label,
// never deleted within a tracker's lifetime.
type RegimePerformance struct {
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	TotalPnL   float64 `json:"total_pnl"`
	AvgWin     float64 `json:"avg_win"`
	AvgLoss    float64 `json:"avg_loss"`
	BestTrade  float64 `json:"best_trade"`
	WorstTrade float64 `json:"worst_trade"`
}

// Apply folds one trade into the aggregate. Averages are incremental
// running means so no per-trade history is kept; the loss average is
// stored as a positive magnitude.
func (r *RegimePerformance) Apply(outcome TradeOutcome) {
	pnl := outcome.PnL.InexactFloat64()
	r.TotalPnL += pnl

	if outcome.IsWin() {
		r.Wins++
		r.AvgWin += (pnl - r.AvgWin) / float64(r.Wins)
		if pnl > r.BestTrade {
			r.BestTrade = pnl
		}
		return
	}

	loss := math.Abs(pnl)
	r.Losses++
	r.AvgLoss += (loss - r.AvgLoss) / float64(r.Losses)
	if pnl < r.WorstTrade {
		r.WorstTrade = pnl
	}
}

// RegimeBreakdown is the reporting view of one regime: raw counters plus
// a Laplace-smoothed win-rate estimate with a 95% CI. The smoothing
// (wins+1, losses+1) is a separate per-regime estimate, independent of
// the tracker's global posterior.
type RegimeBreakdown struct {
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	TotalPnL   float64 `json:"total_pnl"`
	AvgWin     float64 `json:"avg_win"`
	AvgLoss    float64 `json:"avg_loss"`
	BestTrade  float64 `json:"best_trade"`
	WorstTrade float64 `json:"worst_trade"`
	WinRate    float64 `json:"win_rate"`
	CILower    float64 `json:"ci_95_lower"`
	CIUpper    float64 `json:"ci_95_upper"`
}

// breakdownOf computes reporting views for every regime with at least
// one trade.
func breakdownOf(stats map[string]*RegimePerformance) map[string]RegimeBreakdown {
	out := make(map[string]RegimeBreakdown, len(stats))

	for regime, perf := range stats {
		if perf.Wins+perf.Losses == 0 {
			continue
		}

		a := float64(perf.Wins) + 1
		b := float64(perf.Losses) + 1
		winRate := a / (a + b)
		std := math.Sqrt(a * b / ((a + b) * (a + b) * (a + b + 1)))

		out[regime] = RegimeBreakdown{
			Wins:       perf.Wins,
			Losses:     perf.Losses,
			TotalPnL:   perf.TotalPnL,
			AvgWin:     perf.AvgWin,
			AvgLoss:    perf.AvgLoss,
			BestTrade:  perf.BestTrade,
			WorstTrade: perf.WorstTrade,
			WinRate:    winRate,
			CILower:    clamp01(winRate - 1.96*std),
			CIUpper:    clamp01(winRate + 1.96*std),
		}
	}

	return out
}
