package tracker

import (
	"math"
	"time"
)

// RealityCheck classifies an annualized projection so downstream
// consumers can flag absurd extrapolations. The analyzer itself never
// clamps a projection.
type RealityCheck string

const (
	RealityUntested     RealityCheck = "UNTESTED"
	RealityUnprofitable RealityCheck = "UNPROFITABLE"
	RealityPlausible    RealityCheck = "PLAUSIBLE"
	RealityAggressive   RealityCheck = "AGGRESSIVE"
	RealityExtreme      RealityCheck = "EXTREME_OUTLIER"
)

// ChoppyMarketMetrics answers "is this profitable in a sideways market":
// projections and risk statistics derived from a stream of small,
// frequent per-interval P&Ls.
type ChoppyMarketMetrics struct {
	IntervalsTracked    int           `json:"intervals_tracked"`
	ProfitableIntervals int           `json:"profitable_intervals"`
	AvgGainPerInterval  float64       `json:"avg_gain_per_interval"`
	AvgLossPerInterval  float64       `json:"avg_loss_per_interval"`
	AvgPnLPerInterval   float64       `json:"avg_pnl_per_interval"`
	ProjectedHourly     float64       `json:"projected_hourly"`
	ProjectedDaily      float64       `json:"projected_daily"`
	ProjectedWeekly     float64       `json:"projected_weekly"`
	AnnualizedReturnPct float64       `json:"annualized_return_pct"`
	SharpeRatio         float64       `json:"sharpe_ratio"`
	RealityCheck        RealityCheck  `json:"reality_check"`
	MaxDrawdown         float64       `json:"max_drawdown"`
	MaxDrawdownDuration time.Duration `json:"max_drawdown_duration"`
}

// ChoppyAnalyzer extrapolates interval P&Ls to hourly/daily/weekly
// projections. The interval duration is explicit rather than a baked-in
// 5-minute assumption so the projections stay honest for strategies
// trading at a different cadence.
type ChoppyAnalyzer struct {
	Interval time.Duration
}

// DefaultInterval matches the 5-minute cadence of the high-frequency
// strategies this tracker was built for.
const DefaultInterval = 5 * time.Minute

// NewChoppyAnalyzer creates an analyzer; a non-positive interval falls
// back to DefaultInterval.
func NewChoppyAnalyzer(interval time.Duration) *ChoppyAnalyzer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &ChoppyAnalyzer{Interval: interval}
}

// Analyze recomputes metrics from the full interval P&L history.
// Max drawdown is NOT derived here; the tracker overlays its running
// high-water-mark figures to avoid double bookkeeping.
func (a *ChoppyAnalyzer) Analyze(pnls []float64, startingCapital float64) ChoppyMarketMetrics {
	m := ChoppyMarketMetrics{
		IntervalsTracked: len(pnls),
		RealityCheck:     RealityUntested,
	}
	if len(pnls) == 0 {
		return m
	}

	var gainSum, lossSum, total float64
	var gains, losses int
	for _, pnl := range pnls {
		total += pnl
		if pnl > 0 {
			gainSum += pnl
			gains++
		} else {
			lossSum += pnl
			losses++
		}
	}

	m.ProfitableIntervals = gains
	if gains > 0 {
		m.AvgGainPerInterval = gainSum / float64(gains)
	}
	if losses > 0 {
		m.AvgLossPerInterval = lossSum / float64(losses)
	}

	perHour := float64(time.Hour) / float64(a.Interval)
	perDay := perHour * 24
	perWeek := perDay * 7

	m.AvgPnLPerInterval = total / float64(len(pnls))
	m.ProjectedHourly = m.AvgPnLPerInterval * perHour
	m.ProjectedDaily = m.AvgPnLPerInterval * perDay
	m.ProjectedWeekly = m.AvgPnLPerInterval * perWeek

	if startingCapital > 0 && m.ProjectedWeekly != 0 {
		m.AnnualizedReturnPct = m.ProjectedWeekly / startingCapital * 52 * 100
	}

	m.SharpeRatio = a.sharpe(pnls, startingCapital, perDay*365)
	m.RealityCheck = classifyReality(m.AnnualizedReturnPct)

	return m
}

// sharpe annualizes the per-interval return series using the sample
// standard deviation. Needs at least two data points.
func (a *ChoppyAnalyzer) sharpe(pnls []float64, startingCapital, intervalsPerYear float64) float64 {
	if len(pnls) < 2 || startingCapital <= 0 {
		return 0
	}

	returns := make([]float64, len(pnls))
	var sum float64
	for i, pnl := range pnls {
		returns[i] = pnl / startingCapital
		sum += returns[i]
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)

	// A constant series leaves a tiny nonzero variance from floating-point
	// accumulation; anything below epsilon is zero.
	if std < 1e-12 {
		return 0
	}

	return mean / std * math.Sqrt(intervalsPerYear)
}

func classifyReality(annualizedPct float64) RealityCheck {
	switch {
	case annualizedPct <= 0:
		return RealityUnprofitable
	case annualizedPct < 100:
		return RealityPlausible
	case annualizedPct < 1000:
		return RealityAggressive
	default:
		return RealityExtreme
	}
}
