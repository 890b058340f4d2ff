package tracker

import (
	"fmt"
	"sync"
	"time"
)

// Config holds per-strategy tracker configuration
type Config struct {
	StrategyName     string
	StartingCapital  float64
	BreakevenWinRate float64
	PriorAlpha       float64
	PriorBeta        float64
	RecentTradeCap   int
	Interval         time.Duration
}

const defaultRecentTradeCap = 500

// Tracker owns one Beta-Binomial posterior for a named strategy and
// routes every recorded trade to the regime, streak and choppy-market
// analyzers. Safe for concurrent use; the posterior read-modify-write
// happens under the tracker's own lock so concurrent writers cannot
// lose updates.
type Tracker struct {
	mu sync.RWMutex

	strategyName     string
	startingCapital  float64
	breakevenWinRate float64
	recentTradeCap   int

	alpha       float64
	beta        float64
	totalWins   int
	totalLosses int

	cumulativePnL       float64
	highWaterMark       float64
	maxDrawdown         float64
	maxDrawdownDuration time.Duration
	drawdownStart       time.Time

	regimeStats     map[string]*RegimePerformance
	volatilityStats map[string]*RegimePerformance
	streaks         StreakTracker
	choppy          *ChoppyAnalyzer

	// intervalPnLs grows for the life of the process; see DESIGN.md for
	// the unbounded-growth decision. recentTrades is capped, oldest
	// evicted first.
	intervalPnLs []float64
	recentTrades []TradeOutcome

	createdAt time.Time
	updatedAt time.Time
}

// New creates a tracker for one strategy. Configuration is validated
// fail-fast so degenerate inputs cannot turn into NaN downstream.
func New(cfg Config) (*Tracker, error) {
	if cfg.StrategyName == "" {
		return nil, fmt.Errorf("strategy name is required")
	}
	if cfg.StartingCapital <= 0 {
		return nil, fmt.Errorf("starting capital must be positive: %.2f", cfg.StartingCapital)
	}
	if cfg.BreakevenWinRate == 0 {
		cfg.BreakevenWinRate = 0.50
	}
	if cfg.BreakevenWinRate <= 0 || cfg.BreakevenWinRate >= 1 {
		return nil, fmt.Errorf("breakeven win rate must be in (0,1): %.4f", cfg.BreakevenWinRate)
	}
	if cfg.PriorAlpha == 0 {
		cfg.PriorAlpha = 1.0
	}
	if cfg.PriorBeta == 0 {
		cfg.PriorBeta = 1.0
	}
	if cfg.PriorAlpha < 1 || cfg.PriorBeta < 1 {
		return nil, fmt.Errorf("prior alpha/beta must be at least 1: %.2f/%.2f", cfg.PriorAlpha, cfg.PriorBeta)
	}
	if cfg.RecentTradeCap <= 0 {
		cfg.RecentTradeCap = defaultRecentTradeCap
	}

	now := time.Now()

	return &Tracker{
		strategyName:     cfg.StrategyName,
		startingCapital:  cfg.StartingCapital,
		breakevenWinRate: cfg.BreakevenWinRate,
		recentTradeCap:   cfg.RecentTradeCap,
		alpha:            cfg.PriorAlpha,
		beta:             cfg.PriorBeta,
		highWaterMark:    cfg.StartingCapital,
		regimeStats:      make(map[string]*RegimePerformance),
		volatilityStats:  make(map[string]*RegimePerformance),
		choppy:           NewChoppyAnalyzer(cfg.Interval),
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// StrategyName returns the strategy this tracker belongs to
func (t *Tracker) StrategyName() string {
	return t.strategyName
}

// RecordTrade folds one closed trade into the posterior and every
// analyzer, then returns the refreshed estimate. Pure in-memory
// computation; persistence is the service layer's concern.
func (t *Tracker) RecordTrade(outcome TradeOutcome) Estimate {
	outcome = outcome.Normalize()

	t.mu.Lock()
	defer t.mu.Unlock()

	isWin := outcome.IsWin()
	t.alpha, t.beta = PosteriorUpdate(t.alpha, t.beta, isWin)
	if isWin {
		t.totalWins++
	} else {
		t.totalLosses++
	}

	pnl := outcome.PnL.InexactFloat64()
	t.cumulativePnL += pnl
	t.updateDrawdown(outcome.ExitTime)

	t.applyRegime(t.regimeStats, outcome.FundingRegime, outcome)
	t.applyRegime(t.volatilityStats, outcome.VolatilityState, outcome)
	t.streaks.Update(isWin)

	t.intervalPnLs = append(t.intervalPnLs, pnl)
	t.recentTrades = append(t.recentTrades, outcome)
	if len(t.recentTrades) > t.recentTradeCap {
		t.recentTrades = t.recentTrades[len(t.recentTrades)-t.recentTradeCap:]
	}

	t.updatedAt = time.Now()

	return t.estimateLocked()
}

// updateDrawdown maintains the equity high-water mark and the running
// maximum drawdown depth/duration. Caller holds the lock.
func (t *Tracker) updateDrawdown(exitTime time.Time) {
	equity := t.startingCapital + t.cumulativePnL

	if equity > t.highWaterMark {
		t.highWaterMark = equity
		t.drawdownStart = time.Time{}
		return
	}

	drawdown := t.highWaterMark - equity
	if drawdown > t.maxDrawdown {
		t.maxDrawdown = drawdown
	}

	if t.drawdownStart.IsZero() {
		t.drawdownStart = exitTime
		return
	}
	if duration := exitTime.Sub(t.drawdownStart); duration > t.maxDrawdownDuration {
		t.maxDrawdownDuration = duration
	}
}

func (t *Tracker) applyRegime(stats map[string]*RegimePerformance, label string, outcome TradeOutcome) {
	perf, ok := stats[label]
	if !ok {
		perf = &RegimePerformance{}
		stats[label] = perf
	}
	perf.Apply(outcome)
}

// Estimate returns the current posterior snapshot
func (t *Tracker) Estimate() Estimate {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.estimateLocked()
}

func (t *Tracker) estimateLocked() Estimate {
	return NewEstimate(t.alpha, t.beta, t.breakevenWinRate, t.totalWins+t.totalLosses, t.recentTrades)
}

// RegimeBreakdown returns per-funding-regime performance views
func (t *Tracker) RegimeBreakdown() map[string]RegimeBreakdown {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return breakdownOf(t.regimeStats)
}

// VolatilityBreakdown returns per-volatility-state performance views
func (t *Tracker) VolatilityBreakdown() map[string]RegimeBreakdown {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return breakdownOf(t.volatilityStats)
}

// Streaks returns the current streak analysis
func (t *Tracker) Streaks() StreakAnalysis {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.streaks.Analysis()
}

// ChoppyMetrics recomputes sideways-market projections from the interval
// P&L history, overlaid with the tracker's running drawdown figures.
func (t *Tracker) ChoppyMetrics() ChoppyMarketMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.choppyMetricsLocked()
}

func (t *Tracker) choppyMetricsLocked() ChoppyMarketMetrics {
	m := t.choppy.Analyze(t.intervalPnLs, t.startingCapital)
	m.MaxDrawdown = t.maxDrawdown
	m.MaxDrawdownDuration = t.maxDrawdownDuration
	return m
}

// Equity returns the current equity (starting capital plus realized P&L)
func (t *Tracker) Equity() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.startingCapital + t.cumulativePnL
}

// CumulativePnL returns the realized P&L since inception
func (t *Tracker) CumulativePnL() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cumulativePnL
}

// reportWindows are the standard reporting windows; zero means all-time
var reportWindows = []struct {
	label string
	d     time.Duration
}{
	{"1h", time.Hour},
	{"4h", 4 * time.Hour},
	{"24h", 24 * time.Hour},
	{"7d", 7 * 24 * time.Hour},
	{"all", 0},
}

// WindowStats summarizes recent trades whose exit time falls within the
// window. Trades evicted from the bounded buffer are not visible here;
// that limitation is accepted and documented on Snapshot.
func (t *Tracker) WindowStats(label string, window time.Duration) TimeWindowStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.windowStatsLocked(label, window)
}

func (t *Tracker) windowStatsLocked(label string, window time.Duration) TimeWindowStats {
	cutoff := time.Time{}
	if window > 0 {
		cutoff = time.Now().Add(-window)
	}

	stats := TimeWindowStats{Window: label}
	for _, trade := range t.recentTrades {
		if !cutoff.IsZero() && trade.ExitTime.Before(cutoff) {
			continue
		}
		stats.Trades++
		if trade.IsWin() {
			stats.Wins++
		} else {
			stats.Losses++
		}
		stats.TotalPnL += trade.PnL.InexactFloat64()
	}

	if stats.Trades > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.Trades)
		stats.AveragePnL = stats.TotalPnL / float64(stats.Trades)
	}

	return stats
}

// FullReport aggregates every view into one structure for reporting
// consumers.
func (t *Tracker) FullReport() FullReport {
	t.mu.RLock()
	defer t.mu.RUnlock()

	windows := make([]TimeWindowStats, 0, len(reportWindows))
	for _, w := range reportWindows {
		windows = append(windows, t.windowStatsLocked(w.label, w.d))
	}

	return FullReport{
		Strategy:            t.strategyName,
		Estimate:            t.estimateLocked(),
		RegimeBreakdown:     breakdownOf(t.regimeStats),
		VolatilityBreakdown: breakdownOf(t.volatilityStats),
		Streaks:             t.streaks.Analysis(),
		ChoppyMetrics:       t.choppyMetricsLocked(),
		Windows:             windows,
		GeneratedAt:         time.Now(),
	}
}

// Snapshot returns the durable counters for persistence. See the type's
// doc comment for what is intentionally excluded.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	streaks := t.streaks.Analysis()

	return Snapshot{
		Version:             SnapshotVersion,
		StrategyName:        t.strategyName,
		StartingCapital:     t.startingCapital,
		BreakevenWinRate:    t.breakevenWinRate,
		Alpha:               t.alpha,
		Beta:                t.beta,
		TotalWins:           t.totalWins,
		TotalLosses:         t.totalLosses,
		CumulativePnL:       t.cumulativePnL,
		HighWaterMark:       t.highWaterMark,
		MaxDrawdown:         t.maxDrawdown,
		MaxDrawdownDuration: t.maxDrawdownDuration,
		CurrentStreak:       streaks.CurrentStreak,
		MaxWinStreak:        streaks.MaxWinStreak,
		MaxLossStreak:       streaks.MaxLossStreak,
		CreatedAt:           t.createdAt,
		UpdatedAt:           t.updatedAt,
	}
}

// FromSnapshot reconstructs a tracker from its durable counters. The
// interval P&L series and recent-trade buffer restart empty.
func FromSnapshot(snap Snapshot, cfg Config) (*Tracker, error) {
	cfg.StrategyName = snap.StrategyName
	cfg.StartingCapital = snap.StartingCapital
	cfg.BreakevenWinRate = snap.BreakevenWinRate

	t, err := New(cfg)
	if err != nil {
		return nil, err
	}

	t.alpha = snap.Alpha
	t.beta = snap.Beta
	t.totalWins = snap.TotalWins
	t.totalLosses = snap.TotalLosses
	t.cumulativePnL = snap.CumulativePnL
	t.highWaterMark = snap.HighWaterMark
	t.maxDrawdown = snap.MaxDrawdown
	t.maxDrawdownDuration = snap.MaxDrawdownDuration
	t.streaks.restore(snap.CurrentStreak, snap.MaxWinStreak, snap.MaxLossStreak)
	if !snap.CreatedAt.IsZero() {
		t.createdAt = snap.CreatedAt
	}
	if !snap.UpdatedAt.IsZero() {
		t.updatedAt = snap.UpdatedAt
	}

	return t, nil
}
