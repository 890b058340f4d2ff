package tracker

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide represents long or short direction of a closed trade
type TradeSide string

const (
	SideLong  TradeSide = "long"
	SideShort TradeSide = "short"
)

// Verdict classifies the statistical evidence for a strategy edge
type Verdict string

const (
	VerdictConfirmedEdge  Verdict = "CONFIRMED_EDGE"
	VerdictProbableEdge   Verdict = "PROBABLE_EDGE"
	VerdictInconclusive   Verdict = "INCONCLUSIVE"
	VerdictProbablyNoEdge Verdict = "PROBABLY_NO_EDGE"
	VerdictNoEdge         Verdict = "NO_EDGE"
)

// Default context tags when the caller supplies none
const (
	RegimeUnknown    = "UNKNOWN"
	LeverageNormal   = "NORMAL"
	VolatilityNormal = "NORMAL"
	BiasNeutral      = "NEUTRAL"
)

// TradeOutcome is one closed trade fed into the tracker. Created once by
// the caller, immutable afterwards.
type TradeOutcome struct {
	ID              string          `json:"trade_id" db:"trade_id"`
	Symbol          string          `json:"symbol" db:"symbol"`
	Side            TradeSide       `json:"side" db:"side"`
	EntryPrice      decimal.Decimal `json:"entry_price" db:"entry_price"`
	ExitPrice       decimal.Decimal `json:"exit_price" db:"exit_price"`
	PnL             decimal.Decimal `json:"pnl" db:"pnl"`
	Contracts       int             `json:"contracts" db:"contracts"`
	EntryTime       time.Time       `json:"entry_time" db:"entry_time"`
	ExitTime        time.Time       `json:"exit_time" db:"exit_time"`
	FundingRegime   string          `json:"funding_regime" db:"funding_regime"`
	LeverageRegime  string          `json:"leverage_regime" db:"leverage_regime"`
	VolatilityState string          `json:"volatility_state" db:"volatility_state"`
	Bias            string          `json:"bias" db:"bias"`
}

// Normalize fills default context tags and returns the outcome. Callers
// that build outcomes by hand should pass them through here once.
func (o TradeOutcome) Normalize() TradeOutcome {
	if o.FundingRegime == "" {
		o.FundingRegime = RegimeUnknown
	}
	if o.LeverageRegime == "" {
		o.LeverageRegime = LeverageNormal
	}
	if o.VolatilityState == "" {
		o.VolatilityState = VolatilityNormal
	}
	if o.Bias == "" {
		o.Bias = BiasNeutral
	}
	return o
}

// IsWin reports whether the trade closed with a positive P&L
func (o TradeOutcome) IsWin() bool {
	return o.PnL.IsPositive()
}

// HoldMinutes returns the hold duration in minutes
func (o TradeOutcome) HoldMinutes() float64 {
	return o.ExitTime.Sub(o.EntryTime).Minutes()
}

// ReturnPct returns the direction-adjusted return percentage.
// Degrades to 0 when the entry price is zero.
func (o TradeOutcome) ReturnPct() float64 {
	entry := o.EntryPrice.InexactFloat64()
	if entry == 0 {
		return 0
	}
	exit := o.ExitPrice.InexactFloat64()

	pct := (exit - entry) / entry * 100
	if o.Side == SideShort {
		pct = -pct
	}
	return pct
}

// Estimate is a point-in-time snapshot of the Beta posterior, always
// derived from alpha/beta, never stored.
type Estimate struct {
	Alpha           float64 `json:"alpha"`
	Beta            float64 `json:"beta"`
	MeanWinRate     float64 `json:"mean_win_rate"`
	MedianWinRate   float64 `json:"median_win_rate"`
	ModeWinRate     float64 `json:"mode_win_rate"`
	StdDev          float64 `json:"std_dev"`
	CILower         float64 `json:"ci_95_lower"`
	CIUpper         float64 `json:"ci_95_upper"`
	TotalTrades     int     `json:"total_trades"`
	EdgeProbability float64 `json:"edge_probability"`
	Verdict         Verdict `json:"verdict"`
	KellyFraction   float64 `json:"kelly_fraction"`
}

// StreakAnalysis reports the current and all-time win/loss streaks.
// CurrentStreak is signed: positive for a run of wins, negative for losses.
type StreakAnalysis struct {
	CurrentStreak int `json:"current_streak"`
	MaxWinStreak  int `json:"max_win_streak"`
	MaxLossStreak int `json:"max_loss_streak"`
}

// TimeWindowStats summarizes recent-buffer trades within a time window
type TimeWindowStats struct {
	Window      string  `json:"window"`
	Trades      int     `json:"trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
	TotalPnL    float64 `json:"total_pnl"`
	AveragePnL  float64 `json:"avg_pnl"`
}

// FullReport aggregates every view the tracker exposes
type FullReport struct {
	Strategy            string                     `json:"strategy"`
	Estimate            Estimate                   `json:"estimate"`
	RegimeBreakdown     map[string]RegimeBreakdown `json:"regime_breakdown"`
	VolatilityBreakdown map[string]RegimeBreakdown `json:"volatility_breakdown"`
	Streaks             StreakAnalysis             `json:"streaks"`
	ChoppyMetrics       ChoppyMarketMetrics        `json:"choppy_metrics"`
	Windows             []TimeWindowStats          `json:"windows"`
	GeneratedAt         time.Time                  `json:"generated_at"`
}

// Snapshot is the durable form of a tracker, versioned so the schema can
// evolve without silent field drops.
//
// The interval P&L series and the recent-trade buffer are deliberately
// excluded: they are session-local caches. A restored tracker reports
// cold-start choppy/window metrics until new trades arrive; the gateway's
// append-only trade log is the durable record of individual trades.
type Snapshot struct {
	Version             int           `json:"version" db:"version"`
	StrategyName        string        `json:"strategy_name" db:"strategy_name"`
	StartingCapital     float64       `json:"starting_capital" db:"starting_capital"`
	BreakevenWinRate    float64       `json:"breakeven_win_rate" db:"breakeven_win_rate"`
	Alpha               float64       `json:"alpha" db:"alpha"`
	Beta                float64       `json:"beta" db:"beta"`
	TotalWins           int           `json:"total_wins" db:"total_wins"`
	TotalLosses         int           `json:"total_losses" db:"total_losses"`
	CumulativePnL       float64       `json:"cumulative_pnl" db:"cumulative_pnl"`
	HighWaterMark       float64       `json:"high_water_mark" db:"high_water_mark"`
	MaxDrawdown         float64       `json:"max_drawdown" db:"max_drawdown"`
	MaxDrawdownDuration time.Duration `json:"max_drawdown_duration" db:"max_drawdown_duration"`
	CurrentStreak       int           `json:"current_streak" db:"current_streak"`
	MaxWinStreak        int           `json:"max_win_streak" db:"max_win_streak"`
	MaxLossStreak       int           `json:"max_loss_streak" db:"max_loss_streak"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// SnapshotVersion is the current Snapshot schema version
const SnapshotVersion = 1

// EquityPoint is one row of the append-only equity time series
type EquityPoint struct {
	StrategyName    string    `json:"strategy_name" db:"strategy_name"`
	Timestamp       time.Time `json:"timestamp" db:"timestamp"`
	Equity          float64   `json:"equity" db:"equity"`
	CumulativePnL   float64   `json:"cumulative_pnl" db:"cumulative_pnl"`
	UnrealizedPnL   float64   `json:"unrealized_pnl" db:"unrealized_pnl"`
	WinRate         float64   `json:"win_rate" db:"win_rate"`
	EdgeProbability float64   `json:"edge_probability" db:"edge_probability"`
	TotalTrades     int       `json:"total_trades" db:"total_trades"`
}
