// Package types provides shared type definitions for the challenge backend.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide represents buy or sell
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// PnLClass classifies a closed trade by its realized P&L
type PnLClass string

const (
	PnLClassWin       PnLClass = "win"
	PnLClassLoss      PnLClass = "loss"
	PnLClassBreakeven PnLClass = "breakeven"
)

// DrawdownType selects how the max-drawdown base and floor behave
type DrawdownType string

const (
	// DrawdownStatic fixes both the denominator and the floor at initial capital.
	DrawdownStatic DrawdownType = "static"
	// DrawdownTrailing keeps the denominator at initial capital but the
	// floor trails the running equity peak.
	DrawdownTrailing DrawdownType = "trailing"
	// DrawdownTrailingScaling scales both the denominator and the floor
	// with the running equity peak.
	DrawdownTrailingScaling DrawdownType = "trailing_scaling"
)

// RiskMethod identifies which estimator produced a RiskEstimate.
// History is preferred; stop-distance is the fallback when the trade
// carries no usable R/R figure.
type RiskMethod string

const (
	RiskMethodHistory      RiskMethod = "history"
	RiskMethodStopDistance RiskMethod = "stop_distance"
)

// StreakType labels the direction of a win/loss streak
type StreakType string

const (
	StreakWin  StreakType = "Win"
	StreakLoss StreakType = "Loss"
)

// RawTrade is one trade row exactly as scraped or imported from the
// host site's table. All cell values are kept as strings; parsing and
// defensive fallbacks happen in one place during enrichment.
type RawTrade struct {
	RowIndex   int    `json:"rowIndex"`
	Asset      string `json:"asset"`
	Side       string `json:"side"`
	DateStart  string `json:"dateStart"`
	DateEnd    string `json:"dateEnd"`
	Entry      string `json:"entry"`
	InitialSL  string `json:"initialSL"`
	MaxTP      string `json:"maxTP"`
	MaxRR      string `json:"maxRR"`
	Size       string `json:"size"`
	CloseAvg   string `json:"closeAvg"`
	Realized   string `json:"realized"`
	Commission string `json:"commission"`
}

// Displayable reports whether the row carries enough data to show.
func (t RawTrade) Displayable() bool {
	return t.Asset != "" && t.Realized != ""
}

// RiskEstimate is the estimated risk taken on a single trade.
type RiskEstimate struct {
	Method            RiskMethod      `json:"method"`
	Percent           decimal.Decimal `json:"percent"`
	Amount            decimal.Decimal `json:"amount"`
	HistoricalBalance decimal.Decimal `json:"historicalBalance"`
}

// EnrichedTrade is a RawTrade plus the derived fields the dashboard
// cards consume.
type EnrichedTrade struct {
	RawTrade

	RealizedPnL   decimal.Decimal `json:"realizedPnl"`
	CommissionAmt decimal.Decimal `json:"commissionAmt"`
	Risk          *RiskEstimate   `json:"risk,omitempty"`
	HoldTime      string          `json:"holdTime,omitempty"`
	OpenedAt      time.Time       `json:"openedAt"`
	ClosedAt      time.Time       `json:"closedAt"`
	SideNorm      TradeSide       `json:"sideNorm"`
	Class         PnLClass        `json:"class"`
}

// RelevantAt is the timestamp used for day bucketing and chronological
// ordering. P&L realizes at close, so the close time wins when the row
// has one; legacy rows fall back to the open time.
func (t EnrichedTrade) RelevantAt() time.Time {
	if t.DateEnd != "" && !t.ClosedAt.IsZero() {
		return t.ClosedAt
	}
	return t.OpenedAt
}

// IsWin reports a strictly positive realized P&L.
func (t EnrichedTrade) IsWin() bool { return t.Class == PnLClassWin }

// IsLoss reports a strictly negative realized P&L.
func (t EnrichedTrade) IsLoss() bool { return t.Class == PnLClassLoss }

// DailyBucket aggregates all trades closed on one local calendar day.
type DailyBucket struct {
	Date             string          `json:"date"` // local YYYY-MM-DD key
	Trades           []EnrichedTrade `json:"trades"`
	TotalPnL         decimal.Decimal `json:"totalPnl"`
	TradeCount       int             `json:"tradeCount"`
	WinningTrades    int             `json:"winningTrades"`
	LosingTrades     int             `json:"losingTrades"`
	BestTrade        *EnrichedTrade  `json:"bestTrade,omitempty"`
	WorstTrade       *EnrichedTrade  `json:"worstTrade,omitempty"`
	AverageRR        decimal.Decimal `json:"averageRr"`
	StartingBalance  decimal.Decimal `json:"startingBalance"`
	PercentageChange decimal.Decimal `json:"percentageChange"`
}

// EquityPoint is one point on the reconstructed equity curve.
// CumulativePnL carries the running equity value (initial capital plus
// realized P&L so far), so the synthetic first point sits at initial
// capital with TradeNumber 0.
type EquityPoint struct {
	Date          time.Time       `json:"date"`
	CumulativePnL decimal.Decimal `json:"cumulativePnl"`
	TradePnL      decimal.Decimal `json:"tradePnl"`
	TradeNumber   int             `json:"tradeNumber"`
}

// DrawdownMetrics describes max-drawdown usage under one policy.
type DrawdownMetrics struct {
	Type            DrawdownType    `json:"type"`
	MaxEquity       decimal.Decimal `json:"maxEquity"`
	CurrentDrawdown decimal.Decimal `json:"currentDrawdown"`
	UsedPercent     decimal.Decimal `json:"usedPercent"`
	LimitPercent    decimal.Decimal `json:"limitPercent"`
	EquityFloor     decimal.Decimal `json:"equityFloor"`
	Progress        decimal.Decimal `json:"progress"` // used/limit, capped at 100
	Broken          bool            `json:"broken"`
}

// DailyDrawdownMetrics describes daily-drawdown usage for the latest
// trading day present in the data.
type DailyDrawdownMetrics struct {
	Date              string          `json:"date"`
	StartOfDayBalance decimal.Decimal `json:"startOfDayBalance"`
	TodaysLoss        decimal.Decimal `json:"todaysLoss"`
	UsedPercent       decimal.Decimal `json:"usedPercent"`
	LimitPercent      decimal.Decimal `json:"limitPercent"`
	EquityFloor       decimal.Decimal `json:"equityFloor"`
	Broken            bool            `json:"broken"`
}

// Streak is the current run of consecutive wins or losses.
// Type is empty and Count zero when there is no non-breakeven trade.
type Streak struct {
	Count int        `json:"count"`
	Type  StreakType `json:"type,omitempty"`
}

// Consistency scenarios
const (
	ConsistencyScenarioOK            = "evaluated"
	ConsistencyScenarioMinDaysNotMet = "min_days_not_met"
)

// Objectives is the evaluated rule state for a challenge. Met flags
// and broken flags are independent: an objective can be unmet without
// anything being broken.
type Objectives struct {
	MinimumTradingDays    bool `json:"minimumTradingDays"`
	MinimumProfitableDays bool `json:"minimumProfitableDays"`
	ProfitTarget          bool `json:"profitTarget"`
	ConsistencyRule       bool `json:"consistencyRule"`
	DailyDrawdown         bool `json:"dailyDrawdown"`
	MaxDrawdown           bool `json:"maxDrawdown"`

	ConsistencyRuleBroken bool `json:"consistencyRuleBroken"`
	MaxDailyLossBroken    bool `json:"maxDailyLossBroken"`
	MaxStaticLossBroken   bool `json:"maxStaticLossBroken"`

	TradingDays    int `json:"tradingDays"`
	ProfitableDays int `json:"profitableDays"`

	CurrentPhase       int             `json:"currentPhase"`
	Funded             bool            `json:"funded"`
	ProfitAchievedPct  decimal.Decimal `json:"profitAchievedPct"`
	ProfitTargetPct    decimal.Decimal `json:"profitTargetPct"`

	ConsistencyScenario    string          `json:"consistencyScenario"`
	HighestDailyPercentage decimal.Decimal `json:"highestDailyPercentage"`
}

// SessionData is the account-level state the scraper tracks alongside
// the trade table.
type SessionData struct {
	AccountName    string          `json:"accountName,omitempty"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ExportMetadata describes one exported session snapshot.
type ExportMetadata struct {
	ExportDate time.Time `json:"exportDate"`
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	ExportID   string    `json:"exportId,omitempty"`
}

// ExportEnvelope is the bulk export/import JSON shape. TradeData and
// ChallengeConfig must survive an export/import round trip unchanged.
type ExportEnvelope struct {
	ExportMetadata  ExportMetadata  `json:"exportMetadata"`
	ChallengeConfig ChallengeConfig `json:"challengeConfig"`
	SessionData     SessionData     `json:"sessionData"`
	TradeData       []RawTrade      `json:"tradeData"`
	Notes           string          `json:"notes,omitempty"`
}
