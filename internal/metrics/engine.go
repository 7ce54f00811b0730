// Package metrics is the trade-metrics computation engine. It turns a
// raw scraped trade table plus a challenge configuration into the
// derived figures every dashboard card consumes: enriched trades,
// daily aggregates, the equity curve, drawdown usage, rule state, and
// the current streak.
//
// The engine is pure with respect to its inputs: nothing here touches
// the DOM, storage, or the network, no input slice is mutated, and
// every call returns fresh value objects, so it is safe to invoke
// concurrently from multiple request handlers.
package metrics

import (
	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// Engine computes derived trade metrics.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a metrics engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Snapshot bundles everything the engine derives from one trade table
// so callers can recompute in a single pass and cache the result.
type Snapshot struct {
	Trades      []types.EnrichedTrade         `json:"trades"`
	Days        map[string]*types.DailyBucket `json:"days"`
	EquityCurve []types.EquityPoint           `json:"equityCurve"`
	MaxDrawdown types.DrawdownMetrics         `json:"maxDrawdown"`
	DailyDD     types.DailyDrawdownMetrics    `json:"dailyDrawdown"`
	Objectives  types.Objectives              `json:"objectives"`
	Streak      types.Streak                  `json:"streak"`
}

// Compute runs the full pipeline: enrichment, daily aggregation,
// equity/drawdown reconstruction, rule evaluation, and streak
// detection. Rows missing an asset or realized value are dropped up
// front; everything downstream sees displayable trades only.
func (e *Engine) Compute(
	raws []types.RawTrade,
	cfg types.ChallengeConfig,
	initialCapital, currentBalance decimal.Decimal,
) *Snapshot {
	trades := e.EnrichTrades(raws, currentBalance)
	days := e.AggregateByDay(trades, initialCapital)
	curve := e.BuildEquityCurve(trades, initialCapital)
	maxDD := e.ComputeMaxDrawdown(trades, initialCapital, currentBalance, cfg.MaxDrawdownPct, cfg.MaxDrawdownType)
	dailyDD := e.ComputeDailyDrawdown(trades, initialCapital, cfg.DailyDrawdownPct)
	objectives := e.EvaluateObjectives(days, maxDD, dailyDD, initialCapital, cfg)
	streak := e.ComputeStreak(trades)

	return &Snapshot{
		Trades:      trades,
		Days:        days,
		EquityCurve: curve,
		MaxDrawdown: maxDD,
		DailyDD:     dailyDD,
		Objectives:  objectives,
		Streak:      streak,
	}
}
