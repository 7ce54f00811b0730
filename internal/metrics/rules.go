package metrics

import (
	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/propdeck/challenge-backend/pkg/utils"
	"github.com/shopspring/decimal"
)

// EvaluateObjectives evaluates the configured challenge rules against
// the aggregated metrics. Met flags and broken flags are independent:
// a profit target that is not yet reached breaks nothing, while a
// drawdown limit flips to broken the moment its usage reaches the
// configured threshold.
func (e *Engine) EvaluateObjectives(
	days map[string]*types.DailyBucket,
	maxDD types.DrawdownMetrics,
	dailyDD types.DailyDrawdownMetrics,
	initialCapital decimal.Decimal,
	cfg types.ChallengeConfig,
) types.Objectives {
	obj := types.Objectives{
		TradingDays:         len(days),
		ConsistencyScenario: types.ConsistencyScenarioOK,
	}

	totalRealized := decimal.Zero
	for _, bucket := range days {
		totalRealized = totalRealized.Add(bucket.TotalPnL)
	}

	e.evaluateProfitTarget(&obj, totalRealized, initialCapital, cfg)

	obj.MinimumTradingDays = obj.TradingDays >= cfg.MinTradingDays
	obj.ProfitableDays = countProfitableDays(days, initialCapital, cfg.ProfitableDayThresholdPct)
	obj.MinimumProfitableDays = obj.ProfitableDays >= cfg.MinProfitableDays

	e.evaluateConsistency(&obj, days, cfg)

	obj.MaxDailyLossBroken = dailyDD.Broken
	obj.MaxStaticLossBroken = maxDD.Broken
	obj.DailyDrawdown = !dailyDD.Broken
	obj.MaxDrawdown = !maxDD.Broken

	return obj
}

// evaluateProfitTarget walks the ordered phases. Phase N's profit is
// measured beyond phase N-1's cumulative threshold; the account is
// funded once every phase's cumulative target is reached.
func (e *Engine) evaluateProfitTarget(obj *types.Objectives, totalRealized, initialCapital decimal.Decimal, cfg types.ChallengeConfig) {
	phases := cfg.SortedPhases()
	if len(phases) == 0 {
		obj.ProfitTarget = true
		return
	}

	pnlPct := utils.SafePercent(totalRealized, initialCapital)

	prevCumulative := decimal.Zero
	cumulative := decimal.Zero
	for _, phase := range phases {
		prevCumulative = cumulative
		cumulative = cumulative.Add(phase.TargetPercent)
		obj.CurrentPhase = phase.Phase
		obj.ProfitTargetPct = phase.TargetPercent
		if pnlPct.LessThan(cumulative) {
			break
		}
	}

	// Achieved progress within the current phase, clamped so a losing
	// account shows zero and an overshoot never exceeds the target.
	obj.ProfitAchievedPct = utils.ClampDecimal(
		pnlPct.Sub(prevCumulative), decimal.Zero, obj.ProfitTargetPct)

	obj.ProfitTarget = pnlPct.GreaterThanOrEqual(cumulative)
	obj.Funded = obj.ProfitTarget
}

// countProfitableDays tallies days whose P&L clears the profitable-day
// threshold, expressed as a percent of initial capital.
func countProfitableDays(days map[string]*types.DailyBucket, initialCapital, thresholdPct decimal.Decimal) int {
	threshold := thresholdPct.Div(hundred).Mul(initialCapital)
	count := 0
	for _, bucket := range days {
		if bucket.TotalPnL.GreaterThan(decimal.Zero) && bucket.TotalPnL.GreaterThanOrEqual(threshold) {
			count++
		}
	}
	return count
}

// evaluateConsistency checks that no single day's profit exceeds the
// configured share of total profit across all profitable days. While
// the minimum trading days are not yet met the rule is pending: it
// reports zero progress and is not treated as broken.
func (e *Engine) evaluateConsistency(obj *types.Objectives, days map[string]*types.DailyBucket, cfg types.ChallengeConfig) {
	if cfg.ConsistencyRulePct.IsZero() {
		obj.ConsistencyRule = true
		return
	}

	if obj.TradingDays < cfg.MinTradingDays {
		obj.ConsistencyScenario = types.ConsistencyScenarioMinDaysNotMet
		return
	}

	totalProfit := decimal.Zero
	for _, bucket := range days {
		if bucket.TotalPnL.GreaterThan(decimal.Zero) {
			totalProfit = totalProfit.Add(bucket.TotalPnL)
		}
	}

	highest := decimal.Zero
	for _, bucket := range days {
		if bucket.TotalPnL.GreaterThan(decimal.Zero) {
			share := utils.SafePercent(bucket.TotalPnL, totalProfit)
			highest = utils.MaxDecimal(highest, share)
		}
	}

	obj.HighestDailyPercentage = highest
	obj.ConsistencyRuleBroken = highest.GreaterThan(cfg.ConsistencyRulePct)
	obj.ConsistencyRule = !obj.ConsistencyRuleBroken
}
