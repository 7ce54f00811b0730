package metrics

import (
	"sort"
	"time"

	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/propdeck/challenge-backend/pkg/utils"
	"github.com/shopspring/decimal"
)

// sortChronological returns a copy of trades ordered by their relevant
// timestamp, ascending. The sort is stable so same-instant trades keep
// their table order.
func sortChronological(trades []types.EnrichedTrade) []types.EnrichedTrade {
	sorted := make([]types.EnrichedTrade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevantAt().Before(sorted[j].RelevantAt())
	})
	return sorted
}

// BuildEquityCurve replays trades chronologically from initial capital
// and emits one point per trade plus a synthetic first point at the
// starting equity, so the output always has len(trades)+1 points.
func (e *Engine) BuildEquityCurve(trades []types.EnrichedTrade, initialCapital decimal.Decimal) []types.EquityPoint {
	sorted := sortChronological(trades)

	start := time.Now()
	if len(sorted) > 0 {
		start = sorted[0].RelevantAt()
	}

	curve := make([]types.EquityPoint, 0, len(sorted)+1)
	curve = append(curve, types.EquityPoint{
		Date:          start,
		CumulativePnL: initialCapital,
	})

	equity := initialCapital
	for i, t := range sorted {
		equity = equity.Add(t.RealizedPnL)
		curve = append(curve, types.EquityPoint{
			Date:          t.RelevantAt(),
			CumulativePnL: equity,
			TradePnL:      t.RealizedPnL,
			TradeNumber:   i + 1,
		})
	}

	return curve
}

// ComputeMaxDrawdown reconstructs the running equity peak and reports
// drawdown usage against the configured limit. The base value depends
// on the policy: static and trailing measure against initial capital,
// trailing-scaling against the running peak. With no trades there is
// no breach: usage is zero and the floor sits at initial capital.
func (e *Engine) ComputeMaxDrawdown(
	trades []types.EnrichedTrade,
	initialCapital, currentBalance decimal.Decimal,
	maxDrawdownPct decimal.Decimal,
	ddType types.DrawdownType,
) types.DrawdownMetrics {
	m := types.DrawdownMetrics{
		Type:         ddType,
		MaxEquity:    initialCapital,
		LimitPercent: maxDrawdownPct,
		EquityFloor:  initialCapital,
	}

	if len(trades) == 0 {
		return m
	}

	equity := initialCapital
	maxEquity := initialCapital
	for _, t := range sortChronological(trades) {
		equity = equity.Add(t.RealizedPnL)
		maxEquity = utils.MaxDecimal(maxEquity, equity)
	}
	m.MaxEquity = maxEquity

	base := initialCapital
	if ddType == types.DrawdownTrailingScaling {
		base = maxEquity
	}

	drawdown := maxEquity.Sub(currentBalance)
	if drawdown.IsNegative() {
		drawdown = decimal.Zero
	}

	m.CurrentDrawdown = drawdown
	m.UsedPercent = utils.SafePercent(drawdown, base)
	m.EquityFloor = maxEquity.Sub(maxDrawdownPct.Div(hundred).Mul(base))
	m.Progress = utils.MinDecimal(hundred, utils.SafePercent(m.UsedPercent, maxDrawdownPct))
	m.Broken = maxDrawdownPct.GreaterThan(decimal.Zero) && m.UsedPercent.GreaterThanOrEqual(maxDrawdownPct)

	return m
}

// ComputeDailyDrawdown reports drawdown usage for the latest trading
// day present in the data. The start-of-day balance is initial capital
// plus the P&L of all strictly earlier days; only the latest day's net
// loss counts against the limit.
func (e *Engine) ComputeDailyDrawdown(
	trades []types.EnrichedTrade,
	initialCapital decimal.Decimal,
	dailyDrawdownPct decimal.Decimal,
) types.DailyDrawdownMetrics {
	m := types.DailyDrawdownMetrics{
		LimitPercent:      dailyDrawdownPct,
		StartOfDayBalance: initialCapital,
		EquityFloor:       initialCapital,
	}

	if len(trades) == 0 {
		return m
	}

	pnlByDay := make(map[string]decimal.Decimal)
	latest := ""
	for _, t := range trades {
		key := LocalDateKey(t.RelevantAt())
		pnlByDay[key] = pnlByDay[key].Add(t.RealizedPnL)
		if key > latest {
			latest = key
		}
	}

	startOfDay := initialCapital
	for key, pnl := range pnlByDay {
		if key < latest {
			startOfDay = startOfDay.Add(pnl)
		}
	}

	todaysLoss := pnlByDay[latest].Neg()
	if todaysLoss.IsNegative() {
		todaysLoss = decimal.Zero
	}

	m.Date = latest
	m.StartOfDayBalance = startOfDay
	m.TodaysLoss = todaysLoss
	m.UsedPercent = utils.SafePercent(todaysLoss, startOfDay)
	m.EquityFloor = startOfDay.Sub(dailyDrawdownPct.Div(hundred).Mul(startOfDay))
	m.Broken = dailyDrawdownPct.GreaterThan(decimal.Zero) && m.UsedPercent.GreaterThanOrEqual(dailyDrawdownPct)

	return m
}
