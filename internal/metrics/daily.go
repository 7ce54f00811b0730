package metrics

import (
	"sort"

	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/propdeck/challenge-backend/pkg/utils"
	"github.com/shopspring/decimal"
)

// AggregateByDay buckets trades by the local calendar day of their
// relevant timestamp (close time when present, open time otherwise)
// and computes per-day totals. The sum of TotalPnL across all buckets
// equals the sum of realized P&L across all trades.
//
// startingBalance is the account balance before the first trading
// day; each day's PercentageChange is measured against the running
// balance at that day's start.
func (e *Engine) AggregateByDay(trades []types.EnrichedTrade, startingBalance decimal.Decimal) map[string]*types.DailyBucket {
	days := make(map[string]*types.DailyBucket)

	for _, t := range trades {
		key := LocalDateKey(t.RelevantAt())
		bucket, ok := days[key]
		if !ok {
			bucket = &types.DailyBucket{Date: key}
			days[key] = bucket
		}

		bucket.Trades = append(bucket.Trades, t)
		bucket.TradeCount++
		bucket.TotalPnL = bucket.TotalPnL.Add(t.RealizedPnL)

		switch t.Class {
		case types.PnLClassWin:
			bucket.WinningTrades++
		case types.PnLClassLoss:
			bucket.LosingTrades++
		}

		// Strict comparisons: the first trade at a given extreme keeps
		// its spot, a later tie does not replace it.
		trade := t
		if bucket.BestTrade == nil || trade.RealizedPnL.GreaterThan(bucket.BestTrade.RealizedPnL) {
			bucket.BestTrade = &trade
		}
		if bucket.WorstTrade == nil || trade.RealizedPnL.LessThan(bucket.WorstTrade.RealizedPnL) {
			bucket.WorstTrade = &trade
		}
	}

	for _, bucket := range days {
		bucket.AverageRR = averageRR(bucket.Trades)
	}

	// Replay days chronologically to assign start-of-day balances.
	balance := startingBalance
	for _, key := range SortedDayKeys(days) {
		bucket := days[key]
		bucket.StartingBalance = balance
		bucket.PercentageChange = utils.SafePercent(bucket.TotalPnL, balance)
		balance = balance.Add(bucket.TotalPnL)
	}

	return days
}

// SortedDayKeys returns the bucket keys in chronological order. The
// YYYY-MM-DD key format makes lexicographic order chronological.
func SortedDayKeys(days map[string]*types.DailyBucket) []string {
	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// averageRR averages the valid positive R/R figures of a day's
// trades. Rows whose maxRR cell is empty or the literal "Loss"
// contribute nothing.
func averageRR(trades []types.EnrichedTrade) decimal.Decimal {
	sum := decimal.Zero
	count := 0
	for _, t := range trades {
		rr := ParseNumber(t.MaxRR)
		if rr.GreaterThan(decimal.Zero) {
			sum = sum.Add(rr)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}
