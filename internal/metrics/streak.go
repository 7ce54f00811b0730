package metrics

import (
	"github.com/propdeck/challenge-backend/pkg/types"
)

// ComputeStreak finds the current run of consecutive wins or losses.
// Breakeven trades neither extend nor break a streak; they are dropped
// before the scan. The walk starts at the most recent decided trade
// and moves backwards until the P&L sign flips.
func (e *Engine) ComputeStreak(trades []types.EnrichedTrade) types.Streak {
	decided := make([]types.EnrichedTrade, 0, len(trades))
	for _, t := range sortChronological(trades) {
		if t.Class != types.PnLClassBreakeven {
			decided = append(decided, t)
		}
	}

	if len(decided) == 0 {
		return types.Streak{}
	}

	latest := decided[len(decided)-1]
	streakType := types.StreakWin
	if latest.IsLoss() {
		streakType = types.StreakLoss
	}

	count := 0
	for i := len(decided) - 1; i >= 0; i-- {
		if decided[i].IsWin() != latest.IsWin() {
			break
		}
		count++
	}

	return types.Streak{Count: count, Type: streakType}
}
