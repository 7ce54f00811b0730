package metrics_test

import (
	"testing"

	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/shopspring/decimal"
)

func TestComputeStreakWins(t *testing.T) {
	engine := newTestEngine()
	balance := decimal.NewFromInt(10000)

	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "-$20.00"),
		dayTrade("EURUSD", "6/03/25", "$50.00"),
		dayTrade("EURUSD", "6/04/25", "$30.00"),
	}, balance)

	streak := engine.ComputeStreak(trades)
	if streak.Type != types.StreakWin || streak.Count != 2 {
		t.Errorf("streak = %+v, want 2 wins", streak)
	}
}

func TestComputeStreakLosses(t *testing.T) {
	engine := newTestEngine()
	balance := decimal.NewFromInt(10000)

	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "$50.00"),
		dayTrade("EURUSD", "6/03/25", "$40.00"),
		dayTrade("EURUSD", "6/04/25", "-$10.00"),
	}, balance)

	streak := engine.ComputeStreak(trades)
	if streak.Type != types.StreakLoss || streak.Count != 1 {
		t.Errorf("streak = %+v, want 1 loss", streak)
	}
}

func TestComputeStreakIgnoresBreakevens(t *testing.T) {
	engine := newTestEngine()
	balance := decimal.NewFromInt(10000)

	base := []types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "-$20.00"),
		dayTrade("EURUSD", "6/03/25", "$50.00"),
		dayTrade("EURUSD", "6/05/25", "$30.00"),
	}
	withBreakevens := []types.RawTrade{
		base[0],
		dayTrade("EURUSD", "6/02/25", "$0.00"),
		base[1],
		dayTrade("EURUSD", "6/04/25", "$0.00"),
		base[2],
		dayTrade("EURUSD", "6/06/25", "$0.00"),
	}

	want := engine.ComputeStreak(engine.EnrichTrades(base, balance))
	got := engine.ComputeStreak(engine.EnrichTrades(withBreakevens, balance))

	if got != want {
		t.Errorf("breakeven trades changed the streak: %+v vs %+v", got, want)
	}
}

func TestComputeStreakEmpty(t *testing.T) {
	engine := newTestEngine()
	balance := decimal.NewFromInt(10000)

	if streak := engine.ComputeStreak(nil); streak.Count != 0 || streak.Type != "" {
		t.Errorf("empty input should yield a zero streak, got %+v", streak)
	}

	// All breakeven: still no streak.
	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "$0.00"),
		dayTrade("EURUSD", "6/03/25", "$0.00"),
	}, balance)
	if streak := engine.ComputeStreak(trades); streak.Count != 0 || streak.Type != "" {
		t.Errorf("all-breakeven input should yield a zero streak, got %+v", streak)
	}
}
