package metrics_test

import (
	"testing"

	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/shopspring/decimal"
)

func TestBuildEquityCurve(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "$100.00"),
		dayTrade("EURUSD", "6/03/25", "-$50.00"),
		dayTrade("EURUSD", "6/04/25", "$200.00"),
	}, capital)

	curve := engine.BuildEquityCurve(trades, capital)

	if len(curve) != len(trades)+1 {
		t.Fatalf("curve length = %d, want %d", len(curve), len(trades)+1)
	}

	want := []int64{10000, 10100, 10050, 10250}
	for i, w := range want {
		if !curve[i].CumulativePnL.Equal(decimal.NewFromInt(w)) {
			t.Errorf("point %d equity = %s, want %d", i, curve[i].CumulativePnL, w)
		}
	}

	if curve[0].TradeNumber != 0 {
		t.Error("synthetic first point should have trade number 0")
	}
	for i := 1; i < len(curve); i++ {
		if curve[i].TradeNumber != i {
			t.Errorf("point %d trade number = %d", i, curve[i].TradeNumber)
		}
	}
}

func TestBuildEquityCurveSortsChronologically(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	// Input out of order; the replay must sort by close time.
	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/04/25", "$200.00"),
		dayTrade("EURUSD", "6/02/25", "$100.00"),
	}, capital)

	curve := engine.BuildEquityCurve(trades, capital)
	if !curve[1].TradePnL.Equal(decimal.NewFromInt(100)) {
		t.Errorf("first replayed trade P&L = %s, want 100", curve[1].TradePnL)
	}
}

func TestBuildEquityCurveEmpty(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	curve := engine.BuildEquityCurve(nil, capital)
	if len(curve) != 1 {
		t.Fatalf("empty input should yield only the synthetic point, got %d", len(curve))
	}
	if !curve[0].CumulativePnL.Equal(capital) {
		t.Errorf("synthetic point equity = %s, want %s", curve[0].CumulativePnL, capital)
	}
}

func TestComputeMaxDrawdownStaticAtPeak(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "$100.00"),
		dayTrade("EURUSD", "6/03/25", "-$50.00"),
		dayTrade("EURUSD", "6/04/25", "$200.00"),
	}, capital)

	// Current balance sits at the peak: zero usage.
	m := engine.ComputeMaxDrawdown(trades, capital, decimal.NewFromInt(10250),
		decimal.NewFromInt(5), types.DrawdownStatic)

	if !m.MaxEquity.Equal(decimal.NewFromInt(10250)) {
		t.Errorf("max equity = %s, want 10250", m.MaxEquity)
	}
	if !m.UsedPercent.IsZero() {
		t.Errorf("drawdown used = %s, want 0", m.UsedPercent)
	}
	if m.Broken {
		t.Error("drawdown should not be broken at the peak")
	}
}

func TestComputeMaxDrawdownTrailingScaling(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "$2,000.00"),
		dayTrade("EURUSD", "6/03/25", "-$1,000.00"),
	}, capital)

	m := engine.ComputeMaxDrawdown(trades, capital, decimal.NewFromInt(11000),
		decimal.NewFromInt(10), types.DrawdownTrailingScaling)

	if !m.MaxEquity.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("max equity = %s, want 12000", m.MaxEquity)
	}
	// Base scales with the peak: 1000/12000 = 8.33%.
	if got := m.UsedPercent.StringFixed(2); got != "8.33" {
		t.Errorf("drawdown used = %s, want 8.33", got)
	}
	if m.Broken {
		t.Error("8.33% usage should not break a 10% limit")
	}
}

func TestComputeMaxDrawdownBroken(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "-$600.00"),
	}, capital)

	m := engine.ComputeMaxDrawdown(trades, capital, decimal.NewFromInt(9400),
		decimal.NewFromInt(5), types.DrawdownStatic)

	// 600/10000 = 6% usage against a 5% limit.
	if !m.Broken {
		t.Error("6% usage should break a 5% limit")
	}
	if !m.Progress.Equal(decimal.NewFromInt(100)) {
		t.Errorf("progress should cap at 100, got %s", m.Progress)
	}
}

func TestComputeMaxDrawdownEmpty(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	m := engine.ComputeMaxDrawdown(nil, capital, capital,
		decimal.NewFromInt(10), types.DrawdownStatic)

	if !m.UsedPercent.IsZero() || m.Broken {
		t.Error("no trades means no usage and no breach")
	}
	if !m.EquityFloor.Equal(capital) {
		t.Errorf("empty equity floor = %s, want %s", m.EquityFloor, capital)
	}
}

func TestComputeDailyDrawdown(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/02/25", "$500.00"),
		dayTrade("EURUSD", "6/03/25", "-$300.00"),
	}, capital)

	m := engine.ComputeDailyDrawdown(trades, capital, decimal.NewFromInt(5))

	if m.Date != "2025-06-03" {
		t.Errorf("latest trading day = %s, want 2025-06-03", m.Date)
	}
	if !m.StartOfDayBalance.Equal(decimal.NewFromInt(10500)) {
		t.Errorf("start-of-day balance = %s, want 10500", m.StartOfDayBalance)
	}
	if !m.TodaysLoss.Equal(decimal.NewFromInt(300)) {
		t.Errorf("today's loss = %s, want 300", m.TodaysLoss)
	}
	if got := m.UsedPercent.StringFixed(2); got != "2.86" {
		t.Errorf("daily usage = %s, want 2.86", got)
	}
	if !m.EquityFloor.Equal(decimal.NewFromInt(9975)) {
		t.Errorf("daily floor = %s, want 9975", m.EquityFloor)
	}
	if m.Broken {
		t.Error("2.86% usage should not break a 5% limit")
	}
}

func TestComputeDailyDrawdownProfitableDay(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	trades := engine.EnrichTrades([]types.RawTrade{
		dayTrade("EURUSD", "6/03/25", "$250.00"),
	}, capital)

	m := engine.ComputeDailyDrawdown(trades, capital, decimal.NewFromInt(5))
	if !m.TodaysLoss.IsZero() || !m.UsedPercent.IsZero() {
		t.Error("a profitable latest day uses none of the daily limit")
	}
}

func TestComputeDailyDrawdownEmpty(t *testing.T) {
	engine := newTestEngine()
	capital := decimal.NewFromInt(10000)

	m := engine.ComputeDailyDrawdown(nil, capital, decimal.NewFromInt(5))
	if !m.UsedPercent.IsZero() || m.Broken {
		t.Error("no trades means no usage and no breach")
	}
	if !m.EquityFloor.Equal(capital) {
		t.Errorf("empty daily floor = %s, want %s", m.EquityFloor, capital)
	}
}
