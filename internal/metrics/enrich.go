package metrics

import (
	"strings"

	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/propdeck/challenge-backend/pkg/utils"
	"github.com/shopspring/decimal"
)

// EnrichTrade computes the derived per-trade fields for one raw row.
// currentBalance is the account balance at computation time; the
// balance before the trade closed is approximated as
// currentBalance - realized, floored at zero. The approximation
// ignores other trades closing at the same instant, which is accepted
// as a limitation of scraped data.
func (e *Engine) EnrichTrade(raw types.RawTrade, currentBalance decimal.Decimal) types.EnrichedTrade {
	t := types.EnrichedTrade{
		RawTrade:      raw,
		RealizedPnL:   ParseCurrency(raw.Realized),
		CommissionAmt: ParseCurrency(raw.Commission),
	}

	if strings.EqualFold(raw.Side, string(types.TradeSideBuy)) {
		t.SideNorm = types.TradeSideBuy
	} else {
		t.SideNorm = types.TradeSideSell
	}

	switch {
	case t.RealizedPnL.GreaterThan(decimal.Zero):
		t.Class = types.PnLClassWin
	case t.RealizedPnL.LessThan(decimal.Zero):
		t.Class = types.PnLClassLoss
	default:
		t.Class = types.PnLClassBreakeven
	}

	var openedOK, closedOK bool
	if raw.DateStart != "" {
		t.OpenedAt, openedOK = e.ParseSiteDate(raw.DateStart)
	}
	if raw.DateEnd != "" {
		t.ClosedAt, closedOK = e.ParseSiteDate(raw.DateEnd)
	}

	if openedOK && closedOK && t.ClosedAt.After(t.OpenedAt) {
		t.HoldTime = utils.FormatDuration(t.ClosedAt.Sub(t.OpenedAt))
	}

	t.Risk = e.estimateRisk(raw, t.RealizedPnL, currentBalance)

	return t
}

// EnrichTrades enriches every displayable row. Rows with no asset or
// realized value are skipped entirely; order is preserved.
func (e *Engine) EnrichTrades(raws []types.RawTrade, currentBalance decimal.Decimal) []types.EnrichedTrade {
	trades := make([]types.EnrichedTrade, 0, len(raws))
	for _, raw := range raws {
		if !raw.Displayable() {
			continue
		}
		trades = append(trades, e.EnrichTrade(raw, currentBalance))
	}
	return trades
}

// estimateRisk estimates the risk taken on a trade. The history
// method, derived from realized P&L and the achieved R/R, takes
// precedence; the stop-distance method from entry, initial stop, and
// lot size is the fallback when the row carries no usable R/R figure.
func (e *Engine) estimateRisk(raw types.RawTrade, realized, currentBalance decimal.Decimal) *types.RiskEstimate {
	historical := currentBalance.Sub(realized)
	if historical.IsNegative() {
		historical = decimal.Zero
	}

	maxRR := ParseNumber(raw.MaxRR)
	if maxRR.GreaterThan(decimal.Zero) && !realized.IsZero() {
		var amount decimal.Decimal
		if realized.GreaterThan(decimal.Zero) {
			amount = realized.Div(maxRR)
		} else {
			amount = realized.Abs()
		}
		return &types.RiskEstimate{
			Method:            types.RiskMethodHistory,
			Amount:            amount,
			Percent:           utils.SafePercent(amount, historical),
			HistoricalBalance: historical,
		}
	}

	entry := ParseNumber(raw.Entry)
	stop := ParseNumber(raw.InitialSL)
	size := ParseNumber(raw.Size)
	if entry.IsZero() || stop.IsZero() || size.IsZero() {
		return nil
	}

	// Absolute distance covers both sides; a sell's stop sits above
	// entry, flipping the sign of the raw difference.
	amount := entry.Sub(stop).Abs().Mul(size)
	if amount.IsZero() {
		return nil
	}

	return &types.RiskEstimate{
		Method:            types.RiskMethodStopDistance,
		Amount:            amount,
		Percent:           utils.SafePercent(amount, historical),
		HistoricalBalance: historical,
	}
}
