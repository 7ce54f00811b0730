// Package types provides configuration types for the challenge backend.
package types

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ProfitPhase is one phase of a multi-phase profit target. Phases are
// kept as an explicitly ordered list; phase numbers start at 1 and the
// target for phase N is measured beyond phase N-1's cumulative
// threshold, not from zero.
type ProfitPhase struct {
	Phase         int             `json:"phase"`
	TargetPercent decimal.Decimal `json:"targetPercent"`
}

// ChallengeConfig is the user-configured rule set a challenge account
// is evaluated against. It is a read-only input to the metrics engine.
type ChallengeConfig struct {
	ProfitPhases []ProfitPhase `json:"profitPhases"`

	DailyDrawdownPct decimal.Decimal `json:"dailyDrawdownPct"`
	MaxDrawdownPct   decimal.Decimal `json:"maxDrawdownPct"`
	MaxDrawdownType  DrawdownType    `json:"maxDrawdownType"`

	MinTradingDays    int `json:"minTradingDays"`
	MinProfitableDays int `json:"minProfitableDays"`

	// ProfitableDayThresholdPct is the minimum day P&L, as a percent of
	// initial capital, for a day to count as profitable.
	ProfitableDayThresholdPct decimal.Decimal `json:"profitableDayThresholdPct"`

	// ConsistencyRulePct caps any single day's share of total profit
	// across all profitable days. Zero disables the rule.
	ConsistencyRulePct decimal.Decimal `json:"consistencyRulePct"`
}

// SortedPhases returns the profit phases ordered by phase number.
func (c ChallengeConfig) SortedPhases() []ProfitPhase {
	phases := make([]ProfitPhase, len(c.ProfitPhases))
	copy(phases, c.ProfitPhases)
	sort.Slice(phases, func(i, j int) bool {
		return phases[i].Phase < phases[j].Phase
	})
	return phases
}

// DefaultChallengeConfig returns a typical one-phase evaluation setup.
func DefaultChallengeConfig() ChallengeConfig {
	return ChallengeConfig{
		ProfitPhases: []ProfitPhase{
			{Phase: 1, TargetPercent: decimal.NewFromInt(10)},
		},
		DailyDrawdownPct:          decimal.NewFromInt(5),
		MaxDrawdownPct:            decimal.NewFromInt(10),
		MaxDrawdownType:           DrawdownStatic,
		MinTradingDays:            5,
		MinProfitableDays:         3,
		ProfitableDayThresholdPct: decimal.NewFromFloat(0.5),
		ConsistencyRulePct:        decimal.NewFromInt(15),
	}
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	WebSocketPath  string        `json:"websocketPath"`
	ReadTimeout    time.Duration `json:"readTimeout"`
	WriteTimeout   time.Duration `json:"writeTimeout"`
	MaxConnections int           `json:"maxConnections"`
	EnableMetrics  bool          `json:"enableMetrics"`
}

// StoreConfig represents session storage configuration
type StoreConfig struct {
	DataDir string `json:"dataDir"`
}
