// Package config loads server and challenge configuration with viper.
package config

import (
	"fmt"
	"time"

	"github.com/propdeck/challenge-backend/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the full backend configuration.
type Config struct {
	Server    types.ServerConfig
	Store     types.StoreConfig
	Challenge types.ChallengeConfig
}

// phaseSpec is the on-disk shape of one profit phase.
type phaseSpec struct {
	Phase         int     `mapstructure:"phase"`
	TargetPercent float64 `mapstructure:"target_percent"`
}

// Load reads configuration from an optional yaml file plus CHALLENGE_*
// environment overrides, filling defaults for everything else.
func Load(path string, logger *zap.Logger) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.websocket_path", "/ws")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_connections", 100)
	v.SetDefault("server.enable_metrics", true)

	v.SetDefault("store.data_dir", "./data")

	v.SetDefault("challenge.daily_drawdown_pct", 5.0)
	v.SetDefault("challenge.max_drawdown_pct", 10.0)
	v.SetDefault("challenge.max_drawdown_type", string(types.DrawdownStatic))
	v.SetDefault("challenge.min_trading_days", 5)
	v.SetDefault("challenge.min_profitable_days", 3)
	v.SetDefault("challenge.profitable_day_threshold_pct", 0.5)
	v.SetDefault("challenge.consistency_rule_pct", 15.0)

	v.SetEnvPrefix("CHALLENGE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Info("loaded config file", zap.String("path", path))
	}

	cfg := &Config{
		Server: types.ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			WebSocketPath:  v.GetString("server.websocket_path"),
			ReadTimeout:    getDuration(v, "server.read_timeout", 30*time.Second),
			WriteTimeout:   getDuration(v, "server.write_timeout", 30*time.Second),
			MaxConnections: v.GetInt("server.max_connections"),
			EnableMetrics:  v.GetBool("server.enable_metrics"),
		},
		Store: types.StoreConfig{
			DataDir: v.GetString("store.data_dir"),
		},
		Challenge: types.ChallengeConfig{
			DailyDrawdownPct:          decimal.NewFromFloat(v.GetFloat64("challenge.daily_drawdown_pct")),
			MaxDrawdownPct:            decimal.NewFromFloat(v.GetFloat64("challenge.max_drawdown_pct")),
			MaxDrawdownType:           types.DrawdownType(v.GetString("challenge.max_drawdown_type")),
			MinTradingDays:            v.GetInt("challenge.min_trading_days"),
			MinProfitableDays:         v.GetInt("challenge.min_profitable_days"),
			ProfitableDayThresholdPct: decimal.NewFromFloat(v.GetFloat64("challenge.profitable_day_threshold_pct")),
			ConsistencyRulePct:        decimal.NewFromFloat(v.GetFloat64("challenge.consistency_rule_pct")),
		},
	}

	var phases []phaseSpec
	if err := v.UnmarshalKey("challenge.profit_phases", &phases); err != nil {
		return nil, fmt.Errorf("failed to parse profit phases: %w", err)
	}
	for _, p := range phases {
		cfg.Challenge.ProfitPhases = append(cfg.Challenge.ProfitPhases, types.ProfitPhase{
			Phase:         p.Phase,
			TargetPercent: decimal.NewFromFloat(p.TargetPercent),
		})
	}
	if len(cfg.Challenge.ProfitPhases) == 0 {
		cfg.Challenge.ProfitPhases = []types.ProfitPhase{
			{Phase: 1, TargetPercent: decimal.NewFromInt(10)},
		}
	}

	return cfg, nil
}

func getDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}
