package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/charleschow/fairline/internal/core/pricing"
)

type Config struct {
	// League profiles (and an optional pricing: block)
	LeaguesPath string

	// Journal; empty disables it
	JournalDBPath string

	// WebSocket pricing server
	ServerPort int

	// Batch pricing concurrency
	Workers int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		LeaguesPath:   envStr("LEAGUES_PATH", "config/leagues.yaml"),
		JournalDBPath: envStr("JOURNAL_DB_PATH", ""),
		ServerPort:    envInt("SERVER_PORT", 8780),
		Workers:       envInt("PRICING_WORKERS", 8),
		LogLevel:      envStr("LOG_LEVEL", "info"),
	}
}

// ApplyPricingEnv overrides p with any pricing variables set in the
// environment. Unparseable values are ignored.
func ApplyPricingEnv(p *pricing.Params) {
	p.MarginPercent = envFloat("MARGIN_PERCENT", p.MarginPercent)
	p.DrawBlendWeight = envFloat("DRAW_BLEND_WEIGHT", p.DrawBlendWeight)
	p.DrawRateScale = envFloat("DRAW_RATE_SCALE", p.DrawRateScale)
	p.HomeAdvantage = envFloat("HOME_ADVANTAGE", p.HomeAdvantage)
	p.GoalScaleSlope = envFloat("GOAL_SCALE_SLOPE", p.GoalScaleSlope)
	p.GoalScaleCap = envFloat("GOAL_SCALE_CAP", p.GoalScaleCap)
	p.TotalGoalsBeta = envFloat("TOTAL_GOALS_BETA", p.TotalGoalsBeta)
	p.MaxGoals = envInt("MAX_GOALS", p.MaxGoals)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
