package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/fairline/internal/core/pricing"
)

const leagueYAML = `
pricing:
  margin_percent: 6.5
  draw_rate_scale: 1.0
leagues:
  - name: Premier League
    country: England
    average_goals: 2.85
    draw_rate: 0.23
    aliases: [EPL]
  - name: Eredivisie
    average_goals: 3.1
    table:
      - {team: Ajax, played: 8, points: 8}
      - {team: PSV, played: 8, points: 5}
`

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LEAGUES_PATH", "JOURNAL_DB_PATH", "SERVER_PORT", "PRICING_WORKERS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	assert.Equal(t, "config/leagues.yaml", cfg.LeaguesPath)
	assert.Empty(t, cfg.JournalDBPath)
	assert.Equal(t, 8780, cfg.ServerPort)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("PRICING_WORKERS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 9001, cfg.ServerPort)
	assert.Equal(t, 8, cfg.Workers)
}

func TestParsePricingLayers(t *testing.T) {
	t.Setenv("MARGIN_PERCENT", "")
	t.Setenv("MAX_GOALS", "12")

	got, err := ParsePricing([]byte(leagueYAML))
	require.NoError(t, err)

	want := pricing.DefaultParams()
	want.MarginPercent = 6.5
	want.DrawRateScale = 1.0
	want.MaxGoals = 12
	assert.Equal(t, want, got.Params)

	p, err := got.Registry.Lookup("epl")
	require.NoError(t, err)
	assert.Equal(t, 2.85, p.AverageGoals)

	p, err = got.Registry.Lookup("Eredivisie")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p.DrawRate, 1e-12)
}

func TestParsePricingEnvWins(t *testing.T) {
	t.Setenv("MARGIN_PERCENT", "3")
	got, err := ParsePricing([]byte(leagueYAML))
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Params.MarginPercent)
}

func TestParsePricingErrors(t *testing.T) {
	_, err := ParsePricing([]byte("pricing:\n  max_goals: 0\nleagues: []\n"))
	assert.Error(t, err)

	_, err = ParsePricing([]byte("leagues:\n  - name: A\n  - name: a\n"))
	assert.Error(t, err)

	_, err = ParsePricing([]byte("leagues: [unterminated"))
	assert.Error(t, err)
}

func TestLoadPricingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leagues.yaml")
	require.NoError(t, os.WriteFile(path, []byte(leagueYAML), 0o644))

	got, err := LoadPricing(path)
	require.NoError(t, err)
	assert.Len(t, got.Registry.Names(), 2)

	_, err = LoadPricing(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
