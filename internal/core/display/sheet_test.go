package display

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/fairline/internal/core/pricing"
	"github.com/charleschow/fairline/internal/core/quoting"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.855, "1.86"},
		{2.0, "2.00"},
		{3.14159, "3.14"},
		{0, noPrice},
		{-1, noPrice},
		{math.Inf(1), noPrice},
		{math.NaN(), noPrice},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Price(tt.in), "Price(%v)", tt.in)
	}
}

func TestNoPriceIsPlainDash(t *testing.T) {
	assert.Equal(t, "-", Price(math.Inf(1)))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "35.9", Percent(0.35858))
	assert.Equal(t, "100.0", Percent(1))
	assert.Equal(t, "0.0", Percent(0))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Arsenal", shortName("Arsenal"))
	assert.Equal(t, "United", shortName("Newcastle United"))
	assert.Equal(t, "Hammarby", shortName("Hammarby IF"))
	assert.Equal(t, "-", shortName(""))
}

func TestPrintSheet(t *testing.T) {
	lg := pricing.League{AverageGoals: 2.6, DrawRate: 0.27}
	fx := quoting.Fixture{ID: "m1", League: "EPL", HomeTeam: "Arsenal FC", AwayTeam: "Everton", HomeRating: 1800, AwayRating: 1600}
	p := pricing.DefaultParams()
	out, grid, markets := quoting.BuildMarkets(fx.HomeRating, fx.AwayRating, lg, p)

	sheet := quoting.Sheet{
		Fixture:       fx,
		League:        lg,
		MarginPercent: p.MarginPercent,
		Outcome:       out,
		Grid:          grid,
		Markets:       markets,
		PricedAt:      time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC),
	}

	var b strings.Builder
	require.NoError(t, PrintSheet(&b, sheet))
	s := b.String()

	assert.Contains(t, s, "Arsenal FC vs Everton  (EPL)")
	assert.Contains(t, s, "[m1 2026-04-01 20:00:00]")
	assert.Contains(t, s, "draw rate 27.0%")
	assert.Contains(t, s, quoting.MarketMatchResult)
	assert.Contains(t, s, quoting.MarketBTTS)
	assert.Contains(t, s, "book 105.00%")
	assert.Contains(t, s, "xG Arsenal")
}
