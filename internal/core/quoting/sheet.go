package quoting

import (
	"slices"
	"time"

	"github.com/charleschow/fairline/internal/core/odds"
	"github.com/charleschow/fairline/internal/core/pricing"
)

// Market names as they appear on a sheet.
const (
	MarketMatchResult     = "1X2"
	MarketDrawNoBet       = "Draw No Bet"
	MarketGridMatchResult = "1X2 (Poisson grid)"
	MarketBTTS            = "Both Teams To Score"
)

// Fixture identifies a match and carries the two ratings it is priced from.
type Fixture struct {
	ID         string  `yaml:"id" json:"id,omitempty"`
	League     string  `yaml:"league" json:"league" validate:"required"`
	HomeTeam   string  `yaml:"home" json:"home_team"`
	AwayTeam   string  `yaml:"away" json:"away_team"`
	HomeRating float64 `yaml:"home_rating" json:"home_rating"`
	AwayRating float64 `yaml:"away_rating" json:"away_rating"`
}

// Selection is one side of a market: its fair quote and the margined price.
type Selection struct {
	Name string        `json:"name"`
	Fair pricing.Quote `json:"fair"`
	Odds float64       `json:"odds"`
}

// Market is a complete set of mutually exclusive selections.
type Market struct {
	Name       string      `json:"name"`
	Selections []Selection `json:"selections"`
}

// Overround is Σ 1/odds over the margined prices.
func (m Market) Overround() float64 {
	prices := make([]float64, len(m.Selections))
	for i, s := range m.Selections {
		prices[i] = s.Odds
	}
	return odds.Overround(prices)
}

// Sheet is a fully priced fixture.
type Sheet struct {
	Fixture       Fixture               `json:"fixture"`
	League        pricing.League        `json:"league"`
	MarginPercent float64               `json:"margin_percent"`
	Outcome       pricing.ThreeWayProbs `json:"outcome"`
	Grid          pricing.MarketBundle  `json:"grid"`
	Markets       []Market              `json:"markets"`
	PricedAt      time.Time             `json:"priced_at"`
}

// Market returns the named market, if present.
func (s Sheet) Market(name string) (Market, bool) {
	for _, m := range s.Markets {
		if m.Name == name {
			return m, true
		}
	}
	return Market{}, false
}

// priced is the fixture-independent part of a sheet and what the memo holds.
type priced struct {
	outcome pricing.ThreeWayProbs
	grid    pricing.MarketBundle
	markets []Market
}

// clone deep-copies every slice so a sheet built from the memo shares
// nothing with it.
func (p priced) clone() priced {
	grid := p.grid
	grid.Totals = slices.Clone(p.grid.Totals)
	grid.HomeDistribution = slices.Clone(p.grid.HomeDistribution)
	grid.AwayDistribution = slices.Clone(p.grid.AwayDistribution)
	return priced{outcome: p.outcome, grid: grid, markets: cloneMarkets(p.markets)}
}

func cloneMarkets(markets []Market) []Market {
	if markets == nil {
		return nil
	}
	out := make([]Market, len(markets))
	for i, m := range markets {
		out[i] = Market{Name: m.Name, Selections: slices.Clone(m.Selections)}
	}
	return out
}

// BuildMarkets runs the full pipeline for one rating pair: closed-form 1X2,
// its Draw-No-Bet split, the grid calibrated to that split, then margin on
// every market.
func BuildMarkets(ratingHome, ratingAway float64, league pricing.League, p pricing.Params) (pricing.ThreeWayProbs, pricing.MarketBundle, []Market) {
	outcome := pricing.Outcome(ratingHome, ratingAway, league, p)

	dnbHome, dnbAway := odds.DrawNoBet(outcome.Home, outcome.Away)
	grid := pricing.PoissonMarkets(
		odds.ProbabilityToOdds(dnbHome),
		odds.ProbabilityToOdds(dnbAway),
		league.AverageGoals,
		p,
	)

	m := p.MarginPercent
	markets := []Market{
		margined(MarketMatchResult, m,
			named{"Home", outcome.Home}, named{"Draw", outcome.Draw}, named{"Away", outcome.Away}),
		margined(MarketDrawNoBet, m,
			named{"Home", dnbHome}, named{"Away", dnbAway}),
		margined(MarketGridMatchResult, m,
			named{"Home", grid.Home.Probability}, named{"Draw", grid.Draw.Probability}, named{"Away", grid.Away.Probability}),
	}
	for _, tq := range grid.Totals {
		markets = append(markets, margined(TotalsMarketName(tq.Line), m,
			named{"Over", tq.Over.Probability}, named{"Under", tq.Under.Probability}))
	}
	markets = append(markets, margined(MarketBTTS, m,
		named{"Yes", grid.BTTSYes.Probability}, named{"No", grid.BTTSNo.Probability}))

	return outcome, grid, markets
}

// TotalsMarketName names the Over/Under market for line, e.g. "Over/Under 2.5".
func TotalsMarketName(line float64) string {
	return "Over/Under " + formatLine(line)
}

type named struct {
	name string
	prob float64
}

func margined(name string, marginPercent float64, sides ...named) Market {
	probs := make([]float64, len(sides))
	for i, s := range sides {
		probs[i] = s.prob
	}
	prices := odds.ApplyMargin(probs, marginPercent)

	sels := make([]Selection, len(sides))
	for i, s := range sides {
		sels[i] = Selection{Name: s.name, Fair: pricing.NewQuote(s.prob), Odds: prices[i]}
	}
	return Market{Name: name, Selections: sels}
}
