package pricing

import (
	"encoding/json"
	"math"

	"github.com/charleschow/fairline/internal/core/odds"
)

// StandardTotalsLines are the Over/Under lines quoted alongside 2.5.
var StandardTotalsLines = []float64{0.5, 1.5, 2.5, 3.5, 4.5}

// Quote pairs a fair probability with its decimal price. A zero probability
// is priced at +Inf, which serialises as a null price.
type Quote struct {
	Probability float64
	Odds        float64
}

// NewQuote prices p via odds.ProbabilityToOdds.
func NewQuote(p float64) Quote {
	return Quote{Probability: p, Odds: odds.ProbabilityToOdds(p)}
}

type quoteJSON struct {
	Probability float64  `json:"probability"`
	Odds        *float64 `json:"odds"`
}

func (q Quote) MarshalJSON() ([]byte, error) {
	out := quoteJSON{Probability: q.Probability}
	if !math.IsInf(q.Odds, 0) && !math.IsNaN(q.Odds) {
		o := q.Odds
		out.Odds = &o
	}
	return json.Marshal(out)
}

func (q *Quote) UnmarshalJSON(data []byte) error {
	var in quoteJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	q.Probability = in.Probability
	if in.Odds == nil {
		q.Odds = math.Inf(1)
	} else {
		q.Odds = *in.Odds
	}
	return nil
}

// TotalsQuote is one Over/Under line.
type TotalsQuote struct {
	Line  float64 `json:"line"`
	Over  Quote   `json:"over"`
	Under Quote   `json:"under"`
}

// MarketBundle is everything the grid model prices for one match.
type MarketBundle struct {
	LambdaTotal float64 `json:"lambda_total"`
	XGHome      float64 `json:"xg_home"`
	XGAway      float64 `json:"xg_away"`
	GoalShare   float64 `json:"goal_share"`

	Home Quote `json:"home"`
	Draw Quote `json:"draw"`
	Away Quote `json:"away"`

	Over25  Quote `json:"over_25"`
	Under25 Quote `json:"under_25"`

	BTTSYes Quote `json:"btts_yes"`
	BTTSNo  Quote `json:"btts_no"`

	Totals []TotalsQuote `json:"totals"`

	HomeDistribution []float64 `json:"home_distribution"`
	AwayDistribution []float64 `json:"away_distribution"`

	PiHomeTarget float64 `json:"pi_home_target"` // conditional home-win implied by the DNB prices
	PiHomeModel  float64 `json:"pi_home_model"`  // conditional home-win the calibrated grid achieves
}

// Probabilities returns the grid's fair 1X2 split.
func (b MarketBundle) Probabilities() ThreeWayProbs {
	return ThreeWayProbs{Home: b.Home.Probability, Draw: b.Draw.Probability, Away: b.Away.Probability}
}

// DNBTarget converts a pair of Draw-No-Bet prices into the conditional
// home-win probability they imply. Any non-positive or infinite price
// gives 0.5.
func DNBTarget(homeDNBOdds, awayDNBOdds float64) float64 {
	if !validPrice(homeDNBOdds) || !validPrice(awayDNBOdds) {
		return 0.5
	}
	pi, _ := odds.RemoveVig2(homeDNBOdds, awayDNBOdds)
	return pi
}

// TotalGoalsLambda scales the league's average total goals up for lopsided
// matches: λ = avg·(1 + β·|π - 0.5|). Negative averages count as zero.
func TotalGoalsLambda(avgGoals, piHome, beta float64) float64 {
	return math.Max(avgGoals, 0) * (1.0 + beta*math.Abs(piHome-0.5))
}

// PoissonMarkets calibrates an independent truncated-Poisson scoreline grid
// to a pair of fair Draw-No-Bet prices and reads 1X2, Over/Under and BTTS
// prices off it.
func PoissonMarkets(homeDNBOdds, awayDNBOdds, avgGoals float64, p Params) MarketBundle {
	piHome := DNBTarget(homeDNBOdds, awayDNBOdds)
	lambdaTotal := TotalGoalsLambda(avgGoals, piHome, p.TotalGoalsBeta)

	s, homeDist, awayDist := SolveGoalShare(piHome, lambdaTotal, p.MaxGoals)
	grid := NewScoreGrid(homeDist, awayDist)

	result := grid.MatchOdds()

	_, under := grid.OverUnder(2.5)
	under = clamp(under, 0, 1)

	yes, no := grid.BothTeamsToScore()

	piModel := 0.5
	if decisive := result.Home + result.Away; decisive > 0 {
		piModel = result.Home / decisive
	}

	return MarketBundle{
		LambdaTotal: lambdaTotal,
		XGHome:      lambdaTotal * s,
		XGAway:      lambdaTotal * (1 - s),
		GoalShare:   s,

		Home: NewQuote(result.Home),
		Draw: NewQuote(result.Draw),
		Away: NewQuote(result.Away),

		Over25:  NewQuote(1 - under),
		Under25: NewQuote(under),

		BTTSYes: NewQuote(yes),
		BTTSNo:  NewQuote(no),

		Totals: totalsQuotes(grid),

		HomeDistribution: homeDist,
		AwayDistribution: awayDist,

		PiHomeTarget: piHome,
		PiHomeModel:  piModel,
	}
}

func validPrice(o float64) bool {
	return o > 0 && !math.IsInf(o, 1)
}

func totalsQuotes(grid *ScoreGrid) []TotalsQuote {
	out := make([]TotalsQuote, 0, len(StandardTotalsLines))
	for _, line := range StandardTotalsLines {
		_, under := grid.OverUnder(line)
		under = clamp(under, 0, 1)
		out = append(out, TotalsQuote{Line: line, Over: NewQuote(1 - under), Under: NewQuote(under)})
	}
	return out
}
