package pricing

import (
	"math"

	"github.com/charleschow/fairline/internal/core/odds"
)

const (
	eloScale    = 400.0
	minDrawProb = 1e-6
)

// League is the per-competition scoring context a match is priced in.
type League struct {
	AverageGoals float64 `json:"average_goals"` // mean total goals per match
	DrawRate     float64 `json:"draw_rate"`     // observed draw frequency; outside (0,1) means unknown
}

// HasDrawRate reports whether an empirical draw rate was supplied.
func (l League) HasDrawRate() bool {
	return l.DrawRate > 0 && l.DrawRate < 1
}

// ThreeWayProbs holds home-win / draw / away-win probabilities (0–1).
type ThreeWayProbs struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Sum returns Home+Draw+Away.
func (p ThreeWayProbs) Sum() float64 { return p.Home + p.Draw + p.Away }

// Slice returns the probabilities in 1X2 order.
func (p ThreeWayProbs) Slice() []float64 { return []float64{p.Home, p.Draw, p.Away} }

// StrengthRatio is the Elo win-odds ratio 10^(diff/400).
func StrengthRatio(diff float64) float64 {
	return math.Pow(10, diff/eloScale)
}

// GoalScale inflates expected goals for mismatched sides: every 400 rating
// points of gap adds slope, up to maxBoost.
func GoalScale(gap, slope, maxBoost float64) float64 {
	return 1.0 + math.Min(math.Abs(gap)/eloScale*slope, maxBoost)
}

// PoissonDrawProbability is P(X = Y) for independent X, Y ~ Poisson(mu/2):
// exp(-mu)·I₀(mu).
func PoissonDrawProbability(mu float64) float64 {
	if mu <= 0 {
		return 1.0
	}
	return odds.BesselI0Scaled(mu)
}

// Outcome prices a match with a Bradley-Terry-Davidson model whose draw
// parameter comes from the equal-strength Poisson closed form, optionally
// blended with the league's observed draw rate.
//
// A non-positive normaliser (only reachable through NaN inputs) returns the
// zero triple, which callers treat as "no price".
func Outcome(ratingHome, ratingAway float64, league League, p Params) ThreeWayProbs {
	diff := ratingHome - ratingAway + p.HomeAdvantage
	ratio := StrengthRatio(diff)

	mu := math.Max(league.AverageGoals, 0) * GoalScale(ratingHome-ratingAway, p.GoalScaleSlope, p.GoalScaleCap)
	draw := PoissonDrawProbability(mu)

	if league.HasDrawRate() {
		alpha := clamp(p.DrawBlendWeight, 0, 1)
		draw = alpha*league.DrawRate + (1-alpha)*draw
	}
	draw = clamp(draw, minDrawProb, 1-minDrawProb)

	nu := math.Max(draw/(1-draw)*p.DrawRateScale, 0)

	denom := ratio + 1 + 2*nu
	if !(denom > 0) || math.IsInf(denom, 1) {
		return ThreeWayProbs{}
	}
	probs := ThreeWayProbs{
		Home: ratio / denom,
		Draw: 2 * nu / denom,
		Away: 1 / denom,
	}
	return probs.normalized()
}

func (p ThreeWayProbs) normalized() ThreeWayProbs {
	total := p.Sum()
	if total <= 0 {
		return ThreeWayProbs{}
	}
	return ThreeWayProbs{Home: p.Home / total, Draw: p.Draw / total, Away: p.Away / total}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
