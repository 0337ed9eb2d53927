package pricing

import "math"

const (
	shareEps       = 1e-6
	shareTolerance = 1e-6
	shareMaxIter   = 60
)

// conditionalHomeWin is P(home | decisive) when the home side takes share s
// of lambdaTotal expected goals.
func conditionalHomeWin(s, lambdaTotal float64, maxGoals int) (float64, []float64, []float64) {
	home := TruncatedPoisson(lambdaTotal*s, maxGoals)
	away := TruncatedPoisson(lambdaTotal*(1-s), maxGoals)

	p := NewScoreGrid(home, away).MatchOdds()
	decisive := p.Home + p.Away
	if decisive <= 0 {
		return 0.5, home, away
	}
	return p.Home / decisive, home, away
}

// SolveGoalShare finds the home share s of lambdaTotal whose grid reproduces
// the conditional home-win probability piHome, by bisection on [ε, 1-ε].
//
// The conditional probability is increasing in s. Targets outside what the
// bounds can reach return the nearest bound; a non-positive lambdaTotal or a
// target outside (0,1) returns an even split.
func SolveGoalShare(piHome, lambdaTotal float64, maxGoals int) (s float64, home, away []float64) {
	if lambdaTotal <= 0 || !(piHome > 0 && piHome < 1) {
		_, home, away = conditionalHomeWin(0.5, lambdaTotal, maxGoals)
		return 0.5, home, away
	}

	lo, hi := shareEps, 1-shareEps

	loCond, loHome, loAway := conditionalHomeWin(lo, lambdaTotal, maxGoals)
	if piHome <= loCond {
		return lo, loHome, loAway
	}
	hiCond, hiHome, hiAway := conditionalHomeWin(hi, lambdaTotal, maxGoals)
	if piHome >= hiCond {
		return hi, hiHome, hiAway
	}

	for range shareMaxIter {
		mid := (lo + hi) / 2.0
		cond, midHome, midAway := conditionalHomeWin(mid, lambdaTotal, maxGoals)
		if math.Abs(cond-piHome) < shareTolerance {
			return mid, midHome, midAway
		}
		if cond > piHome {
			hi = mid
		} else {
			lo = mid
		}
	}

	s = (lo + hi) / 2.0
	_, home, away = conditionalHomeWin(s, lambdaTotal, maxGoals)
	return s, home, away
}
