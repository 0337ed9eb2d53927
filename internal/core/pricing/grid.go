package pricing

import (
	"fmt"
	"math"
)

// TruncatedPoisson returns P(k) for k = 0..maxGoals-1 followed by the tail
// mass P(k ≥ maxGoals) in the last bucket, so the maxGoals+1 entries sum to 1.
// A negative lambda is treated as zero. maxGoals < 1 is a caller bug and panics.
func TruncatedPoisson(lambda float64, maxGoals int) []float64 {
	if maxGoals < 1 {
		panic(fmt.Sprintf("pricing: maxGoals must be >= 1, got %d", maxGoals))
	}
	lambda = math.Max(lambda, 0)

	dist := make([]float64, maxGoals+1)
	sum := 0.0
	for k := 0; k < maxGoals; k++ {
		dist[k] = poissonPMF(k, lambda)
		sum += dist[k]
	}
	dist[maxGoals] = math.Max(1.0-sum, 0)

	total := sum + dist[maxGoals]
	if total <= 0 {
		clear(dist)
		dist[0] = 1
		return dist
	}
	for k := range dist {
		dist[k] /= total
	}
	return dist
}

// ScoreGrid is the joint scoreline distribution of two independent
// marginals: Cells[h][a] = Home[h]·Away[a].
type ScoreGrid struct {
	Home  []float64
	Away  []float64
	Cells [][]float64
}

// NewScoreGrid builds the outer product of the home and away marginals.
func NewScoreGrid(home, away []float64) *ScoreGrid {
	cells := make([][]float64, len(home))
	for h, ph := range home {
		cells[h] = make([]float64, len(away))
		for a, pa := range away {
			cells[h][a] = ph * pa
		}
	}
	return &ScoreGrid{Home: home, Away: away, Cells: cells}
}

// MatchOdds sums the grid by result and renormalizes. An empty grid is
// scored as a certain draw.
func (g *ScoreGrid) MatchOdds() ThreeWayProbs {
	var p ThreeWayProbs
	for h, row := range g.Cells {
		for a, prob := range row {
			switch {
			case h > a:
				p.Home += prob
			case h == a:
				p.Draw += prob
			default:
				p.Away += prob
			}
		}
	}
	if p.Sum() <= 0 {
		return ThreeWayProbs{Draw: 1}
	}
	return p.normalized()
}

// OverUnder splits the grid around a total-goals line. On whole-number
// lines the exact total is a push and belongs to neither side.
func (g *ScoreGrid) OverUnder(line float64) (over, under float64) {
	for h, row := range g.Cells {
		for a, prob := range row {
			total := float64(h + a)
			switch {
			case total > line:
				over += prob
			case total < line:
				under += prob
			}
		}
	}
	return over, under
}

// BothTeamsToScore returns P(both score) and P(at least one side blanks),
// the latter by inclusion-exclusion over the two zero-goal masses.
func (g *ScoreGrid) BothTeamsToScore() (yes, no float64) {
	var homeBlank, awayBlank float64
	if len(g.Home) > 0 {
		homeBlank = g.Home[0]
	}
	if len(g.Away) > 0 {
		awayBlank = g.Away[0]
	}
	yes = clamp(1-(homeBlank+awayBlank-homeBlank*awayBlank), 0, 1)
	return yes, 1 - yes
}

// CorrectScore returns the probability of one scoreline; scores beyond the
// grid are 0 (the edge buckets already hold the tail).
func (g *ScoreGrid) CorrectScore(homeGoals, awayGoals int) float64 {
	if homeGoals < 0 || awayGoals < 0 || homeGoals >= len(g.Home) || awayGoals >= len(g.Away) {
		return 0
	}
	return g.Cells[homeGoals][awayGoals]
}

// TotalGoals returns the distribution of home+away goals.
func (g *ScoreGrid) TotalGoals() []float64 {
	if len(g.Home) == 0 || len(g.Away) == 0 {
		return nil
	}
	totals := make([]float64, len(g.Home)+len(g.Away)-1)
	for h, row := range g.Cells {
		for a, prob := range row {
			totals[h+a] += prob
		}
	}
	return totals
}

// ExpectedGoals returns the grid means. The tail buckets count at their
// index, so these sit slightly below the generating lambdas.
func (g *ScoreGrid) ExpectedGoals() (home, away float64) {
	for h, row := range g.Cells {
		for a, prob := range row {
			home += float64(h) * prob
			away += float64(a) * prob
		}
	}
	return home, away
}

// TotalProbability sums every cell; 1 up to rounding.
func (g *ScoreGrid) TotalProbability() float64 {
	total := 0.0
	for _, row := range g.Cells {
		for _, prob := range row {
			total += prob
		}
	}
	return total
}

func poissonPMF(k int, lambda float64) float64 {
	if lambda <= 0 {
		if k == 0 {
			return 1.0
		}
		return 0.0
	}
	logP := float64(k)*math.Log(lambda) - lambda - logFactorial(k)
	return math.Exp(logP)
}

func logFactorial(n int) float64 {
	if n <= 1 {
		return 0
	}
	lg, _ := math.Lgamma(float64(n + 1))
	return lg
}
