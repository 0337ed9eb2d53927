package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestTruncatedPoissonSumsToOne(t *testing.T) {
	for _, lambda := range []float64{0.01, 0.7, 1.4, 2.6, 5, 12} {
		for _, maxGoals := range []int{1, 3, 10, 15} {
			dist := TruncatedPoisson(lambda, maxGoals)
			require.Len(t, dist, maxGoals+1)
			assert.InDelta(t, 1.0, sum(dist), 1e-12, "lambda=%v maxGoals=%v", lambda, maxGoals)
			for _, p := range dist {
				assert.GreaterOrEqual(t, p, 0.0)
			}
		}
	}
}

func TestTruncatedPoissonTailBucket(t *testing.T) {
	dist := TruncatedPoisson(1.0, 2)
	// P(0) = P(1) = e^-1, tail holds the rest
	assert.InDelta(t, 0.36787944, dist[0], 1e-8)
	assert.InDelta(t, 0.36787944, dist[1], 1e-8)
	assert.InDelta(t, 1-2*0.36787944, dist[2], 1e-8)
}

func TestTruncatedPoissonZeroLambda(t *testing.T) {
	for _, lambda := range []float64{0, -3} {
		dist := TruncatedPoisson(lambda, 4)
		assert.Equal(t, []float64{1, 0, 0, 0, 0}, dist)
	}
}

func TestTruncatedPoissonRejectsZeroBound(t *testing.T) {
	assert.Panics(t, func() { TruncatedPoisson(2.6, 0) })
	assert.Panics(t, func() { TruncatedPoisson(2.6, -1) })
}

func TestScoreGrid(t *testing.T) {
	grid := NewScoreGrid(TruncatedPoisson(1.6, 15), TruncatedPoisson(1.1, 15))
	assert.InDelta(t, 1.0, grid.TotalProbability(), 1e-12)

	res := grid.MatchOdds()
	assert.InDelta(t, 1.0, res.Sum(), 1e-12)
	assert.Greater(t, res.Home, res.Away)

	over, under := grid.OverUnder(2.5)
	assert.InDelta(t, 1.0, over+under, 1e-12)

	// whole-number line leaves the exact total as a push
	over, under = grid.OverUnder(2)
	totals := grid.TotalGoals()
	assert.InDelta(t, 1.0, over+under+totals[2], 1e-12)
	assert.InDelta(t, 1.0, sum(totals), 1e-12)

	yes, no := grid.BothTeamsToScore()
	assert.InDelta(t, 1.0, yes+no, 1e-15)
	direct := 0.0
	for h := 1; h < len(grid.Home); h++ {
		for a := 1; a < len(grid.Away); a++ {
			direct += grid.CorrectScore(h, a)
		}
	}
	assert.InDelta(t, direct, yes, 1e-12)

	eh, ea := grid.ExpectedGoals()
	assert.InDelta(t, 1.6, eh, 1e-6)
	assert.InDelta(t, 1.1, ea, 1e-6)
}

func TestScoreGridCorrectScoreBounds(t *testing.T) {
	grid := NewScoreGrid(TruncatedPoisson(1, 3), TruncatedPoisson(1, 3))
	assert.Zero(t, grid.CorrectScore(4, 0))
	assert.Zero(t, grid.CorrectScore(0, -1))
	assert.InDelta(t, grid.Home[1]*grid.Away[2], grid.CorrectScore(1, 2), 1e-15)
}

func TestScoreGridEmptyIsDraw(t *testing.T) {
	grid := NewScoreGrid(nil, nil)
	assert.Equal(t, ThreeWayProbs{Draw: 1}, grid.MatchOdds())
	assert.Nil(t, grid.TotalGoals())
}
