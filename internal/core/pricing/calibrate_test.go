package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveGoalShareHitsTarget(t *testing.T) {
	for _, pi := range []float64{0.15, 0.3, 0.5, 0.62, 0.8, 0.93} {
		for _, lambda := range []float64{1.2, 2.6, 4.1} {
			s, home, away := SolveGoalShare(pi, lambda, 15)
			assert.True(t, s > 0 && s < 1)

			got := NewScoreGrid(home, away).MatchOdds()
			assert.InDelta(t, pi, got.Home/(got.Home+got.Away), 1e-6, "pi=%v lambda=%v", pi, lambda)
		}
	}
}

func TestSolveGoalShareEvenSplit(t *testing.T) {
	s, home, away := SolveGoalShare(0.5, 2.6, 15)
	assert.InDelta(t, 0.5, s, 1e-6)
	assert.InDeltaSlice(t, home, away, 1e-6)
}

func TestSolveGoalShareShortCircuits(t *testing.T) {
	cases := []struct {
		name   string
		pi     float64
		lambda float64
	}{
		{"zero lambda", 0.7, 0},
		{"negative lambda", 0.7, -1},
		{"target at zero", 0, 2.6},
		{"target at one", 1, 2.6},
		{"target above one", 1.4, 2.6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, home, away := SolveGoalShare(tc.pi, tc.lambda, 10)
			assert.Equal(t, 0.5, s)
			assert.Len(t, home, 11)
			assert.Len(t, away, 11)
		})
	}
}

func TestSolveGoalShareUnreachableTarget(t *testing.T) {
	s, _, _ := SolveGoalShare(1-1e-12, 2.6, 15)
	assert.Equal(t, 1-shareEps, s)

	s, _, _ = SolveGoalShare(1e-12, 2.6, 15)
	assert.Equal(t, shareEps, s)
}

func TestSolveGoalShareMonotone(t *testing.T) {
	prev := 0.0
	for pi := 0.05; pi < 0.96; pi += 0.05 {
		s, _, _ := SolveGoalShare(pi, 2.6, 15)
		assert.Greater(t, s, prev)
		prev = s
	}
}
