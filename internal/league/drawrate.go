package league

import "math"

const (
	defaultDrawRate = 0.27
	minDrawRate     = 0.20
	maxDrawRate     = 0.35
)

// Standing is one team's row of a league table.
type Standing struct {
	Team   string `yaml:"team" json:"team"`
	Played int    `yaml:"played" json:"played"`
	Points int    `yaml:"points" json:"points"`
}

// SuggestedDrawRate estimates a league's draw frequency from its table.
//
// Each team is credited with as many wins as its points allow and the
// remaining points as draws. The aggregate rate is clamped to
// [0.20, 0.35]; an empty or pointless table gives 0.27.
func SuggestedDrawRate(table []Standing) float64 {
	var matches, draws int
	for _, row := range table {
		if row.Played <= 0 || row.Points < 0 {
			continue
		}
		wins := min(row.Points/3, row.Played)
		d := min(row.Points-3*wins, row.Played-wins)
		matches += row.Played
		draws += d
	}
	if matches == 0 {
		return defaultDrawRate
	}
	rate := float64(draws) / float64(matches)
	return math.Max(minDrawRate, math.Min(maxDrawRate, rate))
}
