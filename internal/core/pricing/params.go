package pricing

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Params holds every tunable constant of the two pricing models.
type Params struct {
	// Outcome model
	HomeAdvantage   float64 `yaml:"home_advantage" json:"home_advantage" default:"0"`                              // rating points added to the home side
	DrawBlendWeight float64 `yaml:"draw_blend_weight" json:"draw_blend_weight" default:"0" validate:"gte=0,lte=1"` // weight on the league's observed draw rate
	DrawRateScale   float64 `yaml:"draw_rate_scale" json:"draw_rate_scale" default:"1.1" validate:"gte=0"`         // multiplier on the Davidson draw parameter
	GoalScaleSlope  float64 `yaml:"goal_scale_slope" json:"goal_scale_slope" default:"0.35" validate:"gte=0"`      // goal inflation per 400 rating points
	GoalScaleCap    float64 `yaml:"goal_scale_cap" json:"goal_scale_cap" default:"0.6" validate:"gte=0"`           // max goal inflation

	// Grid model
	TotalGoalsBeta float64 `yaml:"total_goals_beta" json:"total_goals_beta" default:"0.5"`          // lopsidedness → extra goals
	MaxGoals       int     `yaml:"max_goals" json:"max_goals" default:"15" validate:"gte=1,lte=60"` // grid bound per side

	// Quoting
	MarginPercent float64 `yaml:"margin_percent" json:"margin_percent" default:"5" validate:"gt=-100"`
}

var validate = validator.New()

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	var p Params
	if err := defaults.Set(&p); err != nil {
		panic(fmt.Sprintf("pricing: default params: %v", err))
	}
	return p
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid pricing params: %w", err)
	}
	return nil
}
