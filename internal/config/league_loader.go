package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/fairline/internal/core/pricing"
	"github.com/charleschow/fairline/internal/league"
)

// LeagueFile is the on-disk layout of LEAGUES_PATH:
//
//	pricing:
//	  margin_percent: 6
//	leagues:
//	  - name: Premier League
//	    average_goals: 2.85
//	    draw_rate: 0.23
//	    aliases: [EPL]
type LeagueFile struct {
	Pricing yaml.Node        `yaml:"pricing"`
	Leagues []league.Profile `yaml:"leagues"`
}

// Pricing holds everything a quoter needs from configuration.
type Pricing struct {
	Registry *league.Registry
	Params   pricing.Params
}

// LoadPricing reads the league file and resolves pricing parameters as
// defaults, then the file's pricing block, then the environment.
func LoadPricing(path string) (Pricing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pricing{}, fmt.Errorf("read league file: %w", err)
	}
	return ParsePricing(data)
}

// ParsePricing is LoadPricing on an in-memory document.
func ParsePricing(data []byte) (Pricing, error) {
	var file LeagueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Pricing{}, fmt.Errorf("parse league file: %w", err)
	}

	params := pricing.DefaultParams()
	if !file.Pricing.IsZero() {
		if err := file.Pricing.Decode(&params); err != nil {
			return Pricing{}, fmt.Errorf("parse pricing block: %w", err)
		}
	}
	ApplyPricingEnv(&params)
	if err := params.Validate(); err != nil {
		return Pricing{}, err
	}

	reg, err := league.NewRegistry(file.Leagues)
	if err != nil {
		return Pricing{}, fmt.Errorf("build league registry: %w", err)
	}
	return Pricing{Registry: reg, Params: params}, nil
}
