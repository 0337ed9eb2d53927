package league

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charleschow/fairline/internal/core/pricing"
)

// ErrUnknownLeague is returned by Lookup for names with no profile.
var ErrUnknownLeague = errors.New("unknown league")

// Profile is the aggregate scoring context of one competition.
type Profile struct {
	Name         string     `yaml:"name" json:"name"`
	Country      string     `yaml:"country" json:"country,omitempty"`
	AverageGoals float64    `yaml:"average_goals" json:"average_goals"`
	DrawRate     float64    `yaml:"draw_rate" json:"draw_rate,omitempty"`
	Aliases      []string   `yaml:"aliases" json:"-"`
	Table        []Standing `yaml:"table" json:"-"`
}

// Context converts the profile into the pricing engine's input.
func (p Profile) Context() pricing.League {
	return pricing.League{AverageGoals: p.AverageGoals, DrawRate: p.DrawRate}
}

// Registry resolves league names, in any spelling the aliases allow, to
// profiles. It is read-only after construction.
type Registry struct {
	profiles map[string]Profile
	aliases  map[string]string
}

// NewRegistry indexes profiles by normalized name. A profile without a draw
// rate but with a table gets SuggestedDrawRate(table).
func NewRegistry(profiles []Profile) (*Registry, error) {
	r := &Registry{
		profiles: make(map[string]Profile, len(profiles)),
		aliases:  make(map[string]string),
	}
	for _, p := range profiles {
		key := Normalize(p.Name, nil)
		if key == "" {
			return nil, fmt.Errorf("league profile with empty name")
		}
		if _, dup := r.profiles[key]; dup {
			return nil, fmt.Errorf("duplicate league %q", p.Name)
		}
		if p.AverageGoals < 0 {
			return nil, fmt.Errorf("league %q: negative average_goals %v", p.Name, p.AverageGoals)
		}
		if p.DrawRate == 0 && len(p.Table) > 0 {
			p.DrawRate = SuggestedDrawRate(p.Table)
		}
		r.profiles[key] = p

		for _, alias := range p.Aliases {
			a := Normalize(alias, nil)
			if a == "" || a == key {
				continue
			}
			if prev, taken := r.aliases[a]; taken && prev != key {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", alias, prev, key)
			}
			r.aliases[a] = key
		}
	}
	return r, nil
}

// Lookup returns the profile for name.
func (r *Registry) Lookup(name string) (Profile, error) {
	p, ok := r.profiles[Normalize(name, r.aliases)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownLeague, name)
	}
	return p, nil
}

// Names lists the canonical league names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for _, p := range r.profiles {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
