package objective

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("objective: invalid config")

type Bounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

type Config struct {
	MassBounds        Bounds  `yaml:"mass_bounds" json:"mass_bounds"`
	DampingBounds     Bounds  `yaml:"damping_bounds" json:"damping_bounds"`
	MaxDisplacement   float64 `yaml:"max_displacement" json:"max_displacement"`
	MaxPTOForce       float64 `yaml:"max_pto_force" json:"max_pto_force"`
	SteadyStateCutoff float64 `yaml:"steady_state_cutoff" json:"steady_state_cutoff"`
	EvalPoints        int     `yaml:"eval_points" json:"eval_points"`
	Penalty           float64 `yaml:"penalty" json:"penalty"`
	PTOEfficiency     bool    `yaml:"pto_efficiency" json:"pto_efficiency"`
}

func DefaultConfig() Config {
	return Config{
		MassBounds:        Bounds{Min: 2e4, Max: 2e5},
		DampingBounds:     Bounds{Min: 1e4, Max: 1e6},
		MaxDisplacement:   3.5,
		MaxPTOForce:       1.5e6,
		SteadyStateCutoff: 50,
		EvalPoints:        2000,
		Penalty:           1e10,
		PTOEfficiency:     true,
	}
}

func (c Config) Validate() error {
	switch {
	case !(c.MassBounds.Min <= c.MassBounds.Max) || c.MassBounds.Min <= 0:
		return fmt.Errorf("%w: mass bounds [%g, %g]", ErrInvalidConfig, c.MassBounds.Min, c.MassBounds.Max)
	case !(c.DampingBounds.Min <= c.DampingBounds.Max) || c.DampingBounds.Min < 0:
		return fmt.Errorf("%w: damping bounds [%g, %g]", ErrInvalidConfig, c.DampingBounds.Min, c.DampingBounds.Max)
	case c.MaxDisplacement <= 0:
		return fmt.Errorf("%w: max displacement %g", ErrInvalidConfig, c.MaxDisplacement)
	case c.MaxPTOForce <= 0:
		return fmt.Errorf("%w: max PTO force %g", ErrInvalidConfig, c.MaxPTOForce)
	case c.SteadyStateCutoff < 0:
		return fmt.Errorf("%w: steady-state cutoff %g", ErrInvalidConfig, c.SteadyStateCutoff)
	case c.EvalPoints < 2:
		return fmt.Errorf("%w: eval points %d", ErrInvalidConfig, c.EvalPoints)
	case c.Penalty <= 0:
		return fmt.Errorf("%w: penalty %g", ErrInvalidConfig, c.Penalty)
	}
	return nil
}
