package sim

import "github.com/san-kum/wavebuoy/internal/dynamo"

type Method string

const (
	MethodRK45 Method = "rk45"
	MethodRK4  Method = "rk4"
	// MethodDOPRI5Fixed takes Dormand-Prince steps of FixedStep without
	// error control.
	MethodDOPRI5Fixed Method = "dopri5-fixed"
)

// Fixed reports whether m steps on a uniform FixedStep grid.
func (m Method) Fixed() bool {
	return m == MethodRK4 || m == MethodDOPRI5Fixed
}

type Config struct {
	Method    Method  `yaml:"method" json:"method"`
	RTol      float64 `yaml:"rtol" json:"rtol"`
	ATol      float64 `yaml:"atol" json:"atol"`
	MaxStep   float64 `yaml:"max_step" json:"max_step"`
	MinStep   float64 `yaml:"min_step" json:"min_step"`
	MaxSteps  int     `yaml:"max_steps" json:"max_steps"`
	FixedStep float64 `yaml:"fixed_step" json:"fixed_step"`
}

func DefaultConfig() Config {
	return Config{
		Method:    MethodRK45,
		RTol:      1e-3,
		ATol:      1e-6,
		MaxStep:   0.5,
		MinStep:   1e-12,
		MaxSteps:  1_000_000,
		FixedStep: 0.05,
	}
}

// Stats counts the work done by one run.
type Stats struct {
	Steps       int
	Rejected    int
	Evaluations int
}

// Solution is a trajectory that can be queried at any time in its span.
// Times outside the span are clamped to the nearest end.
type Solution interface {
	Start() float64
	End() float64
	At(t float64) dynamo.State
	Sample(ts []float64) []dynamo.State
}

type countingSystem struct {
	dynamo.System
	n int
}

func (c *countingSystem) Derive(x dynamo.State, t float64) dynamo.State {
	c.n++
	return c.System.Derive(x, t)
}
