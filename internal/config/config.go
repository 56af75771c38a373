package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavebuoy/internal/objective"
	"github.com/san-kum/wavebuoy/internal/optim"
	"github.com/san-kum/wavebuoy/internal/physics"
	"github.com/san-kum/wavebuoy/internal/sim"
	"github.com/san-kum/wavebuoy/internal/wave"
)

// EnvPrefix prefixes every environment override, e.g. WAVEBUOY_MAX_STEP.
const EnvPrefix = "WAVEBUOY"

const (
	DefaultResampleStep  = 0.1
	DefaultOutputDir     = "runs"
	DefaultMassPoints    = 7
	DefaultDampingMin    = 1e5
	DefaultDampingMax    = 9e5
	DefaultDampingPoints = 8
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Data        DataConfig          `yaml:"data"`
	Preset      string              `yaml:"preset,omitempty"`
	Environment physics.Environment `yaml:"environment"`
	Geometry    physics.Geometry    `yaml:"geometry"`
	Features    physics.Features    `yaml:"features"`
	Objective   objective.Config    `yaml:"objective"`
	Solver      sim.Config          `yaml:"solver"`
	Optimizer   optim.DEConfig      `yaml:"optimizer"`
	Scan        ScanConfig          `yaml:"scan"`
	Output      OutputConfig        `yaml:"output"`
}

type DataConfig struct {
	Path         string       `yaml:"path"`
	Columns      wave.Columns `yaml:"columns"`
	ResampleStep float64      `yaml:"resample_step"`
}

// ScanConfig sets the lattice for the mass x damping sweep. Mass points
// span the objective mass bounds.
type ScanConfig struct {
	MassPoints    int     `yaml:"mass_points"`
	DampingMin    float64 `yaml:"damping_min"`
	DampingMax    float64 `yaml:"damping_max"`
	DampingPoints int     `yaml:"damping_points"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Columns:      wave.DefaultColumns(),
			ResampleStep: DefaultResampleStep,
		},
		Environment: physics.DefaultEnvironment(),
		Geometry:    physics.DefaultGeometry(),
		Features:    physics.AllFeatures(),
		Objective:   objective.DefaultConfig(),
		Solver:      sim.DefaultConfig(),
		Optimizer:   optim.DefaultDEConfig(),
		Scan: ScanConfig{
			MassPoints:    DefaultMassPoints,
			DampingMin:    DefaultDampingMin,
			DampingMax:    DefaultDampingMax,
			DampingPoints: DefaultDampingPoints,
		},
		Output: OutputConfig{Dir: DefaultOutputDir},
	}
}

// Load reads a YAML file over the defaults. A named preset in the file
// replaces the geometry unless the file also sets geometry explicitly.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Preset != "" {
		var probe struct {
			Geometry *physics.Geometry `yaml:"geometry"`
		}
		if err := yaml.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if probe.Geometry == nil {
			if err := cfg.ApplyPreset(cfg.Preset); err != nil {
				return nil, err
			}
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// envOverrides lists the settings that may come from the environment.
// Unset variables leave the loaded value alone.
type envOverrides struct {
	DataPath          string `split_words:"true"`
	OutputDir         string `split_words:"true"`
	Preset            string
	MaxDisplacement   float64 `split_words:"true"`
	MaxPTOForce       float64 `split_words:"true"`
	SteadyStateCutoff float64 `split_words:"true"`
	EvalPoints        int     `split_words:"true"`
	PTOEfficiency     bool    `split_words:"true"`
	MaxStep           float64 `split_words:"true"`
	Method            string
	Seed              int64
	MaxIter           int `split_words:"true"`
	PopSize           int `split_words:"true"`
	Workers           int
	Features          physics.Features
}

func (c *Config) ApplyEnv() error {
	o := envOverrides{
		DataPath:          c.Data.Path,
		OutputDir:         c.Output.Dir,
		MaxDisplacement:   c.Objective.MaxDisplacement,
		MaxPTOForce:       c.Objective.MaxPTOForce,
		SteadyStateCutoff: c.Objective.SteadyStateCutoff,
		EvalPoints:        c.Objective.EvalPoints,
		PTOEfficiency:     c.Objective.PTOEfficiency,
		MaxStep:           c.Solver.MaxStep,
		Method:            string(c.Solver.Method),
		Seed:              c.Optimizer.Seed,
		MaxIter:           c.Optimizer.MaxIter,
		PopSize:           c.Optimizer.PopSize,
		Workers:           c.Optimizer.Workers,
		Features:          c.Features,
	}
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}

	c.Data.Path = o.DataPath
	c.Output.Dir = o.OutputDir
	c.Objective.MaxDisplacement = o.MaxDisplacement
	c.Objective.MaxPTOForce = o.MaxPTOForce
	c.Objective.SteadyStateCutoff = o.SteadyStateCutoff
	c.Objective.EvalPoints = o.EvalPoints
	c.Objective.PTOEfficiency = o.PTOEfficiency
	c.Solver.MaxStep = o.MaxStep
	c.Solver.Method = sim.Method(o.Method)
	c.Optimizer.Seed = o.Seed
	c.Optimizer.MaxIter = o.MaxIter
	c.Optimizer.PopSize = o.PopSize
	c.Optimizer.Workers = o.Workers
	c.Features = o.Features

	if o.Preset != "" {
		return c.ApplyPreset(o.Preset)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Objective.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	env, geo, solver, de := c.Environment, c.Geometry, c.Solver, c.Optimizer
	switch {
	case env.Gravity <= 0 || env.WaterDensity <= 0:
		return fmt.Errorf("%w: gravity %g, water density %g", ErrInvalid, env.Gravity, env.WaterDensity)
	case env.AddedMassCoeff < 0 || env.DragCoeff < 0 || env.PeakOmega <= 0:
		return fmt.Errorf("%w: hydrodynamic coefficients", ErrInvalid)
	case geo.Diameter <= 0 || geo.Draft <= 0:
		return fmt.Errorf("%w: geometry %gx%g m", ErrInvalid, geo.Diameter, geo.Draft)
	case geo.EtaPTO <= 0 || geo.EtaPTO > 1:
		return fmt.Errorf("%w: PTO efficiency %g", ErrInvalid, geo.EtaPTO)
	case solver.Method != sim.MethodRK45 && !solver.Method.Fixed():
		return fmt.Errorf("%w: unknown method %q", ErrInvalid, solver.Method)
	case solver.RTol <= 0 || solver.ATol <= 0:
		return fmt.Errorf("%w: tolerances rtol=%g atol=%g", ErrInvalid, solver.RTol, solver.ATol)
	case solver.MaxStep <= 0 || solver.MaxSteps <= 0:
		return fmt.Errorf("%w: max step %g, max steps %d", ErrInvalid, solver.MaxStep, solver.MaxSteps)
	case solver.Method.Fixed() && solver.FixedStep <= 0:
		return fmt.Errorf("%w: fixed step %g", ErrInvalid, solver.FixedStep)
	case de.PopSize < 1 || de.MaxIter < 0:
		return fmt.Errorf("%w: popsize %d, maxiter %d", ErrInvalid, de.PopSize, de.MaxIter)
	case de.Mutation[0] < 0 || de.Mutation[1] < de.Mutation[0] || de.Mutation[1] > 2:
		return fmt.Errorf("%w: mutation %v", ErrInvalid, de.Mutation)
	case de.Recombination < 0 || de.Recombination > 1:
		return fmt.Errorf("%w: recombination %g", ErrInvalid, de.Recombination)
	case de.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, de.Workers)
	case c.Data.ResampleStep <= 0:
		return fmt.Errorf("%w: resample step %g", ErrInvalid, c.Data.ResampleStep)
	case c.Data.Columns.Time == "" || c.Data.Columns.Elevation == "":
		return fmt.Errorf("%w: data columns", ErrInvalid)
	case c.Scan.MassPoints < 1 || c.Scan.DampingPoints < 1 || c.Scan.DampingMin > c.Scan.DampingMax:
		return fmt.Errorf("%w: scan lattice", ErrInvalid)
	}
	return nil
}

// Buoy derives the hydrodynamic coefficients for the configured geometry.
func (c *Config) Buoy() physics.BuoyParameters {
	return physics.NewBuoyParameters(c.Geometry, c.Environment)
}

// Bounds returns the optimizer search box in (mass, damping) order.
func (c *Config) Bounds() []optim.Range {
	return []optim.Range{
		{Min: c.Objective.MassBounds.Min, Max: c.Objective.MassBounds.Max},
		{Min: c.Objective.DampingBounds.Min, Max: c.Objective.DampingBounds.Max},
	}
}

// ScanRanges returns the sweep lattice in (mass, damping) order.
func (c *Config) ScanRanges() [][]float64 {
	return [][]float64{
		optim.Linspace(c.Objective.MassBounds.Min, c.Objective.MassBounds.Max, c.Scan.MassPoints),
		optim.Linspace(c.Scan.DampingMin, c.Scan.DampingMax, c.Scan.DampingPoints),
	}
}
