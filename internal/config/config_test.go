package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/wavebuoy/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Objective.Penalty != 1e10 {
		t.Errorf("expected penalty 1e10, got %g", cfg.Objective.Penalty)
	}
	if cfg.Solver.MaxStep != 0.5 {
		t.Errorf("expected max step 0.5, got %g", cfg.Solver.MaxStep)
	}
	if cfg.Data.Columns.Time != "Time_s" {
		t.Errorf("expected time column Time_s, got %s", cfg.Data.Columns.Time)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("reference")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Geometry.Diameter != 8 {
		t.Errorf("expected diameter 8, got %f", p.Geometry.Diameter)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"compact", "large", "reference"}, ListPresets())
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyPreset("large"))
	assert.Equal(t, 12.0, cfg.Geometry.Diameter)
	assert.Equal(t, "large", cfg.Preset)

	assert.ErrorIs(t, cfg.ApplyPreset("tiny"), ErrInvalid)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Data.Path = "waves.csv"
	cfg.Objective.MaxDisplacement = 2.5
	cfg.Optimizer.Seed = 42
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yml := "objective:\n  max_pto_force: 2.0e6\nsolver:\n  method: rk4\npreset: compact\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.0e6, cfg.Objective.MaxPTOForce)
	assert.Equal(t, 3.5, cfg.Objective.MaxDisplacement)
	assert.Equal(t, sim.MethodRK4, cfg.Solver.Method)
	assert.Equal(t, 5.0, cfg.Geometry.Diameter)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("objective: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WAVEBUOY_MAX_DISPLACEMENT", "2.25")
	t.Setenv("WAVEBUOY_METHOD", "rk4")
	t.Setenv("WAVEBUOY_SEED", "7")
	t.Setenv("WAVEBUOY_FEATURES_VISCOUS_DRAG", "false")
	t.Setenv("WAVEBUOY_PRESET", "compact")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 2.25, cfg.Objective.MaxDisplacement)
	assert.Equal(t, sim.MethodRK4, cfg.Solver.Method)
	assert.EqualValues(t, 7, cfg.Optimizer.Seed)
	assert.False(t, cfg.Features.ViscousDrag)
	assert.True(t, cfg.Features.AddedMass)
	assert.Equal(t, 5.0, cfg.Geometry.Diameter)
	// untouched
	assert.Equal(t, 1.5e6, cfg.Objective.MaxPTOForce)
}

func TestApplyEnvBadValue(t *testing.T) {
	t.Setenv("WAVEBUOY_EVAL_POINTS", "many")
	assert.Error(t, DefaultConfig().ApplyEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"objective", func(c *Config) { c.Objective.Penalty = 0 }},
		{"gravity", func(c *Config) { c.Environment.Gravity = 0 }},
		{"geometry", func(c *Config) { c.Geometry.Draft = -1 }},
		{"efficiency", func(c *Config) { c.Geometry.EtaPTO = 1.5 }},
		{"method", func(c *Config) { c.Solver.Method = "euler" }},
		{"fixed step", func(c *Config) {
			c.Solver.Method = sim.MethodDOPRI5Fixed
			c.Solver.FixedStep = 0
		}},
		{"tolerance", func(c *Config) { c.Solver.RTol = 0 }},
		{"max step", func(c *Config) { c.Solver.MaxStep = 0 }},
		{"popsize", func(c *Config) { c.Optimizer.PopSize = 0 }},
		{"mutation", func(c *Config) { c.Optimizer.Mutation = [2]float64{1, 0.5} }},
		{"recombination", func(c *Config) { c.Optimizer.Recombination = 2 }},
		{"resample", func(c *Config) { c.Data.ResampleStep = 0 }},
		{"columns", func(c *Config) { c.Data.Columns.Time = "" }},
		{"scan", func(c *Config) { c.Scan.MassPoints = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestScanRanges(t *testing.T) {
	r := DefaultConfig().ScanRanges()
	require.Len(t, r, 2)
	assert.Len(t, r[0], 7)
	assert.Equal(t, 2e4, r[0][0])
	assert.Equal(t, 2e5, r[0][6])
	assert.Equal(t, 1e5, r[1][0])
	assert.Equal(t, 9e5, r[1][7])
}
