package objective_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/wavebuoy/internal/objective"
)

func TestEvaluateOutOfBounds(t *testing.T) {
	cfg := objective.DefaultConfig()
	ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))
	ctx := context.Background()

	tests := []struct {
		name string
		c    objective.Candidate
	}{
		{"mass below", objective.Candidate{Mass: 1e4, Damping: 2e5}},
		{"mass above", objective.Candidate{Mass: 3e5, Damping: 2e5}},
		{"damping below", objective.Candidate{Mass: 1e5, Damping: 5e3}},
		{"damping above", objective.Candidate{Mass: 1e5, Damping: 2e6}},
		{"nan mass", objective.Candidate{Mass: math.NaN(), Damping: 2e5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, cfg.Penalty, ev.Evaluate(ctx, tt.c))
			assert.Equal(t, objective.OutOfBounds, ev.Inspect(ctx, tt.c).Reason)
		})
	}
}

func TestEvaluateBoundsInclusive(t *testing.T) {
	cfg := objective.DefaultConfig()
	ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))

	got := ev.Inspect(context.Background(), objective.Candidate{Mass: cfg.MassBounds.Max, Damping: cfg.DampingBounds.Min})
	assert.NotEqual(t, objective.OutOfBounds, got.Reason)
}

func TestEvaluateIdempotent(t *testing.T) {
	ev := newEvaluator(objective.DefaultConfig(), sineSeries(1, 10, 200, 0.1))
	c := objective.Candidate{Mass: 1e5, Damping: 2e5}

	first := ev.Evaluate(context.Background(), c)
	second := ev.Evaluate(context.Background(), c)
	assert.Equal(t, math.Float64bits(first), math.Float64bits(second))
}

func TestEvaluateZeroDamping(t *testing.T) {
	cfg := objective.DefaultConfig()
	cfg.DampingBounds.Min = 0
	ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))

	got := ev.Inspect(context.Background(), objective.Candidate{Mass: 1e5, Damping: 0})
	require.Equal(t, objective.Accepted, got.Reason)
	assert.InDelta(t, 0, got.PowerW, 1e-9)
	assert.InDelta(t, 0, got.Score, 1e-9)
}

func TestEvaluateDisplacementLimit(t *testing.T) {
	cfg := objective.DefaultConfig()
	cfg.MaxDisplacement = 0.1
	ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))

	got := ev.Inspect(context.Background(), objective.Candidate{Mass: 1e5, Damping: 2e5})
	assert.Equal(t, objective.DisplacementExceeded, got.Reason)
	assert.Equal(t, cfg.Penalty, got.Score)
	assert.Greater(t, got.MaxDisplacement, 0.1)
}

func TestEvaluateEmptySteadyState(t *testing.T) {
	cfg := objective.DefaultConfig()
	cfg.SteadyStateCutoff = 500
	ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))

	got := ev.Inspect(context.Background(), objective.Candidate{Mass: 1e5, Damping: 2e5})
	assert.Equal(t, objective.EmptySteadyState, got.Reason)
	assert.Equal(t, cfg.Penalty, got.Score)
}

func TestEvaluateEfficiencyToggle(t *testing.T) {
	series := sineSeries(1, 10, 200, 0.1)
	c := objective.Candidate{Mass: 1e5, Damping: 2e5}

	withEta := objective.DefaultConfig()
	withoutEta := objective.DefaultConfig()
	withoutEta.PTOEfficiency = false

	a := newEvaluator(withEta, series).Inspect(context.Background(), c)
	b := newEvaluator(withoutEta, series).Inspect(context.Background(), c)
	require.True(t, a.Feasible())
	require.True(t, b.Feasible())

	eta := newEvaluator(withEta, series).Params().EtaPTO
	assert.InDelta(t, eta*b.PowerW, a.PowerW, 1e-9*b.PowerW)
}

func TestEvaluateSamplesGrid(t *testing.T) {
	cfg := objective.DefaultConfig()
	ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))

	got := ev.Inspect(context.Background(), objective.Candidate{Mass: 1e5, Damping: 2e5})
	require.Len(t, got.Times, cfg.EvalPoints)
	require.Len(t, got.States, cfg.EvalPoints)
	assert.Equal(t, 0.0, got.Times[0])
	assert.Equal(t, 200.0, got.Times[len(got.Times)-1])
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, objective.DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*objective.Config)
	}{
		{"reversed mass", func(c *objective.Config) { c.MassBounds = objective.Bounds{Min: 5, Max: 1} }},
		{"negative damping", func(c *objective.Config) { c.DampingBounds.Min = -1 }},
		{"zero displacement", func(c *objective.Config) { c.MaxDisplacement = 0 }},
		{"zero force", func(c *objective.Config) { c.MaxPTOForce = 0 }},
		{"negative cutoff", func(c *objective.Config) { c.SteadyStateCutoff = -1 }},
		{"one point", func(c *objective.Config) { c.EvalPoints = 1 }},
		{"zero penalty", func(c *objective.Config) { c.Penalty = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := objective.DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), objective.ErrInvalidConfig)
		})
	}
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "accepted", objective.Accepted.String())
	assert.Equal(t, "PTO force limit exceeded", objective.PTOForceExceeded.String())
	assert.Equal(t, "Reason(42)", objective.Reason(42).String())
}
