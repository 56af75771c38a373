package sim

import (
	"sort"

	"github.com/san-kum/wavebuoy/internal/dynamo"
	"github.com/san-kum/wavebuoy/internal/integrators"
)

// Trajectory is the outcome of one run: either a Solution or the error
// that stopped integration. Callers must check Ok before using Solution.
type Trajectory struct {
	sol   Solution
	err   error
	Stats Stats
}

func Succeeded(sol Solution, stats Stats) Trajectory {
	return Trajectory{sol: sol, Stats: stats}
}

func Failed(err error, stats Stats) Trajectory {
	return Trajectory{err: err, Stats: stats}
}

func (tr Trajectory) Ok() bool { return tr.err == nil && tr.sol != nil }

// Solution returns nil for a failed trajectory.
func (tr Trajectory) Solution() Solution { return tr.sol }

func (tr Trajectory) Err() error { return tr.err }

// denseSolution chains the continuous extensions of accepted RK45 steps.
type denseSolution struct {
	start, end float64
	steps      []*integrators.Attempt
}

func (d *denseSolution) Start() float64 { return d.start }
func (d *denseSolution) End() float64   { return d.end }

func (d *denseSolution) At(t float64) dynamo.State {
	if t <= d.start {
		return d.steps[0].X0.Clone()
	}
	if t >= d.end {
		return d.steps[len(d.steps)-1].X1.Clone()
	}
	i := sort.Search(len(d.steps), func(i int) bool { return d.steps[i].End() >= t })
	if i == len(d.steps) {
		i = len(d.steps) - 1
	}
	return d.steps[i].Interpolate(t)
}

func (d *denseSolution) Sample(ts []float64) []dynamo.State {
	out := make([]dynamo.State, len(ts))
	for i, t := range ts {
		out[i] = d.At(t)
	}
	return out
}

// gridSolution interpolates linearly between fixed-step states.
type gridSolution struct {
	times  []float64
	states []dynamo.State
}

func (g *gridSolution) Start() float64 { return g.times[0] }
func (g *gridSolution) End() float64   { return g.times[len(g.times)-1] }

func (g *gridSolution) At(t float64) dynamo.State {
	n := len(g.times)
	if t <= g.times[0] {
		return g.states[0].Clone()
	}
	if t >= g.times[n-1] {
		return g.states[n-1].Clone()
	}
	i := sort.SearchFloat64s(g.times, t)
	if g.times[i] == t {
		return g.states[i].Clone()
	}
	t0, t1 := g.times[i-1], g.times[i]
	w := (t - t0) / (t1 - t0)
	return g.states[i-1].Scale(1 - w).Add(g.states[i].Scale(w))
}

func (g *gridSolution) Sample(ts []float64) []dynamo.State {
	out := make([]dynamo.State, len(ts))
	for i, t := range ts {
		out[i] = g.At(t)
	}
	return out
}
