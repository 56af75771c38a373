package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/wavebuoy/internal/dynamo"
	"github.com/san-kum/wavebuoy/internal/integrators"
)

// Simulator integrates a System over a time span. It holds only its
// configuration and is safe for concurrent use.
type Simulator struct {
	cfg Config
}

func New(cfg Config) *Simulator {
	return &Simulator{cfg: cfg}
}

func (s *Simulator) Config() Config { return s.cfg }

// Run never returns an error directly: every failure, including a panic
// inside sys.Derive, comes back as a failed Trajectory.
func (s *Simulator) Run(ctx context.Context, sys dynamo.System, span [2]float64, y0 dynamo.State) (tr Trajectory) {
	if err := s.validate(sys, span, y0); err != nil {
		return Failed(err, Stats{})
	}

	counted := &countingSystem{System: sys}
	var stats Stats
	var step int
	t := span[0]

	defer func() {
		if r := recover(); r != nil {
			stats.Evaluations = counted.n
			tr = Failed(&dynamo.SimulationError{
				Step:    step,
				Time:    t,
				Wrapped: fmt.Errorf("%w: %v", dynamo.ErrDerivativePanic, r),
			}, stats)
		}
	}()

	var sol Solution
	var err error
	switch s.cfg.Method {
	case MethodRK4:
		sol, err = s.runFixed(ctx, integrators.NewRK4(), counted, span, y0, &stats, &step, &t)
	case MethodDOPRI5Fixed:
		sol, err = s.runFixed(ctx, integrators.NewRK45(), counted, span, y0, &stats, &step, &t)
	default:
		sol, err = s.runAdaptive(ctx, counted, span, y0, &stats, &step, &t)
	}
	stats.Evaluations = counted.n
	if err != nil {
		return Failed(err, stats)
	}
	return Succeeded(sol, stats)
}

func (s *Simulator) validate(sys dynamo.System, span [2]float64, y0 dynamo.State) error {
	if math.IsNaN(span[0]) || math.IsNaN(span[1]) || !(span[1] > span[0]) {
		return fmt.Errorf("%w: [%g, %g]", dynamo.ErrInvalidSpan, span[0], span[1])
	}
	if len(y0) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d components, system expects %d",
			dynamo.ErrDimensionMismatch, len(y0), sys.StateDim())
	}
	if !y0.IsValid() {
		return fmt.Errorf("initial %w", dynamo.ErrInvalidState)
	}
	return nil
}

func (s *Simulator) runAdaptive(ctx context.Context, sys dynamo.System, span [2]float64, y0 dynamo.State, stats *Stats, step *int, t *float64) (Solution, error) {
	rk := integrators.NewRK45()
	if s.cfg.RTol > 0 {
		rk.RTol = s.cfg.RTol
	}
	if s.cfg.ATol > 0 {
		rk.ATol = s.cfg.ATol
	}

	tEnd := span[1]
	maxStep := s.cfg.MaxStep
	if maxStep <= 0 {
		maxStep = math.Inf(1)
	}

	x := y0.Clone()
	k1 := sys.Derive(x, *t)
	if !k1.IsValid() {
		return nil, s.fail(dynamo.ErrInvalidState, *step, *t, x)
	}

	h := math.Min(rk.InitialStep(sys, x, k1, *t), maxStep)
	steps := make([]*integrators.Attempt, 0, 64)
	rejected := false

	for *t < tEnd {
		if err := ctx.Err(); err != nil {
			return nil, s.fail(fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err), *step, *t, x)
		}
		if *step >= s.cfg.MaxSteps && s.cfg.MaxSteps > 0 {
			return nil, s.fail(dynamo.ErrMaxSteps, *step, *t, x)
		}

		minStep := math.Max(s.cfg.MinStep, 10*(math.Nextafter(*t, math.Inf(1))-*t))
		if h > maxStep {
			h = maxStep
		}
		if h < minStep {
			return nil, s.fail(dynamo.ErrStepTooSmall, *step, *t, x)
		}

		last := false
		if *t+h >= tEnd {
			h = tEnd - *t
			last = true
		}

		a := rk.Try(sys, x, k1, *t, h)
		*step++

		if a.ErrNorm < 1 && a.X1.IsValid() {
			scale := rk.Scale(a.ErrNorm)
			if rejected {
				scale = math.Min(1, scale)
			}
			steps = append(steps, a)
			stats.Steps++
			x, k1 = a.X1, a.K7
			if last {
				*t = tEnd
			} else {
				*t = a.End()
			}
			h *= scale
			rejected = false
			continue
		}

		stats.Rejected++
		h *= rk.Scale(a.ErrNorm)
		rejected = true
	}

	return &denseSolution{start: span[0], end: tEnd, steps: steps}, nil
}

func (s *Simulator) runFixed(ctx context.Context, integ dynamo.Integrator, sys dynamo.System, span [2]float64, y0 dynamo.State, stats *Stats, step *int, t *float64) (Solution, error) {
	dt := s.cfg.FixedStep
	if dt <= 0 {
		dt = DefaultConfig().FixedStep
	}
	n := int(math.Ceil((span[1] - span[0]) / dt))
	if s.cfg.MaxSteps > 0 && n > s.cfg.MaxSteps {
		return nil, s.fail(dynamo.ErrMaxSteps, 0, *t, y0)
	}

	times := make([]float64, 0, n+1)
	states := make([]dynamo.State, 0, n+1)

	x := y0.Clone()
	times = append(times, *t)
	states = append(states, x.Clone())

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, s.fail(fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err), *step, *t, x)
		}

		h := dt
		next := span[0] + float64(i+1)*dt
		if i == n-1 {
			next = span[1]
			h = next - *t
		}

		x = integ.Step(sys, x, *t, h)
		*step++
		*t = next

		if !x.IsValid() {
			return nil, s.fail(dynamo.ErrInvalidState, *step, *t, x)
		}

		times = append(times, *t)
		states = append(states, x.Clone())
		stats.Steps++
	}

	return &gridSolution{times: times, states: states}, nil
}

func (s *Simulator) fail(err error, step int, t float64, x dynamo.State) error {
	return &dynamo.SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: err}
}
