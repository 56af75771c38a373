package objective

import (
	"context"
	"fmt"
	"math"

	"github.com/sgostarter/i/l"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/wavebuoy/internal/dynamo"
	"github.com/san-kum/wavebuoy/internal/physics"
	"github.com/san-kum/wavebuoy/internal/sim"
	"github.com/san-kum/wavebuoy/internal/wave"
)

type Candidate struct {
	Mass    float64 `json:"mass"`
	Damping float64 `json:"damping"`
}

func (c Candidate) Vector() []float64 { return []float64{c.Mass, c.Damping} }

func FromVector(x []float64) Candidate { return Candidate{Mass: x[0], Damping: x[1]} }

// Reason says why a candidate was scored the way it was.
type Reason int

const (
	Accepted Reason = iota
	OutOfBounds
	SimulationFailed
	DisplacementExceeded
	PTOForceExceeded
	EmptySteadyState
)

func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case OutOfBounds:
		return "out of bounds"
	case SimulationFailed:
		return "simulation failed"
	case DisplacementExceeded:
		return "displacement limit exceeded"
	case PTOForceExceeded:
		return "PTO force limit exceeded"
	case EmptySteadyState:
		return "empty steady-state window"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Evaluation is the full record behind a score. Times and States hold the
// evaluation grid when the simulation succeeded.
type Evaluation struct {
	Candidate       Candidate
	Score           float64
	PowerW          float64
	Reason          Reason
	Err             error
	Times           []float64
	States          []dynamo.State
	MaxDisplacement float64
	MaxPTOForce     float64
	Trajectory      sim.Trajectory
}

func (e Evaluation) Feasible() bool { return e.Reason == Accepted }

// Evaluator is immutable after construction; Evaluate may be called from
// many goroutines at once.
type Evaluator struct {
	cfg      Config
	field    *wave.Field
	params   physics.BuoyParameters
	features physics.Features
	sim      *sim.Simulator
	logger   l.Wrapper
}

// New rejects an invalid cfg so that Inspect never sees an evaluation grid
// it cannot build.
func New(cfg Config, field *wave.Field, params physics.BuoyParameters, features physics.Features, simulator *sim.Simulator, logger l.Wrapper) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if field == nil || simulator == nil {
		return nil, fmt.Errorf("%w: wave field and simulator are required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	return &Evaluator{
		cfg:      cfg,
		field:    field,
		params:   params,
		features: features,
		sim:      simulator,
		logger:   logger.WithFields(l.StringField(l.ClsKey, "objective")),
	}, nil
}

func (e *Evaluator) Config() Config                 { return e.cfg }
func (e *Evaluator) Params() physics.BuoyParameters { return e.params }
func (e *Evaluator) Field() *wave.Field             { return e.field }

func (e *Evaluator) Span() [2]float64 {
	return [2]float64{e.field.Start(), e.field.End()}
}

// Buoy builds the dynamics model for one candidate.
func (e *Evaluator) Buoy(c Candidate) *physics.Buoy {
	return physics.NewBuoy(e.params, c.Mass, c.Damping, e.field, e.features)
}

// Simulate runs the candidate from rest over the whole wave record.
func (e *Evaluator) Simulate(ctx context.Context, c Candidate) sim.Trajectory {
	return e.sim.Run(ctx, e.Buoy(c), e.Span(), dynamo.State{0, 0})
}

// Evaluate returns -mean electrical power, or exactly the penalty for an
// infeasible candidate.
func (e *Evaluator) Evaluate(ctx context.Context, c Candidate) float64 {
	return e.Inspect(ctx, c).Score
}

func (e *Evaluator) Inspect(ctx context.Context, c Candidate) Evaluation {
	ev := Evaluation{Candidate: c, Score: e.cfg.Penalty}

	if !e.cfg.MassBounds.Contains(c.Mass) || !e.cfg.DampingBounds.Contains(c.Damping) {
		ev.Reason = OutOfBounds
		return ev
	}

	tr := e.Simulate(ctx, c)
	ev.Trajectory = tr
	if !tr.Ok() {
		ev.Reason = SimulationFailed
		ev.Err = tr.Err()
		e.logger.WithFields(l.ErrorField(tr.Err()), l.StringField("candidate", c.String())).Warn("ODE solver failed")
		return ev
	}

	span := e.Span()
	ev.Times = floats.Span(make([]float64, e.cfg.EvalPoints), span[0], span[1])
	ev.States = tr.Solution().Sample(ev.Times)

	for _, x := range ev.States {
		if d := math.Abs(x[0]); d > ev.MaxDisplacement {
			ev.MaxDisplacement = d
		}
		if f := math.Abs(c.Damping * x[1]); f > ev.MaxPTOForce {
			ev.MaxPTOForce = f
		}
	}

	if ev.MaxDisplacement > e.cfg.MaxDisplacement {
		ev.Reason = DisplacementExceeded
		return ev
	}
	if ev.MaxPTOForce > e.cfg.MaxPTOForce {
		ev.Reason = PTOForceExceeded
		return ev
	}

	power, ok := e.steadyStatePower(c, ev.Times, ev.States)
	if !ok {
		ev.Reason = EmptySteadyState
		return ev
	}

	ev.PowerW = power
	ev.Score = -power
	ev.Reason = Accepted

	if power > 1e-3 {
		e.logger.WithFields(l.StringField("candidate", c.String()),
			l.StringField("power", fmt.Sprintf("%.1f kW", power/1000))).Info("candidate evaluated")
	}

	return ev
}

func (e *Evaluator) steadyStatePower(c Candidate, ts []float64, xs []dynamo.State) (float64, bool) {
	cutoff := ts[0] + e.cfg.SteadyStateCutoff
	eta := 1.0
	if e.cfg.PTOEfficiency {
		eta = e.params.EtaPTO
	}

	sum := 0.0
	n := 0
	for i, t := range ts {
		if t <= cutoff {
			continue
		}
		v := xs[i][1]
		sum += eta * c.Damping * v * v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (c Candidate) String() string {
	return fmt.Sprintf("m=%.0f kg, c=%.0f Ns/m", c.Mass, c.Damping)
}
