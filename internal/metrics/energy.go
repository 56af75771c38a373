package metrics

import (
	"math"

	"github.com/san-kum/wavebuoy/internal/dynamo"
)

// AbsorbedEnergy integrates the PTO power eta*c*v^2 over samples after From
// with the trapezoid rule. The result is in joules.
type AbsorbedEnergy struct {
	name    string
	damping float64
	eta     float64
	from    float64

	total  float64
	prevT  float64
	prevP  float64
	primed bool
}

func NewAbsorbedEnergy(damping, eta, from float64) *AbsorbedEnergy {
	return &AbsorbedEnergy{name: "absorbed_energy_j", damping: damping, eta: eta, from: from}
}

func (a *AbsorbedEnergy) Name() string { return a.name }

func (a *AbsorbedEnergy) Observe(x dynamo.State, t float64) {
	if t <= a.from || len(x) < 2 {
		return
	}
	p := a.eta * a.damping * x[1] * x[1]
	if a.primed {
		a.total += 0.5 * (p + a.prevP) * (t - a.prevT)
	}
	a.prevT, a.prevP, a.primed = t, p, true
}

func (a *AbsorbedEnergy) Value() float64 { return a.total }

func (a *AbsorbedEnergy) Reset() {
	a.total = 0
	a.primed = false
}

// PeakEnergy is the largest mechanical energy held by the oscillation.
type PeakEnergy struct {
	name string
	dyn  dynamo.Energy
	peak float64
}

func NewPeakEnergy(dyn dynamo.Energy) *PeakEnergy {
	return &PeakEnergy{name: "peak_energy_j", dyn: dyn}
}

func (e *PeakEnergy) Name() string { return e.name }

func (e *PeakEnergy) Observe(x dynamo.State, t float64) {
	e.peak = math.Max(e.peak, e.dyn.Energy(x))
}

func (e *PeakEnergy) Value() float64 { return e.peak }

func (e *PeakEnergy) Reset() { e.peak = 0 }

// Collect resets ms, feeds them every sample and returns their values by
// name.
func Collect(ts []float64, states []dynamo.State, ms ...dynamo.Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i, x := range states {
		for _, m := range ms {
			m.Observe(x, ts[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
