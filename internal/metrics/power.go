package metrics

import (
	"math"

	"github.com/san-kum/wavebuoy/internal/dynamo"
)

// MeanPower averages eta*c*v^2 over samples taken after From.
type MeanPower struct {
	name    string
	damping float64
	eta     float64
	from    float64
	sum     float64
	samples int
}

func NewMeanPower(damping, eta, from float64) *MeanPower {
	return &MeanPower{name: "mean_power_w", damping: damping, eta: eta, from: from}
}

func (p *MeanPower) Name() string { return p.name }

func (p *MeanPower) Observe(x dynamo.State, t float64) {
	if t <= p.from || len(x) < 2 {
		return
	}
	p.sum += p.eta * p.damping * x[1] * x[1]
	p.samples++
}

func (p *MeanPower) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.sum / float64(p.samples)
}

func (p *MeanPower) Reset() {
	p.sum = 0
	p.samples = 0
}

// RMSVelocity is the root mean square heave velocity.
type RMSVelocity struct {
	name    string
	sumSq   float64
	samples int
}

func NewRMSVelocity() *RMSVelocity {
	return &RMSVelocity{name: "rms_velocity"}
}

func (r *RMSVelocity) Name() string { return r.name }

func (r *RMSVelocity) Observe(x dynamo.State, t float64) {
	if len(x) < 2 {
		return
	}
	r.sumSq += x[1] * x[1]
	r.samples++
}

func (r *RMSVelocity) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sumSq / float64(r.samples))
}

func (r *RMSVelocity) Reset() {
	r.sumSq = 0
	r.samples = 0
}
