package metrics

import (
	"math"

	"github.com/san-kum/wavebuoy/internal/dynamo"
)

// PeakDisplacement tracks max |z|.
type PeakDisplacement struct {
	name string
	peak float64
}

func NewPeakDisplacement() *PeakDisplacement {
	return &PeakDisplacement{name: "peak_displacement_m"}
}

func (p *PeakDisplacement) Name() string { return p.name }

func (p *PeakDisplacement) Observe(x dynamo.State, t float64) {
	if len(x) > 0 {
		p.peak = math.Max(p.peak, math.Abs(x[0]))
	}
}

func (p *PeakDisplacement) Value() float64 { return p.peak }
func (p *PeakDisplacement) Reset()         { p.peak = 0 }

// PeakPTOForce tracks max |c*v|.
type PeakPTOForce struct {
	name    string
	damping float64
	peak    float64
}

func NewPeakPTOForce(damping float64) *PeakPTOForce {
	return &PeakPTOForce{name: "peak_pto_force_n", damping: damping}
}

func (p *PeakPTOForce) Name() string { return p.name }

func (p *PeakPTOForce) Observe(x dynamo.State, t float64) {
	if len(x) > 1 {
		p.peak = math.Max(p.peak, math.Abs(p.damping*x[1]))
	}
}

func (p *PeakPTOForce) Value() float64 { return p.peak }
func (p *PeakPTOForce) Reset()         { p.peak = 0 }
