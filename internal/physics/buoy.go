package physics

import (
	"math"

	"github.com/san-kum/wavebuoy/internal/dynamo"
)

// ForcingField supplies the wave excitation force at time t for a given
// hydrostatic stiffness.
type ForcingField interface {
	ForcingAt(t, kHydrostatic float64) float64
}

// Features switches individual force terms on or off.
type Features struct {
	AddedMass        bool `yaml:"added_mass" json:"added_mass" envconfig:"ADDED_MASS"`
	RadiationDamping bool `yaml:"radiation_damping" json:"radiation_damping" envconfig:"RADIATION_DAMPING"`
	ViscousDrag      bool `yaml:"viscous_drag" json:"viscous_drag" envconfig:"VISCOUS_DRAG"`
}

func AllFeatures() Features {
	return Features{AddedMass: true, RadiationDamping: true, ViscousDrag: true}
}

// Buoy is the single-DOF heave model for one (mass, damping) candidate.
type Buoy struct {
	Params   BuoyParameters
	Mass     float64
	Damping  float64
	Forcing  ForcingField
	Features Features
}

func NewBuoy(params BuoyParameters, mass, damping float64, forcing ForcingField, features Features) *Buoy {
	return &Buoy{
		Params:   params,
		Mass:     mass,
		Damping:  damping,
		Forcing:  forcing,
		Features: features,
	}
}

func (b *Buoy) StateDim() int { return 2 }

// Forces is the breakdown of the vertical force on the buoy.
type Forces struct {
	Wave        float64
	Hydrostatic float64
	PTO         float64
	Radiation   float64
	Drag        float64
}

func (f Forces) Total() float64 {
	return f.Wave + f.Hydrostatic + f.PTO + f.Radiation + f.Drag
}

// DragForce is quadratic drag written as |v|*v so it always opposes v.
func DragForce(kDrag, v float64) float64 {
	return -kDrag * math.Abs(v) * v
}

func (b *Buoy) TotalMass() float64 {
	if b.Features.AddedMass {
		return b.Mass + b.Params.AddedMass
	}
	return b.Mass
}

func (b *Buoy) Forces(t, z, v float64) Forces {
	f := Forces{
		Hydrostatic: -b.Params.KHydrostatic * z,
		PTO:         -b.Damping * v,
	}
	if b.Forcing != nil {
		f.Wave = b.Forcing.ForcingAt(t, b.Params.KHydrostatic)
	}
	if b.Features.RadiationDamping {
		f.Radiation = -b.Params.CRadiation * v
	}
	if b.Features.ViscousDrag {
		f.Drag = DragForce(b.Params.KDrag, v)
	}
	return f
}

func (b *Buoy) Acceleration(t, z, v float64) float64 {
	return b.Forces(t, z, v).Total() / b.TotalMass()
}

func (b *Buoy) Derive(x dynamo.State, t float64) dynamo.State {
	z, v := x[0], x[1]
	return dynamo.State{v, b.Acceleration(t, z, v)}
}

// PTOForce is the instantaneous damper force magnitude |c*v|.
func (b *Buoy) PTOForce(v float64) float64 {
	return math.Abs(b.Damping * v)
}

// Energy is kinetic plus hydrostatic potential energy.
func (b *Buoy) Energy(x dynamo.State) float64 {
	z, v := x[0], x[1]
	return 0.5*b.TotalMass()*v*v + 0.5*b.Params.KHydrostatic*z*z
}

// NaturalPeriod is the undamped heave period 2*pi*sqrt(m/k).
func (b *Buoy) NaturalPeriod() float64 {
	return 2 * math.Pi * math.Sqrt(b.TotalMass()/b.Params.KHydrostatic)
}

func (b *Buoy) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":           b.Mass,
		"damping":        b.Damping,
		"total_mass":     b.TotalMass(),
		"k_hydro":        b.Params.KHydrostatic,
		"c_radiation":    b.Params.CRadiation,
		"k_drag":         b.Params.KDrag,
		"natural_period": b.NaturalPeriod(),
	}
}
