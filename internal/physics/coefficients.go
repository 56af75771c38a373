package physics

import "math"

const (
	DefaultGravity        = 9.81
	DefaultWaterDensity   = 1025.0
	DefaultAddedMassCoeff = 0.5
	DefaultDragCoeff      = 1.0
	DefaultPeakOmega      = 0.8
	DefaultDiameter       = 8.0
	DefaultDraft          = 6.0
	DefaultEtaPTO         = 0.90
)

// Environment holds the sea-water constants used by the coefficient formulas.
type Environment struct {
	Gravity        float64 `yaml:"gravity" json:"gravity"`
	WaterDensity   float64 `yaml:"water_density" json:"water_density"`
	AddedMassCoeff float64 `yaml:"added_mass_coeff" json:"added_mass_coeff"`
	DragCoeff      float64 `yaml:"drag_coeff" json:"drag_coeff"`
	PeakOmega      float64 `yaml:"peak_omega" json:"peak_omega"`
}

func DefaultEnvironment() Environment {
	return Environment{
		Gravity:        DefaultGravity,
		WaterDensity:   DefaultWaterDensity,
		AddedMassCoeff: DefaultAddedMassCoeff,
		DragCoeff:      DefaultDragCoeff,
		PeakOmega:      DefaultPeakOmega,
	}
}

// Geometry describes a vertical cylinder buoy.
type Geometry struct {
	Diameter float64 `yaml:"diameter" json:"diameter"`
	Draft    float64 `yaml:"draft" json:"draft"`
	EtaPTO   float64 `yaml:"eta_pto" json:"eta_pto"`
}

func DefaultGeometry() Geometry {
	return Geometry{Diameter: DefaultDiameter, Draft: DefaultDraft, EtaPTO: DefaultEtaPTO}
}

// BuoyParameters is an immutable snapshot of the derived coefficients.
type BuoyParameters struct {
	Diameter     float64 `json:"diameter_m"`
	Draft        float64 `json:"draft_m"`
	Area         float64 `json:"area_m2"`
	KHydrostatic float64 `json:"k_hydrostatic_npm"`
	AddedMass    float64 `json:"added_mass_kg"`
	CRadiation   float64 `json:"c_radiation_nspm"`
	KDrag        float64 `json:"k_drag_kgpm"`
	EtaPTO       float64 `json:"eta_pto"`
}

func WaterplaneArea(diameter float64) float64 {
	r := diameter / 2
	return math.Pi * r * r
}

func AddedMass(diameter, draft float64, env Environment) float64 {
	volume := WaterplaneArea(diameter) * draft
	return env.AddedMassCoeff * env.WaterDensity * volume
}

// RadiationDamping estimates the radiation coefficient at env.PeakOmega.
func RadiationDamping(diameter float64, env Environment) float64 {
	return env.WaterDensity * env.Gravity * diameter * diameter / (2 * env.PeakOmega)
}

func DragCoefficient(diameter float64, env Environment) float64 {
	return 0.5 * env.WaterDensity * env.DragCoeff * WaterplaneArea(diameter)
}

func NewBuoyParameters(g Geometry, env Environment) BuoyParameters {
	area := WaterplaneArea(g.Diameter)
	return BuoyParameters{
		Diameter:     g.Diameter,
		Draft:        g.Draft,
		Area:         area,
		KHydrostatic: env.WaterDensity * env.Gravity * area,
		AddedMass:    AddedMass(g.Diameter, g.Draft, env),
		CRadiation:   RadiationDamping(g.Diameter, env),
		KDrag:        DragCoefficient(g.Diameter, env),
		EtaPTO:       g.EtaPTO,
	}
}
