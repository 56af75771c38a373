package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/wavebuoy/internal/dynamo"
)

type spring struct{ k, m float64 }

func (s spring) Energy(x dynamo.State) float64 {
	return 0.5*s.m*x[1]*x[1] + 0.5*s.k*x[0]*x[0]
}

func TestAbsorbedEnergy(t *testing.T) {
	const (
		damping = 2e5
		eta     = 0.9
		omega   = 2 * math.Pi / 10
		from    = 20.0
	)
	m := NewAbsorbedEnergy(damping, eta, from)

	// v = sin(omega t) over five whole periods after the cutoff
	n := 5001
	for i := 0; i < n; i++ {
		tm := 70 * float64(i) / float64(n-1)
		m.Observe(dynamo.State{0, math.Sin(omega * tm)}, tm)
	}

	// the window (20, 70] holds five periods, so the mean of v^2 is 1/2
	want := eta * damping * 0.5 * (70 - from)
	if math.Abs(m.Value()-want) > 1e-3*want {
		t.Errorf("absorbed energy = %f, want %f", m.Value(), want)
	}
}

func TestAbsorbedEnergyMatchesMeanPower(t *testing.T) {
	ts := []float64{0, 10, 20, 30, 40}
	states := []dynamo.State{{0, 9}, {0, 9}, {0, 2}, {0, 2}, {0, 2}}

	got := Collect(ts, states, NewAbsorbedEnergy(100, 1, 15), NewMeanPower(100, 1, 15))

	// constant power after the cutoff: energy is mean power times duration
	if math.Abs(got["absorbed_energy_j"]-got["mean_power_w"]*20) > 1e-9 {
		t.Errorf("energy %f inconsistent with power %f", got["absorbed_energy_j"], got["mean_power_w"])
	}
}

func TestAbsorbedEnergyStartsAtRest(t *testing.T) {
	m := NewAbsorbedEnergy(1e5, 1, 0)
	m.Observe(dynamo.State{0, 0}, 0)
	m.Observe(dynamo.State{0, 0}, 1)
	if m.Value() != 0 {
		t.Errorf("buoy at rest absorbs nothing, got %f", m.Value())
	}

	m.Observe(dynamo.State{0, 1}, 2)
	if math.Abs(m.Value()-0.5e5) > 1e-6 {
		t.Errorf("expected one trapezoid, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestPeakEnergy(t *testing.T) {
	m := NewPeakEnergy(spring{k: 1, m: 1})

	m.Observe(dynamo.State{0, 0}, 0)
	m.Observe(dynamo.State{2, 0}, 1)
	m.Observe(dynamo.State{0, 1}, 2)

	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("expected peak energy 2, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestCollect(t *testing.T) {
	ts := []float64{0, 10, 60, 70}
	states := []dynamo.State{{0.5, 1}, {-3, 2}, {1, -1}, {0, 3}}

	got := Collect(ts, states,
		NewMeanPower(100, 0.9, 50),
		NewPeakDisplacement(),
		NewPeakPTOForce(100),
		NewRMSVelocity(),
	)

	tests := []struct {
		name string
		want float64
	}{
		{"mean_power_w", 0.9 * 100 * (1 + 9) / 2},
		{"peak_displacement_m", 3},
		{"peak_pto_force_n", 300},
		{"rms_velocity", math.Sqrt((1 + 4 + 1 + 9) / 4.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v, ok := got[tt.name]; !ok || math.Abs(v-tt.want) > 1e-9 {
				t.Errorf("%s = %f, want %f", tt.name, v, tt.want)
			}
		})
	}
}

func TestMeanPowerEmptyWindow(t *testing.T) {
	m := NewMeanPower(100, 1, 50)
	m.Observe(dynamo.State{0, 5}, 50)

	if m.Value() != 0 {
		t.Errorf("sample at the cutoff must be excluded, got %f", m.Value())
	}
}
