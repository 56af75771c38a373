package wave

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Diagnostics are descriptive statistics of a probe record. They are
// reported alongside results and never feed the dynamics.
type Diagnostics struct {
	Samples         int     `json:"samples"`
	Duration        float64 `json:"duration_s"`
	MeanElevation   float64 `json:"mean_elevation_m"`
	SignificantH    float64 `json:"significant_height_m"`
	MeanVelocity    float64 `json:"mean_velocity_mps"`
	RMSVelocity     float64 `json:"rms_velocity_mps"`
	DominantPeriod  float64 `json:"dominant_period_s"`
	DominantOmega   float64 `json:"dominant_omega_radps"`
	MaxAbsElevation float64 `json:"max_abs_elevation_m"`
}

// Diagnose computes diagnostics from s; step is the resampling step used
// for the spectral estimate.
func Diagnose(s Series, step float64) (Diagnostics, error) {
	d := Diagnostics{
		Samples:       s.Len(),
		Duration:      s.End() - s.Start(),
		MeanElevation: stat.Mean(s.elevations, nil),
		SignificantH:  4 * stat.StdDev(s.elevations, nil),
	}
	for _, e := range s.elevations {
		d.MaxAbsElevation = math.Max(d.MaxAbsElevation, math.Abs(e))
	}

	d.MeanVelocity, d.RMSVelocity = VelocityStats(s)

	resampled, err := s.Resample(step)
	if err != nil {
		return d, err
	}
	d.DominantPeriod = DominantPeriod(resampled)
	if d.DominantPeriod > 0 {
		d.DominantOmega = 2 * math.Pi / d.DominantPeriod
	}
	return d, nil
}

// Velocity is the vertical surface velocity by finite differences:
// central in the interior, one-sided at both ends.
func Velocity(s Series) []float64 {
	n := s.Len()
	v := make([]float64, n)
	t, e := s.times, s.elevations
	v[0] = (e[1] - e[0]) / (t[1] - t[0])
	v[n-1] = (e[n-1] - e[n-2]) / (t[n-1] - t[n-2])
	for i := 1; i < n-1; i++ {
		v[i] = (e[i+1] - e[i-1]) / (t[i+1] - t[i-1])
	}
	return v
}

func VelocityStats(s Series) (mean, rms float64) {
	v := Velocity(s)
	mean = stat.Mean(v, nil)
	sq := 0.0
	for _, x := range v {
		sq += x * x
	}
	rms = math.Sqrt(sq / float64(len(v)))
	return mean, rms
}

// DominantPeriod returns the period of the strongest non-zero frequency
// bin of an evenly spaced series, or 0 if the record is flat.
func DominantPeriod(s Series) float64 {
	n := s.Len()
	if n < 4 {
		return 0
	}
	mean := stat.Mean(s.elevations, nil)
	x := make([]float64, n)
	for i, e := range s.elevations {
		x[i] = e - mean
	}

	spec := fft.FFTReal(x)
	best, bestIdx := 0.0, 0
	for k := 1; k < n/2; k++ {
		if p := cmplx.Abs(spec[k]); p > best {
			best, bestIdx = p, k
		}
	}
	if bestIdx == 0 || best < 1e-12 {
		return 0
	}
	dt := (s.End() - s.Start()) / float64(n-1)
	return float64(n) * dt / float64(bestIdx)
}
