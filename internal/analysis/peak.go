package analysis

import (
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/wavebuoy/internal/physics"
)

// RootTolerance is the bracket width at which jerk root refinement stops.
const RootTolerance = 1e-6

const maxRootIterations = 100

// AccelerationModel recomputes acceleration from a sampled state.
type AccelerationModel interface {
	Acceleration(t, z, v float64) float64
}

type Peak struct {
	Time  float64 `json:"time"`
	Accel float64 `json:"accel"`
	G     float64 `json:"g"`
}

type spline interface {
	Predict(x float64) float64
	PredictDerivative(x float64) float64
}

// FindMaxAcceleration returns the acceleration extremum of largest
// magnitude strictly after ts[0]+cutoff. ok is false when the jerk never
// changes sign there.
func FindMaxAcceleration(ts, zs, vs []float64, model AccelerationModel, cutoff float64) (Peak, bool) {
	n := len(ts)
	if n < 2 || len(zs) != n || len(vs) != n {
		return Peak{}, false
	}

	acc := make([]float64, n)
	for i := range ts {
		acc[i] = model.Acceleration(ts[i], zs[i], vs[i])
	}

	s, err := fitSpline(ts, acc)
	if err != nil {
		return Peak{}, false
	}

	jerk := make([]float64, n)
	for i, t := range ts {
		jerk[i] = s.PredictDerivative(t)
	}

	threshold := ts[0] + cutoff
	var best Peak
	found := false

	for _, root := range jerkRoots(ts, jerk, s.PredictDerivative) {
		if root <= threshold {
			continue
		}
		a := s.Predict(root)
		if !found || math.Abs(a) > math.Abs(best.Accel) {
			best = Peak{Time: root, Accel: a, G: a / physics.DefaultGravity}
			found = true
		}
	}

	return best, found
}

// jerkRoots returns the sample times where jerk is exactly zero and a
// refined root inside every interval where it changes sign.
func jerkRoots(ts, jerk []float64, f func(float64) float64) []float64 {
	var roots []float64
	for i := range jerk {
		switch {
		case jerk[i] == 0:
			roots = append(roots, ts[i])
		case i+1 < len(jerk) && jerk[i]*jerk[i+1] < 0:
			roots = append(roots, refineRoot(f, ts[i], ts[i+1], jerk[i]))
		}
	}
	return roots
}

func fitSpline(xs, ys []float64) (spline, error) {
	if len(xs) >= 3 {
		var nak interp.NotAKnotCubic
		if err := nak.Fit(xs, ys); err == nil {
			return &nak, nil
		}
	}
	var nc interp.NaturalCubic
	if err := nc.Fit(xs, ys); err != nil {
		return nil, err
	}
	return &nc, nil
}

// refineRoot finds f(x)=0 in [a, b] given f(a)=fa and a sign change over
// the bracket. Newton steps start at the midpoint; a step that leaves the
// bracket or meets a flat slope is replaced by bisection.
func refineRoot(f func(float64) float64, a, b, fa float64) float64 {
	x := 0.5 * (a + b)
	for i := 0; i < maxRootIterations; i++ {
		fx := f(x)
		if fx == 0 {
			return x
		}
		if math.Signbit(fx) == math.Signbit(fa) {
			a, fa = x, fx
		} else {
			b = x
		}
		if b-a < RootTolerance {
			return 0.5 * (a + b)
		}

		next := 0.5 * (a + b)
		h := 1e-3 * (b - a)
		slope := (f(x+h) - f(x-h)) / (2 * h)
		if math.Abs(slope) > 1e-12 {
			if newton := x - fx/slope; newton > a && newton < b {
				next = newton
			}
		}
		if math.Abs(next-x) < RootTolerance {
			return next
		}
		x = next
	}
	return 0.5 * (a + b)
}
