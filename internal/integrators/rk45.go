package integrators

import (
	"math"

	"github.com/san-kum/wavebuoy/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0

	// continuous extension (Hairer, dopri5)
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

const (
	DefaultRTol = 1e-3
	DefaultATol = 1e-6

	errorExponent = -1.0 / 5.0
)

type RK45 struct {
	RTol     float64
	ATol     float64
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		RTol:     DefaultRTol,
		ATol:     DefaultATol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Attempt is one trial Dormand-Prince step from (t, x) with size h. It
// carries everything needed to accept it and to interpolate inside it.
type Attempt struct {
	T, H    float64
	X0, X1  dynamo.State
	K1, K7  dynamo.State
	ErrNorm float64

	cont [5]dynamo.State
}

// Interpolate evaluates the 4th-order continuous extension at t in [T, T+H].
func (a *Attempt) Interpolate(t float64) dynamo.State {
	theta := (t - a.T) / a.H
	theta1 := 1 - theta
	n := len(a.X0)
	out := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		out[i] = a.cont[0][i] + theta*(a.cont[1][i]+theta1*(a.cont[2][i]+theta*(a.cont[3][i]+theta1*a.cont[4][i])))
	}
	return out
}

func (a *Attempt) End() float64 { return a.T + a.H }

// Step advances by dt without error control.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return r.Try(dyn, x, dyn.Derive(x, t), t, dt).X1
}

// Try evaluates one step. k1 must be dyn.Derive(x, t); the returned K7 is
// the derivative at the new point and seeds the next step.
func (r *RK45) Try(dyn dynamo.System, x, k1 dynamo.State, t, dt float64) *Attempt {
	n := len(x)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(x2, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(x3, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(x4, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(x5, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(x6, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(xNew, t+dt)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.ATol + r.RTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		sum += (errEst / scale) * (errEst / scale)
	}

	a := &Attempt{T: t, H: dt, X0: x, X1: xNew, K1: k1, K7: k7, ErrNorm: math.Sqrt(sum / float64(n))}

	for j := range a.cont {
		a.cont[j] = make(dynamo.State, n)
	}
	for i := 0; i < n; i++ {
		diff := xNew[i] - x[i]
		bspl := dt*k1[i] - diff
		a.cont[0][i] = x[i]
		a.cont[1][i] = diff
		a.cont[2][i] = bspl
		a.cont[3][i] = diff - dt*k7[i] - bspl
		a.cont[4][i] = dt * (d1*k1[i] + d3*k3[i] + d4*k4[i] + d5*k5[i] + d6*k6[i] + d7*k7[i])
	}

	return a
}

// Scale returns the factor for the next step size given an error norm.
// Norms below one mean the attempt is acceptable.
func (r *RK45) Scale(errNorm float64) float64 {
	if math.IsNaN(errNorm) || math.IsInf(errNorm, 1) {
		return r.minScale
	}
	if errNorm == 0 {
		return r.maxScale
	}
	s := r.safety * math.Pow(errNorm, errorExponent)
	if errNorm < 1 {
		return math.Min(r.maxScale, s)
	}
	return math.Max(r.minScale, s)
}

// InitialStep picks a starting step from the local scale of the solution
// and its derivative (Hairer, Norsett & Wanner II.4).
func (r *RK45) InitialStep(dyn dynamo.System, x, k1 dynamo.State, t float64) float64 {
	n := len(x)
	scale := make([]float64, n)
	for i := range x {
		scale[i] = r.ATol + math.Abs(x[i])*r.RTol
	}

	rms := func(v dynamo.State) float64 {
		s := 0.0
		for i := range v {
			q := v[i] / scale[i]
			s += q * q
		}
		return math.Sqrt(s / float64(n))
	}

	d0, d1n := rms(x), rms(k1)
	h0 := 1e-6
	if d0 >= 1e-5 && d1n >= 1e-5 {
		h0 = 0.01 * d0 / d1n
	}

	x1 := make(dynamo.State, n)
	for i := range x {
		x1[i] = x[i] + h0*k1[i]
	}
	f1 := dyn.Derive(x1, t+h0)
	d2 := rms(f1.Sub(k1)) / h0

	var h1 float64
	if d1n <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1n, d2), 1.0/5.0)
	}

	return math.Min(100*h0, h1)
}
