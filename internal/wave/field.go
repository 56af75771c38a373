package wave

import "gonum.org/v1/gonum/interp"

// Field answers elevation and forcing queries at arbitrary times.
type Field struct {
	series Series
	linear interp.PiecewiseLinear
}

func NewField(s Series) (*Field, error) {
	if s.Len() < 2 {
		return nil, ErrInsufficientSamples
	}
	f := &Field{series: s}
	if err := f.linear.Fit(s.times, s.elevations); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Field) Start() float64 { return f.series.Start() }
func (f *Field) End() float64   { return f.series.End() }
func (f *Field) Series() Series { return f.series }

// ElevationAt interpolates linearly between samples. Outside the measured
// interval the elevation is zero, not the nearest edge value.
func (f *Field) ElevationAt(t float64) float64 {
	if t < f.series.Start() || t > f.series.End() {
		return 0
	}
	return f.linear.Predict(t)
}

// ForcingAt is the hydrostatic excitation k*eta(t).
func (f *Field) ForcingAt(t, kHydrostatic float64) float64 {
	return kHydrostatic * f.ElevationAt(t)
}
