package wave

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sample is one measured point: elapsed time in seconds and surface
// elevation in meters.
type Sample struct {
	Time      float64
	Elevation float64
}

// Series is an ordered, cleaned sequence of samples.
type Series struct {
	times      []float64
	elevations []float64
}

// NewSeries drops samples with a missing (NaN) time or elevation and
// validates what remains.
func NewSeries(samples []Sample) (Series, error) {
	times := make([]float64, 0, len(samples))
	elevations := make([]float64, 0, len(samples))
	for _, s := range samples {
		if math.IsNaN(s.Time) || math.IsNaN(s.Elevation) {
			continue
		}
		times = append(times, s.Time)
		elevations = append(elevations, s.Elevation)
	}
	return newSeries(times, elevations)
}

func newSeries(times, elevations []float64) (Series, error) {
	if len(times) < 2 {
		return Series{}, fmt.Errorf("%w: got %d", ErrInsufficientSamples, len(times))
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return Series{}, fmt.Errorf("%w: t[%d]=%g after t[%d]=%g", ErrNotIncreasing, i, times[i], i-1, times[i-1])
		}
	}
	for i := range times {
		if math.IsInf(times[i], 0) || math.IsInf(elevations[i], 0) {
			return Series{}, fmt.Errorf("wave: non-finite sample at index %d", i)
		}
	}
	return Series{times: times, elevations: elevations}, nil
}

func (s Series) Len() int { return len(s.times) }

func (s Series) Start() float64 { return s.times[0] }

func (s Series) End() float64 { return s.times[len(s.times)-1] }

// Times returns a copy of the sample times.
func (s Series) Times() []float64 {
	return append([]float64(nil), s.times...)
}

// Elevations returns a copy of the sample elevations.
func (s Series) Elevations() []float64 {
	return append([]float64(nil), s.elevations...)
}

func (s Series) At(i int) Sample {
	return Sample{Time: s.times[i], Elevation: s.elevations[i]}
}

// Resample returns an evenly spaced series over [Start, End] with
// ceil((End-Start)/step)+1 points, linearly interpolated from s.
func (s Series) Resample(step float64) (Series, error) {
	if !(step > 0) {
		return Series{}, ErrInvalidStep
	}
	field, err := NewField(s)
	if err != nil {
		return Series{}, err
	}
	n := int(math.Ceil((s.End()-s.Start())/step)) + 1
	if n < 2 {
		n = 2
	}
	times := floats.Span(make([]float64, n), s.Start(), s.End())
	elevations := make([]float64, n)
	for i, t := range times {
		elevations[i] = field.ElevationAt(t)
	}
	return newSeries(times, elevations)
}
