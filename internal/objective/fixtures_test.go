package objective_test

import (
	"math"

	"github.com/san-kum/wavebuoy/internal/objective"
	"github.com/san-kum/wavebuoy/internal/physics"
	"github.com/san-kum/wavebuoy/internal/sim"
	"github.com/san-kum/wavebuoy/internal/wave"
)

func sineSeries(amplitude, period, duration, step float64) wave.Series {
	n := int(math.Round(duration/step)) + 1
	samples := make([]wave.Sample, n)
	for i := range samples {
		t := float64(i) * step
		samples[i] = wave.Sample{Time: t, Elevation: amplitude * math.Sin(2*math.Pi*t/period)}
	}
	s, err := wave.NewSeries(samples)
	if err != nil {
		panic(err)
	}
	return s
}

func newEvaluator(cfg objective.Config, series wave.Series) *objective.Evaluator {
	field, err := wave.NewField(series)
	if err != nil {
		panic(err)
	}
	params := physics.NewBuoyParameters(physics.DefaultGeometry(), physics.DefaultEnvironment())
	ev, err := objective.New(cfg, field, params, physics.AllFeatures(), sim.New(sim.DefaultConfig()), nil)
	if err != nil {
		panic(err)
	}
	return ev
}
