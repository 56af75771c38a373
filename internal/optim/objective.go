package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoBounds      = errors.New("optim: no bounds")
	ErrInvalidBounds = errors.New("optim: invalid bounds")
)

// Objective is minimized. It must be safe to call concurrently.
type Objective func(ctx context.Context, x []float64) float64

type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r Range) width() float64 { return r.Max - r.Min }

func validateBounds(bounds []Range) error {
	if len(bounds) == 0 {
		return ErrNoBounds
	}
	for i, b := range bounds {
		if math.IsNaN(b.Min) || math.IsNaN(b.Max) || math.IsInf(b.Min, 0) || math.IsInf(b.Max, 0) || b.Min > b.Max {
			return fmt.Errorf("%w: dimension %d [%g, %g]", ErrInvalidBounds, i, b.Min, b.Max)
		}
	}
	return nil
}

// scale maps a point of the unit box onto bounds.
func scale(u []float64, bounds []Range) []float64 {
	x := make([]float64, len(u))
	for i := range u {
		x[i] = bounds[i].Min + u[i]*bounds[i].width()
	}
	return x
}

func clipUnit(u []float64) {
	for i := range u {
		u[i] = math.Min(1, math.Max(0, u[i]))
	}
}
