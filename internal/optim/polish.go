package optim

import (
	"context"

	"gonum.org/v1/gonum/optimize"
)

// polish runs Nelder-Mead in the unit box from u0. Points outside the box
// are clipped before evaluation. ok reports whether it improved on f0.
func polish(ctx context.Context, obj Objective, u0 []float64, f0 float64, bounds []Range, maxEvals int) (x []float64, f float64, evals int, ok bool) {
	p := optimize.Problem{
		Func: func(u []float64) float64 {
			if ctx.Err() != nil {
				return f0
			}
			c := make([]float64, len(u))
			copy(c, u)
			clipUnit(c)
			evals++
			return obj(ctx, scale(c, bounds))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-6,
			Relative:   1e-6,
			Iterations: 10,
		},
	}

	start := make([]float64, len(u0))
	copy(start, u0)
	res, err := optimize.Minimize(p, start, settings, &optimize.NelderMead{SimplexSize: 0.05})
	if res == nil {
		return nil, f0, evals, false
	}
	if err != nil || ctx.Err() != nil || !(res.F < f0) {
		return nil, f0, evals, false
	}

	c := make([]float64, len(res.X))
	copy(c, res.X)
	clipUnit(c)
	return scale(c, bounds), res.F, evals, true
}
