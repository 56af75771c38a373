package optim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

type DEConfig struct {
	PopSize       int        `yaml:"popsize" json:"popsize"`
	MaxIter       int        `yaml:"maxiter" json:"maxiter"`
	Tol           float64    `yaml:"tol" json:"tol"`
	ATol          float64    `yaml:"atol" json:"atol"`
	Mutation      [2]float64 `yaml:"mutation" json:"mutation"`
	Recombination float64    `yaml:"recombination" json:"recombination"`
	Seed          int64      `yaml:"seed" json:"seed"`
	Workers       int        `yaml:"workers" json:"workers"`
	Polish        bool       `yaml:"polish" json:"polish"`
	PolishEvals   int        `yaml:"polish_evals" json:"polish_evals"`
}

func DefaultDEConfig() DEConfig {
	return DEConfig{
		PopSize:       5,
		MaxIter:       10,
		Tol:           0.1,
		Mutation:      [2]float64{0.5, 1.0},
		Recombination: 0.7,
		Seed:          1,
		Workers:       runtime.NumCPU(),
		Polish:        true,
		PolishEvals:   40,
	}
}

// Progress is reported once after initialization (Generation 0) and after
// every generation.
type Progress struct {
	Generation  int
	Best        []float64
	F           float64
	Spread      float64
	Evaluations int
}

type Result struct {
	X           []float64
	F           float64
	Generations int
	Evaluations int
	Converged   bool
	Polished    bool
	Message     string
}

// DifferentialEvolution runs the best1bin strategy with a dithered
// mutation factor and Latin hypercube initialization. Each generation's
// trial vectors are built from the previous population and evaluated
// concurrently, so the outcome for a given seed does not depend on
// Workers.
func DifferentialEvolution(ctx context.Context, obj Objective, bounds []Range, cfg DEConfig, progress func(Progress)) (Result, error) {
	if err := validateBounds(bounds); err != nil {
		return Result{}, err
	}
	if cfg.MaxIter < 0 || cfg.PopSize < 1 {
		return Result{}, fmt.Errorf("optim: popsize %d, maxiter %d", cfg.PopSize, cfg.MaxIter)
	}

	dim := len(bounds)
	npop := max(5, cfg.PopSize*dim)
	rng := rand.New(rand.NewSource(cfg.Seed))

	pop := latinHypercube(rng, npop, dim)
	energies, err := evaluateAll(ctx, obj, scaleAll(pop, bounds), cfg.Workers)
	if err != nil {
		return Result{}, err
	}
	evals := npop

	best := argmin(energies)
	pop[0], pop[best] = pop[best], pop[0]
	energies[0], energies[best] = energies[best], energies[0]

	report := func(gen int) {
		if progress != nil {
			progress(Progress{
				Generation:  gen,
				Best:        scale(pop[0], bounds),
				F:           energies[0],
				Spread:      stat.StdDev(energies, nil),
				Evaluations: evals,
			})
		}
	}
	report(0)

	res := Result{Message: "maximum number of iterations reached"}
	gen := 0
	for gen < cfg.MaxIter {
		if converged(energies, cfg) {
			res.Converged = true
			res.Message = "population converged"
			break
		}
		gen++

		f := cfg.Mutation[0]
		if cfg.Mutation[1] > cfg.Mutation[0] {
			f += rng.Float64() * (cfg.Mutation[1] - cfg.Mutation[0])
		}

		trials := make([][]float64, npop)
		for i := range trials {
			trials[i] = best1bin(rng, pop, i, f, cfg.Recombination)
		}

		trialEnergies, err := evaluateAll(ctx, obj, scaleAll(trials, bounds), cfg.Workers)
		if err != nil {
			return Result{}, err
		}
		evals += npop

		for i := range trials {
			if trialEnergies[i] < energies[i] {
				pop[i], energies[i] = trials[i], trialEnergies[i]
				if energies[i] < energies[0] {
					pop[0], pop[i] = pop[i], pop[0]
					energies[0], energies[i] = energies[i], energies[0]
				}
			}
		}

		report(gen)
	}
	if !res.Converged && converged(energies, cfg) {
		res.Converged = true
		res.Message = "population converged"
	}

	res.X = scale(pop[0], bounds)
	res.F = energies[0]
	res.Generations = gen
	res.Evaluations = evals

	if cfg.Polish && cfg.PolishEvals > 0 {
		if x, fx, n, ok := polish(ctx, obj, pop[0], energies[0], bounds, cfg.PolishEvals); n > 0 {
			res.Evaluations += n
			if ok {
				res.X, res.F, res.Polished = x, fx, true
			}
		}
	}

	return res, nil
}

func converged(energies []float64, cfg DEConfig) bool {
	for _, e := range energies {
		if math.IsInf(e, 0) || math.IsNaN(e) {
			return false
		}
	}
	return stat.StdDev(energies, nil) <= cfg.ATol+cfg.Tol*math.Abs(stat.Mean(energies, nil))
}

// latinHypercube places one sample in each of npop equal strata per
// dimension of the unit box.
func latinHypercube(rng *rand.Rand, npop, dim int) [][]float64 {
	pop := make([][]float64, npop)
	for i := range pop {
		pop[i] = make([]float64, dim)
	}
	seg := 1.0 / float64(npop)
	for j := 0; j < dim; j++ {
		perm := rng.Perm(npop)
		for i := range pop {
			pop[i][j] = (float64(perm[i]) + rng.Float64()) * seg
		}
	}
	return pop
}

// best1bin mutates the best member (index 0) with one scaled difference
// and applies binomial crossover against member i.
func best1bin(rng *rand.Rand, pop [][]float64, i int, f, cr float64) []float64 {
	npop, dim := len(pop), len(pop[0])
	r0, r1 := pickTwo(rng, npop, i)

	trial := make([]float64, dim)
	copy(trial, pop[i])
	fill := rng.Intn(dim)
	for j := 0; j < dim; j++ {
		if j == fill || rng.Float64() < cr {
			trial[j] = pop[0][j] + f*(pop[r0][j]-pop[r1][j])
		}
	}
	clipUnit(trial)
	return trial
}

func pickTwo(rng *rand.Rand, n, exclude int) (int, int) {
	idx := rng.Perm(n)
	out := make([]int, 0, 2)
	for _, k := range idx {
		if k != exclude {
			out = append(out, k)
			if len(out) == 2 {
				break
			}
		}
	}
	return out[0], out[1]
}

func evaluateAll(ctx context.Context, obj Objective, points [][]float64, workers int) ([]float64, error) {
	out := make([]float64, len(points))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, x := range points {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = obj(gctx, x)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("optim: evaluation interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("optim: evaluation interrupted: %w", err)
	}
	return out, nil
}

func scaleAll(units [][]float64, bounds []Range) [][]float64 {
	out := make([][]float64, len(units))
	for i, u := range units {
		out[i] = scale(u, bounds)
	}
	return out
}

func argmin(v []float64) int {
	best := 0
	for i := range v {
		if v[i] < v[best] {
			best = i
		}
	}
	return best
}
