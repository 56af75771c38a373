package optim

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
)

// GridPoint is one evaluated lattice node.
type GridPoint struct {
	X []float64
	F float64
}

type GridSearch struct {
	ranges    [][]float64
	skipAbove float64
	workers   int
}

func NewGridSearch(ranges [][]float64) *GridSearch {
	return &GridSearch{ranges: ranges, skipAbove: math.Inf(1)}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// SkipAbove drops points scoring at or above threshold from the results.
func (g *GridSearch) SkipAbove(threshold float64) *GridSearch {
	g.skipAbove = threshold
	return g
}

func (g *GridSearch) Workers(n int) *GridSearch {
	g.workers = n
	return g
}

// Search evaluates every node of the lattice and returns the kept points
// in lattice order along with the best one.
func (g *GridSearch) Search(ctx context.Context, obj Objective) ([]GridPoint, GridPoint, error) {
	if len(g.ranges) == 0 {
		return nil, GridPoint{}, ErrNoBounds
	}

	var nodes [][]float64
	g.searchRecursive(0, make([]float64, 0, len(g.ranges)), &nodes)

	values, err := evaluateAll(ctx, obj, nodes, g.workers)
	if err != nil {
		return nil, GridPoint{}, err
	}

	best := GridPoint{F: math.Inf(1)}
	points := make([]GridPoint, 0, len(nodes))
	for i, x := range nodes {
		if values[i] >= g.skipAbove {
			continue
		}
		p := GridPoint{X: x, F: values[i]}
		points = append(points, p)
		if p.F < best.F {
			best = p
		}
	}

	return points, best, nil
}

func (g *GridSearch) searchRecursive(depth int, current []float64, out *[][]float64) {
	if depth == len(g.ranges) {
		node := make([]float64, len(current))
		copy(node, current)
		*out = append(*out, node)
		return
	}

	for _, val := range g.ranges[depth] {
		g.searchRecursive(depth+1, append(current, val), out)
	}
}
