// Package optim minimizes black-box objectives over box bounds.
//
// [DifferentialEvolution] is the global search, optionally finished with a
// Nelder-Mead polish. [GridSearch] sweeps a fixed lattice. [Memoize] wraps
// an objective so repeated points are not recomputed; it relies on the
// objective being a pure function of its input.
package optim
