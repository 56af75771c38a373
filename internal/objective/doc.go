// Package objective turns a (mass, damping) candidate into a scalar fitness
// for minimization: the negated mean electrical power over the steady-state
// part of a simulated run, or a fixed penalty when the candidate is
// infeasible.
package objective
