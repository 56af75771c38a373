package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidSpan indicates an empty or reversed integration interval.
	ErrInvalidSpan = errors.New("dynamo: invalid time span")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the integrator hit its step ceiling before t_end.
	ErrMaxSteps = errors.New("dynamo: step limit reached before end of span")

	// ErrDerivativePanic indicates the right-hand side panicked.
	ErrDerivativePanic = errors.New("dynamo: derivative evaluation panicked")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%v at %s", e.Wrapped, SimError{Time: e.Time, Step: e.Step}.location())
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
