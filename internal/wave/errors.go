package wave

import "errors"

var (
	// ErrInsufficientSamples indicates fewer than two usable samples.
	ErrInsufficientSamples = errors.New("wave: insufficient valid samples (need at least 2)")

	// ErrNotIncreasing indicates sample times that are not strictly increasing.
	ErrNotIncreasing = errors.New("wave: sample times must be strictly increasing")

	// ErrMissingColumn indicates a required CSV column is absent.
	ErrMissingColumn = errors.New("wave: required column missing")

	// ErrInvalidStep indicates a non-positive resampling step.
	ErrInvalidStep = errors.New("wave: resample step must be positive")
)
