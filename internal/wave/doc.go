// Package wave holds measured wave elevation data and turns it into the
// time-domain forcing that drives the buoy model.
//
// A [Series] is loaded once (see [LoadCSV]), cleaned of missing values and
// wrapped in a [Field]. The field answers elevation and forcing queries at
// arbitrary real-valued times by linear interpolation and returns exactly
// zero outside the measured interval. Fields are immutable and safe to
// share between concurrent simulations.
package wave
