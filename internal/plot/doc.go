// Package plot renders PNG charts of a buoy run: the response of the optimum
// over the evaluation grid and the power curves of a mass/damping scan.
package plot
