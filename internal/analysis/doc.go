// Package analysis post-processes sampled buoy trajectories.
//
//   - [FindMaxAcceleration]: largest steady-state acceleration peak, found
//     at the roots of the spline-differentiated jerk
//   - [NewPhasePortrait]: heave displacement against velocity
//
// A missing peak is a normal outcome for short or quiet runs:
//
//	peak, ok := analysis.FindMaxAcceleration(ts, zs, vs, buoy, 50)
//	if !ok {
//	    // nothing to mark
//	}
package analysis
