// Package dynamo provides core simulation primitives for the buoy model.
//
// The package defines the fundamental interfaces and types shared by the
// integrators, the simulator and the dynamics model:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [SimulationError]: failure context attached to a failed run
//
// # Example
//
//	buoy := physics.NewBuoy(params, mass, damping, field, physics.AllFeatures())
//	s := sim.New(sim.DefaultConfig())
//	traj := s.Run(ctx, buoy, [2]float64{0, 200}, dynamo.State{0, 0})
//	if !traj.Ok() {
//	    // traj.Err() carries the diagnostic
//	}
//
// # Thread Safety
//
// [System] implementations are expected to be pure: they may be called
// from several goroutines and probed at arbitrary, repeated times.
package dynamo
