// Package physics provides the heaving-buoy model and the closed-form
// hydrodynamic coefficients it consumes.
//
// [NewBuoyParameters] turns a geometry into an immutable
// [BuoyParameters] snapshot:
//
//   - waterplane area and hydrostatic stiffness (rho * g * A)
//   - added mass from the displaced volume
//   - radiation damping at a single peak frequency
//   - quadratic drag for a bluff body
//
// [Buoy] implements [dynamo.System] for one candidate (mass, PTO damping)
// pair. Individual force terms can be switched off through [Features].
//
//	params := physics.NewBuoyParameters(physics.DefaultGeometry(), physics.DefaultEnvironment())
//	buoy := physics.NewBuoy(params, 1e5, 3e5, field, physics.AllFeatures())
//	dx := buoy.Derive(dynamo.State{0, 0}, 60)
package physics
