// Package dynamo provides the shared primitives of the sphere simulator.
//
// The package defines the value types that flow between the physics core
// and its consumers:
//
//   - [ParticleState]: position, velocity and contact [Phase] of the point
//   - [Sample]: one emitted (position, velocity) pair
//   - [Trajectory]: the two parallel output sequences
//   - [Result]: a trajectory plus per-sample phases, events and metrics
//   - [Metric]: accumulator fed with every emitted state
//
// # Example
//
//	sim, _ := physics.New(4.0)
//	traj, err := sim.Simulate(p0, v0, 15, 15, 1)
//	if traj.Empty() {
//	    // degenerate input (non-positive time or mass)
//	}
//
// # Thread Safety
//
// Values in this package carry no shared state. A [Trajectory] returned by a
// run is owned by the caller and may be read from any goroutine.
package dynamo
