// Package physics simulates a point mass constrained to the inner surface
// of a sphere under uniform gravity along -Y.
//
// A [SphereSimulator] integrates the point with a fixed step and tracks two
// phases: contact, where a tangential drive force acts and the wall supplies
// whatever normal force keeps the point on the surface, and free flight,
// where only gravity acts. Every step runs the same sequence:
//
//  1. assemble gravity plus, in contact, the drive force
//  2. release the point early if its centripetal demand clearly exceeds
//     the normal share of gravity
//  3. integrate
//  4. snap points in or beyond the surface band back onto the sphere
//  5. reconcile the phase (landing, penetration bounce, normal-force release)
//
// Basic use:
//
//	sim, err := physics.New(4)
//	if err != nil {
//	    return err
//	}
//	traj, err := sim.Simulate(mgl64.Vec3{0.1, -3.95, 0}, mgl64.Vec3{0, 0, 2}, 15, 15, 1)
//
// [SphereSimulator.RunSpiral] samples a prescribed spiral path instead and
// stops once the path would need the wall to pull.
package physics
