package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
)

// Verlet is velocity Verlet specialised to a force that is constant across
// the step, so both half kicks use the same acceleration.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(s *dynamo.ParticleState, force mgl64.Vec3, mass, dt float64) {
	acc := force.Mul(1 / mass)
	s.Position = s.Position.Add(s.Velocity.Mul(dt)).Add(acc.Mul(0.5 * dt * dt))
	s.Velocity = s.Velocity.Add(acc.Mul(dt))
}

// ByName resolves an integrator name used in configs and flags.
func ByName(name string) (Stepper, bool) {
	switch name {
	case "", "symplectic", "semi_implicit":
		return NewSymplecticEuler(), true
	case "euler":
		return NewEuler(), true
	case "verlet":
		return NewVerlet(), true
	}
	return nil, false
}
