package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
)

// Stepper advances a particle by one step under a force that is held
// constant over the step.
type Stepper interface {
	Step(s *dynamo.ParticleState, force mgl64.Vec3, mass, dt float64)
}

// SymplecticEuler updates velocity first and moves with the new velocity.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) Step(s *dynamo.ParticleState, force mgl64.Vec3, mass, dt float64) {
	s.Velocity = s.Velocity.Add(force.Mul(dt / mass))
	s.Position = s.Position.Add(s.Velocity.Mul(dt))
}

// Euler is the explicit variant: position moves with the old velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(s *dynamo.ParticleState, force mgl64.Vec3, mass, dt float64) {
	v := s.Velocity
	s.Velocity = v.Add(force.Mul(dt / mass))
	s.Position = s.Position.Add(v.Mul(dt))
}
