package integrators

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
)

const g = 9.81

func TestSymplecticEulerFreeFall(t *testing.T) {
	integ := NewSymplecticEuler()
	s := dynamo.ParticleState{}
	dt := 0.005
	steps := 100
	force := mgl64.Vec3{0, -g, 0}

	for i := 0; i < steps; i++ {
		integ.Step(&s, force, 1.0, dt)
	}

	// semi-implicit Euler: y_n = -g dt^2 n(n+1)/2
	n := float64(steps)
	expectedY := -g * dt * dt * n * (n + 1) / 2
	if math.Abs(s.Position.Y()-expectedY) > 1e-9 {
		t.Errorf("y = %.9f, want %.9f", s.Position.Y(), expectedY)
	}
	if math.Abs(s.Velocity.Y()+g*n*dt) > 1e-9 {
		t.Errorf("vy = %.9f, want %.9f", s.Velocity.Y(), -g*n*dt)
	}
}

func TestEulerUsesOldVelocity(t *testing.T) {
	s := dynamo.ParticleState{Velocity: mgl64.Vec3{1, 0, 0}}
	NewEuler().Step(&s, mgl64.Vec3{2, 0, 0}, 2, 0.1)

	if math.Abs(s.Position.X()-0.1) > 1e-12 {
		t.Errorf("x = %v, want 0.1", s.Position.X())
	}
	if math.Abs(s.Velocity.X()-1.1) > 1e-12 {
		t.Errorf("vx = %v, want 1.1", s.Velocity.X())
	}
}

func TestVerletExactForConstantForce(t *testing.T) {
	integ := NewVerlet()
	s := dynamo.ParticleState{Velocity: mgl64.Vec3{0, 3, 0}}
	dt := 0.01
	steps := 50

	for i := 0; i < steps; i++ {
		integ.Step(&s, mgl64.Vec3{0, -g, 0}, 1.0, dt)
	}

	tt := float64(steps) * dt
	expected := 3*tt - 0.5*g*tt*tt
	if math.Abs(s.Position.Y()-expected) > 1e-9 {
		t.Errorf("y = %.9f, want %.9f", s.Position.Y(), expected)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "symplectic", "semi_implicit", "euler", "verlet"} {
		if _, ok := ByName(name); !ok {
			t.Errorf("ByName(%q) not found", name)
		}
	}
	if _, ok := ByName("rk4"); ok {
		t.Error("ByName(rk4) should not resolve")
	}
}
