package integrators

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
)

func benchStepper(b *testing.B, integ Stepper) {
	s := dynamo.ParticleState{Position: mgl64.Vec3{0.1, -3.95, 0}, Velocity: mgl64.Vec3{0, 0, 2}}
	force := mgl64.Vec3{0, -9.81, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Step(&s, force, 1.0, 0.005)
	}
}

func BenchmarkSymplecticEuler(b *testing.B) { benchStepper(b, NewSymplecticEuler()) }
func BenchmarkEuler(b *testing.B)           { benchStepper(b, NewEuler()) }
func BenchmarkVerlet(b *testing.B)          { benchStepper(b, NewVerlet()) }
