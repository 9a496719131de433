package metrics

import (
	"math"

	"github.com/san-kum/spheresim/internal/dynamo"
)

// mechanical returns kinetic plus potential energy, with the potential
// measured from the south pole of a sphere of the given radius.
func mechanical(s dynamo.ParticleState, mass, gravity, radius float64) float64 {
	ke := 0.5 * mass * s.Velocity.Dot(s.Velocity)
	pe := mass * gravity * (s.Position.Y() + radius)
	return ke + pe
}

// Energy is the mean mechanical energy over the observed samples.
type Energy struct {
	name        string
	mass        float64
	gravity     float64
	radius      float64
	samples     int
	totalEnergy float64
}

func NewEnergy(mass, gravity, radius float64) *Energy {
	return &Energy{
		name:    "energy",
		mass:    mass,
		gravity: gravity,
		radius:  radius,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.ParticleState, t float64) {
	e.totalEnergy += mechanical(s, e.mass, e.gravity, e.radius)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure from the first sample's
// energy. It stays 0 when that energy is 0.
type EnergyDrift struct {
	name          string
	mass          float64
	gravity       float64
	radius        float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(mass, gravity, radius float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		mass:    mass,
		gravity: gravity,
		radius:  radius,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.ParticleState, t float64) {
	energy := mechanical(s, e.mass, e.gravity, e.radius)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{}
}

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(s dynamo.ParticleState, t float64) {
	m.max = math.Max(m.max, s.Velocity.Len())
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }
