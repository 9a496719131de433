package physics

import "math"

// StandardGravity is the fixed gravitational acceleration in m/s^2.
const StandardGravity = 9.81

// Tuning collects the step size and the empirically tuned thresholds of the
// sphere simulator. Zero values are replaced by the defaults.
type Tuning struct {
	Dt          float64 `yaml:"dt"`
	Restitution float64 `yaml:"restitution"`

	// SurfaceTolerance is the absolute distance from the radius within which
	// the point counts as touching the surface.
	SurfaceTolerance float64 `yaml:"surface_tolerance"`
	// OutsideTolerance bounds |p|^2 - R^2 for an acceptable initial position.
	OutsideTolerance float64 `yaml:"outside_tolerance"`
	// InwardVelocity is the radial speed below which an inward component is
	// stripped at start or reflected on impact.
	InwardVelocity float64 `yaml:"inward_velocity"`
	// DirectionEpsilon guards normalisation of the drive direction.
	DirectionEpsilon float64 `yaml:"direction_epsilon"`
	// ProjectionEpsilon is the smallest |p| that can be rescaled.
	ProjectionEpsilon float64 `yaml:"projection_epsilon"`
	// DetachMargin multiplies the normal gravity component in the
	// pre-emptive detachment test.
	DetachMargin float64 `yaml:"detach_margin"`
	// NormalForceSlack is how negative the required normal force may be
	// while the point stays attached.
	NormalForceSlack float64 `yaml:"normal_force_slack"`
	// EscapeVelocity keeps the point attached while its radial velocity is
	// below -EscapeVelocity.
	EscapeVelocity float64 `yaml:"escape_velocity"`

	// MaxSteps bounds the number of integration steps of one run. Longer
	// runs are rejected instead of overflowing the step count.
	MaxSteps int `yaml:"max_steps"`
	// ReprojectInterior extends the hard re-projection to points inside
	// the surface band, pulling any interior point onto the sphere every
	// step. Off by default, which lets free flight happen.
	ReprojectInterior bool `yaml:"reproject_interior"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Dt:                0.005,
		Restitution:       0.3,
		SurfaceTolerance:  1e-5,
		OutsideTolerance:  1e-3,
		InwardVelocity:    1e-6,
		DirectionEpsilon:  1e-6,
		ProjectionEpsilon: 1e-9,
		DetachMargin:      1.05,
		NormalForceSlack:  1e-6,
		EscapeVelocity:    0.01,
		MaxSteps:          math.MaxInt32,
	}
}

// withDefaults fills every zero field from DefaultTuning. Restitution is the
// exception: zero is a meaningful value, so negative marks "unset".
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&t.Dt, d.Dt)
	fill(&t.SurfaceTolerance, d.SurfaceTolerance)
	fill(&t.OutsideTolerance, d.OutsideTolerance)
	fill(&t.InwardVelocity, d.InwardVelocity)
	fill(&t.DirectionEpsilon, d.DirectionEpsilon)
	fill(&t.ProjectionEpsilon, d.ProjectionEpsilon)
	fill(&t.DetachMargin, d.DetachMargin)
	fill(&t.NormalForceSlack, d.NormalForceSlack)
	fill(&t.EscapeVelocity, d.EscapeVelocity)
	if t.MaxSteps <= 0 {
		t.MaxSteps = d.MaxSteps
	}
	if t.Restitution < 0 {
		t.Restitution = d.Restitution
	}
	return t
}
