package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
)

// Sphere is the immutable constraint of a run.
type Sphere struct {
	Radius  float64
	Gravity float64
}

// radial returns the outward unit vector at p, or the zero vector at the
// origin.
func radial(p mgl64.Vec3, eps float64) mgl64.Vec3 {
	l := p.Len()
	if l <= eps {
		return mgl64.Vec3{}
	}
	return p.Mul(1 / l)
}

// GravityForce is the weight of the point along -Y.
func (sp Sphere) GravityForce(mass float64) mgl64.Vec3 {
	return mgl64.Vec3{0, -mass * sp.Gravity, 0}
}

// DriveForce returns the tangential drive at position p: the horizontal
// tangent to the latitude circle through p scaled to magnitude. On the
// vertical axis that tangent vanishes and the force points along +X.
func DriveForce(p mgl64.Vec3, magnitude float64, tun Tuning) mgl64.Vec3 {
	if magnitude <= 0 {
		return mgl64.Vec3{}
	}
	r := radial(p, tun.ProjectionEpsilon)
	fwd := mgl64.Vec3{-r.Z(), 0, r.X()}
	if l := fwd.Len(); l > tun.DirectionEpsilon {
		return fwd.Mul(magnitude / l)
	}
	return mgl64.Vec3{magnitude, 0, 0}
}

// NetForce assembles gravity plus the drive, which only acts in contact.
func (sp Sphere) NetForce(s dynamo.ParticleState, mass, drive float64, tun Tuning) mgl64.Vec3 {
	f := sp.GravityForce(mass)
	if s.Phase == dynamo.Contact {
		f = f.Add(DriveForce(s.Position, drive, tun))
	}
	return f
}

// CriticalSpeed is sqrt(g R), the speed at which the centripetal demand at
// the equator equals the weight.
func (sp Sphere) CriticalSpeed() float64 {
	return math.Sqrt(sp.Gravity * sp.Radius)
}
