package physics

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/integrators"
)

// Transition causes recorded in dynamo.Event.
const (
	CauseCentrifugal = "centrifugal"
	CauseNormalForce = "normal_force"
	CauseLanded      = "landed"
)

// run carries the per-call parameters. It is created by Run and never shared.
type run struct {
	sp     Sphere
	tun    Tuning
	mass   float64
	drive  float64
	integ  integrators.Stepper
	logger *slog.Logger
	events []dynamo.Event
}

func (r *run) onSurface(dist float64) bool {
	return dist >= r.sp.Radius-r.tun.SurfaceTolerance
}

// project moves p onto the sphere along its radial line and returns the
// outward normal used.
func (r *run) project(s *dynamo.ParticleState) mgl64.Vec3 {
	n := radial(s.Position, r.tun.ProjectionEpsilon)
	if n != (mgl64.Vec3{}) {
		s.Position = n.Mul(r.sp.Radius)
	}
	return n
}

// bounce reflects an inward radial velocity with the restitution
// coefficient. It reports whether a reflection happened.
func (r *run) bounce(s *dynamo.ParticleState, n mgl64.Vec3) bool {
	vr := s.Velocity.Dot(n)
	if vr >= -r.tun.InwardVelocity {
		return false
	}
	s.Velocity = s.Velocity.Sub(n.Mul((1 + r.tun.Restitution) * vr))
	return true
}

// initialize derives the starting phase and corrects the initial state.
func (r *run) initialize(s *dynamo.ParticleState) {
	dist := s.Position.Len()
	if !r.onSurface(dist) {
		s.Phase = dynamo.FreeFlight
		return
	}

	s.Phase = dynamo.Contact
	if dist > r.sp.Radius+r.tun.SurfaceTolerance {
		r.project(s)
	}
	n := radial(s.Position, r.tun.ProjectionEpsilon)
	if vr := s.Velocity.Dot(n); vr < -r.tun.InwardVelocity {
		s.Velocity = s.Velocity.Sub(n.Mul(vr))
	}
}

// preemptiveDetach releases a contact point whose centripetal demand beats
// the normal component of gravity by DetachMargin.
func (r *run) preemptiveDetach(s *dynamo.ParticleState) string {
	if s.Phase != dynamo.Contact {
		return ""
	}
	n := radial(s.Position, r.tun.ProjectionEpsilon)
	centrifugal := r.mass * s.Velocity.Dot(s.Velocity) / r.sp.Radius
	gravityNormal := r.mass * r.sp.Gravity * math.Abs(n.Y())
	if centrifugal >= r.tun.DetachMargin*gravityNormal {
		s.Phase = dynamo.FreeFlight
		return CauseCentrifugal
	}
	return ""
}

// reproject snaps a point lying in or beyond the surface band back onto the
// sphere and strips the radial velocity. It runs in both phases. Points
// deeper inside than the band are left alone unless ReprojectInterior is
// set.
func (r *run) reproject(s *dynamo.ParticleState) bool {
	dist := s.Position.Len()
	if dist <= r.tun.ProjectionEpsilon {
		return false
	}
	if !r.tun.ReprojectInterior && !r.onSurface(dist) {
		return false
	}
	n := s.Position.Mul(1 / dist)
	s.Position = n.Mul(r.sp.Radius)
	s.Velocity = s.Velocity.Sub(n.Mul(s.Velocity.Dot(n)))
	return true
}

// reconcile applies the guarded transition for the current phase and
// returns the cause when the phase changed.
func (r *run) reconcile(s *dynamo.ParticleState) string {
	switch s.Phase {
	case dynamo.FreeFlight:
		return r.reconcileFlight(s)
	default:
		return r.reconcileContact(s)
	}
}

func (r *run) reconcileFlight(s *dynamo.ParticleState) string {
	if !r.onSurface(s.Position.Len()) {
		return ""
	}
	n := r.project(s)
	r.bounce(s, n)
	s.Phase = dynamo.Contact
	return CauseLanded
}

func (r *run) reconcileContact(s *dynamo.ParticleState) string {
	dist := s.Position.Len()
	if !r.onSurface(dist) {
		n := r.project(s)
		r.bounce(s, n)
		return ""
	}

	n := radial(s.Position, r.tun.ProjectionEpsilon)
	v2 := s.Velocity.Dot(s.Velocity)
	requiredN := -r.mass*v2/r.sp.Radius - r.mass*r.sp.Gravity*(s.Position.Y()/r.sp.Radius)
	vr := s.Velocity.Dot(n)

	if requiredN >= -r.tun.NormalForceSlack || vr < -r.tun.EscapeVelocity {
		if dist > r.sp.Radius {
			s.Position = n.Mul(r.sp.Radius)
		}
		if vr > 0 {
			s.Velocity = s.Velocity.Sub(n.Mul(vr))
		}
		return ""
	}

	s.Phase = dynamo.FreeFlight
	return CauseNormalForce
}

func (r *run) record(step int, from, to dynamo.Phase, cause string) {
	t := float64(step+1) * r.tun.Dt
	r.events = append(r.events, dynamo.Event{Step: step + 1, Time: t, From: from, To: to, Cause: cause})
	r.logger.Debug("phase transition", "step", step+1, "t", t, "from", from.String(), "to", to.String(), "cause", cause)
}

// step advances the state by one dt.
func (r *run) step(s *dynamo.ParticleState, i int) {
	force := r.sp.NetForce(*s, r.mass, r.drive, r.tun)

	if cause := r.preemptiveDetach(s); cause != "" {
		r.record(i, dynamo.Contact, dynamo.FreeFlight, cause)
	}

	r.integ.Step(s, force, r.mass, r.tun.Dt)
	r.reproject(s)

	from := s.Phase
	if cause := r.reconcile(s); cause != "" {
		r.record(i, from, s.Phase, cause)
	}
}

