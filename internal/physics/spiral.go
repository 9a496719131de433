package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
)

const (
	spiralDt = 0.01
	// spiralStartOffset lifts the start just above the south pole, where the
	// spiral would otherwise be degenerate.
	spiralStartOffset = 0.01
)

// Spiral is a prescribed path climbing from the south pole: the azimuth
// accelerates at Acceleration/R and the polar angle closes at Pitch times
// that rate.
type Spiral struct {
	Acceleration float64 `yaml:"acceleration"`
	Pitch        float64 `yaml:"pitch"`
}

// RunSpiral samples the spiral path every 0.01 s until simTime, the first
// step whose required normal force turns negative, or the north pole.
func (s *SphereSimulator) RunSpiral(sp Spiral, simTime, mass float64, metrics ...dynamo.Metric) (*dynamo.Result, error) {
	res := &dynamo.Result{
		Dt:      spiralDt,
		Metrics: make(map[string]float64),
	}
	if math.IsNaN(simTime) || math.IsInf(simTime, 1) || math.IsNaN(sp.Acceleration) || math.IsNaN(sp.Pitch) {
		return nil, dynamo.InvalidParameter("spiral", sp, "spiral parameters must be finite")
	}
	if simTime <= 0 || mass <= 0 {
		res.Trajectory = dynamo.NewTrajectory(0)
		res.StopReason = dynamo.StopDegenerate
		return res, nil
	}

	if simTime/spiralDt > float64(s.tuning.MaxSteps) {
		return nil, dynamo.InvalidParameter("sim_time", simTime, "run needs more than max_steps steps")
	}

	R, g := s.sphere.Radius, s.sphere.Gravity
	alpha := sp.Acceleration / R
	steps := int(simTime / spiralDt)
	capacity := min(max(steps, 0), preallocLimit)
	res.Trajectory = dynamo.NewTrajectory(capacity)
	res.Phases = make([]dynamo.Phase, 0, capacity)
	res.StopReason = dynamo.StopCompleted

	for _, m := range metrics {
		m.Reset()
	}

	for i := 0; i < steps; i++ {
		t := float64(i) * spiralDt

		phi := 0.5 * alpha * t * t
		theta := math.Pi - spiralStartOffset - 0.5*sp.Pitch*alpha*t*t
		theta = math.Max(0, math.Min(math.Pi, theta))
		phiDot := alpha * t
		thetaDot := -sp.Pitch * alpha * t

		sinT, cosT := math.Sincos(theta)
		sinP, cosP := math.Sincos(phi)

		// Inward normal force needed to hold the path; cos(theta) is -1 at
		// the south pole where the wall carries the full weight.
		normal := mass * (R*(thetaDot*thetaDot+sinT*sinT*phiDot*phiDot) - g*cosT)
		if normal < 0 && i > 0 {
			s.logger.Debug("spiral detached", "t", t, "step", i, "normal", normal)
			res.StopReason = dynamo.StopDetached
			break
		}

		// Z-up spherical coordinates, emitted Y-up.
		x, y, z := R*sinT*cosP, R*sinT*sinP, R*cosT
		vx := R * (cosT*cosP*thetaDot - sinT*sinP*phiDot)
		vy := R * (cosT*sinP*thetaDot + sinT*cosP*phiDot)
		vz := -R * sinT * thetaDot

		st := dynamo.ParticleState{
			Position: mgl64.Vec3{x, z, y},
			Velocity: mgl64.Vec3{vx, vz, vy},
			Phase:    dynamo.Contact,
		}
		res.Trajectory.Append(st.Sample())
		res.Phases = append(res.Phases, st.Phase)
		for _, m := range metrics {
			m.Observe(st, t)
		}

		if theta == 0 && i > 0 {
			s.logger.Debug("spiral reached north pole", "t", t, "step", i)
			res.StopReason = dynamo.StopReachedPole
			break
		}
	}

	for _, m := range metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}
