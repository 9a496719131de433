package physics

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/integrators"
	"github.com/san-kum/spheresim/internal/logging"
)

// preallocLimit caps the up-front sample allocation for very long runs.
const preallocLimit = 1 << 20

// SphereSimulator integrates a point mass on the inner surface of a sphere.
// It is immutable after New, so one instance can serve concurrent runs.
type SphereSimulator struct {
	sphere Sphere
	tuning Tuning
	integ  integrators.Stepper
	logger *slog.Logger
}

type Option func(*SphereSimulator)

func WithTuning(t Tuning) Option {
	return func(s *SphereSimulator) { s.tuning = t.withDefaults() }
}

func WithGravity(g float64) Option {
	return func(s *SphereSimulator) {
		if g > 0 {
			s.sphere.Gravity = g
		}
	}
}

func WithIntegrator(integ integrators.Stepper) Option {
	return func(s *SphereSimulator) {
		if integ != nil {
			s.integ = integ
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *SphereSimulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(radius float64, opts ...Option) (*SphereSimulator, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, dynamo.InvalidParameter("radius", radius, "radius must be positive")
	}
	s := &SphereSimulator{
		sphere: Sphere{Radius: radius, Gravity: StandardGravity},
		tuning: DefaultTuning(),
		integ:  integrators.NewSymplecticEuler(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SphereSimulator) Sphere() Sphere  { return s.sphere }
func (s *SphereSimulator) Radius() float64 { return s.sphere.Radius }
func (s *SphereSimulator) Tuning() Tuning  { return s.tuning }
func (s *SphereSimulator) Dt() float64     { return s.tuning.Dt }

// Simulate returns the position and velocity sequences of one run.
// Non-positive simTime or mass yields an empty trajectory and no error.
func (s *SphereSimulator) Simulate(p0, v0 mgl64.Vec3, drive, simTime, mass float64) (dynamo.Trajectory, error) {
	res, err := s.Run(p0, v0, drive, simTime, mass)
	if err != nil {
		return dynamo.Trajectory{}, err
	}
	return res.Trajectory, nil
}

// Run is Simulate plus the per-sample phases, the transition log and the
// values of the given metrics. Metrics are reset before use.
func (s *SphereSimulator) Run(p0, v0 mgl64.Vec3, drive, simTime, mass float64, metrics ...dynamo.Metric) (*dynamo.Result, error) {
	tun := s.tuning
	res := &dynamo.Result{
		Dt:      tun.Dt,
		Metrics: make(map[string]float64),
	}

	if math.IsNaN(simTime) || math.IsNaN(mass) || math.IsInf(simTime, 1) || math.IsInf(mass, 1) {
		return nil, dynamo.InvalidParameter("sim_time", simTime, "sim_time and mass must be finite")
	}
	if simTime <= 0 || mass <= 0 {
		s.logger.Debug("degenerate input", "sim_time", simTime, "mass", mass)
		res.Trajectory = dynamo.NewTrajectory(0)
		res.StopReason = dynamo.StopDegenerate
		return res, nil
	}

	start := dynamo.ParticleState{Position: p0, Velocity: v0}
	if !start.IsValid() {
		return nil, dynamo.InvalidParameter("initial_state", start, "initial state must be finite")
	}
	if math.IsNaN(drive) || drive < 0 {
		drive = 0
	}

	r := s.sphere.Radius
	if p0.Dot(p0) > r*r+tun.OutsideTolerance {
		return nil, dynamo.InvalidParameter("initial_position", p0, "initial position outside sphere")
	}

	if simTime/tun.Dt > float64(tun.MaxSteps) {
		return nil, dynamo.InvalidParameter("sim_time", simTime, "run needs more than max_steps steps")
	}

	rn := &run{
		sp:     s.sphere,
		tun:    tun,
		mass:   mass,
		drive:  drive,
		integ:  s.integ,
		logger: s.logger,
	}
	st := start
	rn.initialize(&st)

	steps := int(simTime / tun.Dt)
	capacity := min(max(steps+1, 0), preallocLimit)
	res.Trajectory = dynamo.NewTrajectory(capacity)
	res.Phases = make([]dynamo.Phase, 0, capacity)

	for _, m := range metrics {
		m.Reset()
	}
	emit := func(t float64) {
		res.Trajectory.Append(st.Sample())
		res.Phases = append(res.Phases, st.Phase)
		for _, m := range metrics {
			m.Observe(st, t)
		}
	}

	s.logger.Debug("simulation start",
		"radius", r, "mass", mass, "drive", drive, "sim_time", simTime,
		"steps", steps, "phase", st.Phase.String())

	emit(0)
	for i := 0; i < steps; i++ {
		rn.step(&st, i)
		emit(float64(i+1) * tun.Dt)
	}

	for _, m := range metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	res.Events = rn.events
	res.StopReason = dynamo.StopCompleted

	s.logger.Debug("simulation done", "samples", res.Trajectory.Len(), "transitions", len(res.Events))
	return res, nil
}

// Reproject applies the hard surface constraint to s in place using this
// simulator's radius and tolerances. It reports whether s was moved.
func (s *SphereSimulator) Reproject(st *dynamo.ParticleState) bool {
	rn := &run{sp: s.sphere, tun: s.tuning}
	return rn.reproject(st)
}

// Simulate is the six-argument form: it builds a simulator for radius and
// runs it once.
func Simulate(p0, v0 mgl64.Vec3, drive, simTime, mass, radius float64) (dynamo.Trajectory, error) {
	sim, err := New(radius)
	if err != nil {
		return dynamo.Trajectory{}, err
	}
	return sim.Simulate(p0, v0, drive, simTime, mass)
}
