package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Phase is the contact state of the particle.
type Phase int

const (
	// Contact means the particle is held on the sphere surface.
	Contact Phase = iota
	// FreeFlight means the particle moves under gravity alone.
	FreeFlight
)

func (p Phase) String() string {
	switch p {
	case Contact:
		return "contact"
	case FreeFlight:
		return "free_flight"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "contact":
		*p = Contact
	case "free_flight":
		*p = FreeFlight
	default:
		return fmt.Errorf("dynamo: unknown phase %q", text)
	}
	return nil
}

// ParticleState is the mutable per-step state of a single run.
type ParticleState struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Phase    Phase
}

func (s ParticleState) Sample() Sample {
	return Sample{Position: s.Position, Velocity: s.Velocity}
}

func (s ParticleState) IsValid() bool {
	for i := 0; i < 3; i++ {
		if !finite(s.Position[i]) || !finite(s.Velocity[i]) {
			return false
		}
	}
	return true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Sample is one emitted trajectory point.
type Sample struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

func (s Sample) Speed() float64 { return s.Velocity.Len() }

// Trajectory holds the two parallel output sequences. Both slices always
// have the same length.
type Trajectory struct {
	Positions  []mgl64.Vec3
	Velocities []mgl64.Vec3
}

func NewTrajectory(capacity int) Trajectory {
	if capacity < 0 {
		capacity = 0
	}
	return Trajectory{
		Positions:  make([]mgl64.Vec3, 0, capacity),
		Velocities: make([]mgl64.Vec3, 0, capacity),
	}
}

func (t *Trajectory) Append(s Sample) {
	t.Positions = append(t.Positions, s.Position)
	t.Velocities = append(t.Velocities, s.Velocity)
}

func (t Trajectory) Len() int    { return len(t.Positions) }
func (t Trajectory) Empty() bool { return len(t.Positions) == 0 }

// Clamp maps any frame index into [0, Len()-1]. It returns 0 for an empty
// trajectory.
func (t Trajectory) Clamp(i int) int {
	if t.Empty() || i < 0 {
		return 0
	}
	if i >= t.Len() {
		return t.Len() - 1
	}
	return i
}

// At returns the sample at the clamped index; ok is false when the
// trajectory is empty.
func (t Trajectory) At(i int) (Sample, bool) {
	if t.Empty() {
		return Sample{}, false
	}
	i = t.Clamp(i)
	return Sample{Position: t.Positions[i], Velocity: t.Velocities[i]}, true
}

// Times returns the sample timestamps for a fixed step.
func (t Trajectory) Times(dt float64) []float64 {
	times := make([]float64, t.Len())
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times
}

// StopReason records why a run ended.
type StopReason string

const (
	StopCompleted   StopReason = "completed"
	StopDegenerate  StopReason = "degenerate_input"
	StopDetached    StopReason = "detached"
	StopReachedPole StopReason = "reached_pole"
)

// Event is a phase transition observed during a run.
type Event struct {
	Step  int     `json:"step"`
	Time  float64 `json:"time"`
	From  Phase   `json:"from"`
	To    Phase   `json:"to"`
	Cause string  `json:"cause"`
}

type Metric interface {
	Name() string
	Observe(s ParticleState, t float64)
	Value() float64
	Reset()
}

type Result struct {
	Trajectory Trajectory
	Phases     []Phase
	Events     []Event
	Metrics    map[string]float64
	Dt         float64
	StopReason StopReason
}

func (r *Result) Samples() int { return r.Trajectory.Len() }
