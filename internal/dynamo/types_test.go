package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestParticleState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state ParticleState
		valid bool
	}{
		{"zero", ParticleState{}, true},
		{"normal", ParticleState{Position: mgl64.Vec3{1, 2, 3}, Velocity: mgl64.Vec3{0, -1, 0}}, true},
		{"NaN position", ParticleState{Position: mgl64.Vec3{math.NaN(), 0, 0}}, false},
		{"+Inf velocity", ParticleState{Velocity: mgl64.Vec3{0, math.Inf(1), 0}}, false},
		{"-Inf velocity", ParticleState{Velocity: mgl64.Vec3{0, 0, math.Inf(-1)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestPhase_String(t *testing.T) {
	if Contact.String() != "contact" {
		t.Errorf("Contact.String() = %q", Contact.String())
	}
	if FreeFlight.String() != "free_flight" {
		t.Errorf("FreeFlight.String() = %q", FreeFlight.String())
	}
	if Phase(7).String() != "phase(7)" {
		t.Errorf("unknown phase String() = %q", Phase(7).String())
	}
}

func TestTrajectory_AppendAndAt(t *testing.T) {
	traj := NewTrajectory(2)
	traj.Append(Sample{Position: mgl64.Vec3{1, 0, 0}, Velocity: mgl64.Vec3{0, 0, 1}})
	traj.Append(Sample{Position: mgl64.Vec3{0, -1, 0}, Velocity: mgl64.Vec3{3, 4, 0}})

	if traj.Len() != 2 || len(traj.Velocities) != 2 {
		t.Fatalf("expected 2 samples, got %d/%d", traj.Len(), len(traj.Velocities))
	}

	s, ok := traj.At(1)
	if !ok {
		t.Fatal("At(1) reported empty trajectory")
	}
	if s.Speed() != 5 {
		t.Errorf("Speed() = %v, want 5", s.Speed())
	}
}

func TestTrajectory_Clamp(t *testing.T) {
	traj := NewTrajectory(0)
	for i := 0; i < 5; i++ {
		traj.Append(Sample{Position: mgl64.Vec3{float64(i), 0, 0}})
	}

	tests := []struct {
		in, want int
	}{
		{-3, 0},
		{0, 0},
		{2, 2},
		{4, 4},
		{5, 4},
		{100, 4},
	}
	for _, tt := range tests {
		if got := traj.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTrajectory_Empty(t *testing.T) {
	var traj Trajectory
	if !traj.Empty() {
		t.Error("zero trajectory should be empty")
	}
	if traj.Clamp(10) != 0 {
		t.Error("Clamp on empty trajectory should return 0")
	}
	if _, ok := traj.At(0); ok {
		t.Error("At on empty trajectory should report !ok")
	}
	if len(traj.Times(0.005)) != 0 {
		t.Error("Times on empty trajectory should be empty")
	}
}

func TestTrajectory_Times(t *testing.T) {
	traj := NewTrajectory(3)
	for i := 0; i < 3; i++ {
		traj.Append(Sample{})
	}
	times := traj.Times(0.005)
	if math.Abs(times[2]-0.01) > 1e-12 {
		t.Errorf("times[2] = %v, want 0.01", times[2])
	}
}

func TestParameterError(t *testing.T) {
	err := InvalidParameter("radius", -1.0, "radius must be positive")
	if !errors.Is(err, ErrInvalidParameter) {
		t.Error("expected errors.Is(err, ErrInvalidParameter)")
	}

	var pe *ParameterError
	if !errors.As(err, &pe) || pe.Name != "radius" {
		t.Errorf("errors.As failed: %v", err)
	}

	expected := "dynamo: invalid parameter: radius must be positive (radius=-1)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 0.75, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimulationError should unwrap to ErrInvalidState")
	}
	expected := "step 150 (t=0.7500): dynamo: invalid state (NaN or Inf detected)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestParallelFor(t *testing.T) {
	const n = 1000
	var sum atomic.Int64
	seen := make([]int32, n)
	ParallelFor(n, func(i int) {
		sum.Add(int64(i))
		atomic.AddInt32(&seen[i], 1)
	})
	if got := sum.Load(); got != (n-1)*n/2 {
		t.Errorf("sum = %d, want %d", got, (n-1)*n/2)
	}
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}

	called := false
	ParallelFor(0, func(i int) { called = true })
	ParallelFor(-3, func(i int) { called = true })
	if called {
		t.Error("ParallelFor with n <= 0 should not call fn")
	}
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{Contact, FreeFlight} {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", p, err)
		}
		var got Phase
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if got != p {
			t.Errorf("round trip %v -> %q -> %v", p, text, got)
		}
	}

	var p Phase
	if err := p.UnmarshalText([]byte("hovering")); err == nil {
		t.Error("expected error for unknown phase")
	}
}
