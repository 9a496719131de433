package viz

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/spheresim/internal/dynamo"
)

func lineTrajectory(n int) dynamo.Trajectory {
	traj := dynamo.NewTrajectory(n)
	for i := 0; i < n; i++ {
		traj.Append(dynamo.Sample{Position: mgl64.Vec3{float64(i), 0, 0}, Velocity: mgl64.Vec3{1, 0, 0}})
	}
	return traj
}

func TestPlaybackClampsFrame(t *testing.T) {
	pb := NewPlayback(lineTrajectory(10), 0.005)

	tests := []struct {
		seek, want int
	}{
		{-5, 0},
		{3, 3},
		{9, 9},
		{100, 9},
	}
	for _, tt := range tests {
		if got := pb.Seek(tt.seek); got != tt.want {
			t.Errorf("Seek(%d) = %d, want %d", tt.seek, got, tt.want)
		}
	}

	pb.Seek(8)
	if got := pb.Step(5); got != 9 {
		t.Errorf("Step past end = %d, want 9", got)
	}
	if got := pb.Step(-50); got != 0 {
		t.Errorf("Step before start = %d, want 0", got)
	}

	pb.Seek(4)
	s, ok := pb.Current()
	if !ok || s.Position.X() != 4 {
		t.Errorf("Current = %v, %v", s, ok)
	}
	if pb.Time() != 4*0.005 {
		t.Errorf("Time = %v", pb.Time())
	}
}

func TestPlaybackStepSaturates(t *testing.T) {
	pb := NewPlayback(lineTrajectory(10), 0.005)

	pb.Seek(3)
	if got := pb.Step(math.MaxInt); got != 9 {
		t.Errorf("Step(MaxInt) = %d, want 9", got)
	}
	if got := pb.Step(math.MaxInt); got != 9 {
		t.Errorf("Step(MaxInt) from the end = %d, want 9", got)
	}
	if got := pb.Step(math.MinInt); got != 0 {
		t.Errorf("Step(MinInt) = %d, want 0", got)
	}
}

func TestPlaybackEmpty(t *testing.T) {
	pb := NewPlayback(dynamo.NewTrajectory(0), 0.005)

	if pb.Enabled() {
		t.Error("empty playback should be disabled")
	}
	if pb.Seek(5) != 0 || pb.Step(1) != 0 {
		t.Error("scrubbing an empty trajectory should stay at 0")
	}
	if _, ok := pb.Current(); ok {
		t.Error("expected no current sample")
	}
	pb.Toggle()
	if pb.Playing() || pb.Advance() {
		t.Error("empty playback must not play")
	}
}

func TestPlaybackAdvanceStopsAtEnd(t *testing.T) {
	pb := NewPlayback(lineTrajectory(5), 0.005)
	pb.SetSpeed(3)
	pb.Toggle()

	if !pb.Advance() || pb.Frame() != 3 {
		t.Fatalf("frame = %d, want 3", pb.Frame())
	}
	if !pb.Advance() || pb.Frame() != 4 {
		t.Fatalf("frame = %d, want 4", pb.Frame())
	}
	if pb.Playing() {
		t.Error("should pause on the last frame")
	}
	if pb.Advance() {
		t.Error("advance while paused should not move")
	}

	// playing again from the end restarts
	pb.Toggle()
	if pb.Frame() != 0 || !pb.Playing() {
		t.Errorf("restart: frame=%d playing=%v", pb.Frame(), pb.Playing())
	}

	pb.SetSpeed(0)
	if pb.Speed() != 1 {
		t.Errorf("speed floor = %d, want 1", pb.Speed())
	}
}
