package viz

import (
	"math"

	"github.com/san-kum/spheresim/internal/dynamo"
)

// Playback is a frame cursor over a recorded trajectory. The frame is kept
// in [0, Len()-1]; on an empty trajectory every move is a no-op.
type Playback struct {
	traj    dynamo.Trajectory
	dt      float64
	frame   int
	playing bool
	speed   int
}

func NewPlayback(traj dynamo.Trajectory, dt float64) *Playback {
	return &Playback{traj: traj, dt: dt, speed: 1}
}

func (p *Playback) Trajectory() dynamo.Trajectory { return p.traj }
func (p *Playback) Dt() float64                   { return p.dt }
func (p *Playback) Len() int                      { return p.traj.Len() }
func (p *Playback) Frame() int                    { return p.frame }
func (p *Playback) Playing() bool                 { return p.playing }
func (p *Playback) Speed() int                    { return p.speed }

// Enabled reports whether there is anything to scrub through.
func (p *Playback) Enabled() bool { return !p.traj.Empty() }

func (p *Playback) Time() float64 { return float64(p.frame) * p.dt }

// Seek moves to frame i, clamped, and returns the frame reached.
func (p *Playback) Seek(i int) int {
	if !p.Enabled() {
		return 0
	}
	p.frame = p.traj.Clamp(i)
	return p.frame
}

// Step moves delta frames from the current one. The sum saturates instead
// of wrapping, so huge deltas land on the first or last frame.
func (p *Playback) Step(delta int) int {
	switch {
	case delta > 0 && p.frame > math.MaxInt-delta:
		return p.Seek(math.MaxInt)
	case delta < 0 && p.frame < math.MinInt-delta:
		return p.Seek(math.MinInt)
	}
	return p.Seek(p.frame + delta)
}

func (p *Playback) Current() (dynamo.Sample, bool) {
	return p.traj.At(p.frame)
}

// Toggle flips play/pause. Playing from the last frame restarts at 0.
func (p *Playback) Toggle() {
	if !p.Enabled() {
		p.playing = false
		return
	}
	if !p.playing && p.frame == p.Len()-1 {
		p.frame = 0
	}
	p.playing = !p.playing
}

func (p *Playback) Pause() { p.playing = false }

func (p *Playback) SetSpeed(frames int) {
	if frames < 1 {
		frames = 1
	}
	p.speed = frames
}

// Advance moves forward by Speed frames while playing and pauses on the
// last frame. It reports whether the frame changed.
func (p *Playback) Advance() bool {
	if !p.playing || !p.Enabled() {
		return false
	}
	before := p.frame
	p.Step(p.speed)
	if p.frame == p.Len()-1 {
		p.playing = false
	}
	return p.frame != before
}
