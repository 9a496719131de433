package metrics

import (
	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/physics"
)

// DriveWork integrates the power delivered by the tangential drive over
// the contact samples, using the spacing between observation times.
type DriveWork struct {
	name    string
	drive   float64
	tuning  physics.Tuning
	work    float64
	lastT   float64
	samples int
}

func NewDriveWork(drive float64, tuning physics.Tuning) *DriveWork {
	return &DriveWork{
		name:   "drive_work",
		drive:  drive,
		tuning: tuning,
	}
}

func (w *DriveWork) Name() string {
	return w.name
}

func (w *DriveWork) Observe(s dynamo.ParticleState, t float64) {
	if w.samples > 0 && s.Phase == dynamo.Contact {
		f := physics.DriveForce(s.Position, w.drive, w.tuning)
		w.work += f.Dot(s.Velocity) * (t - w.lastT)
	}
	w.lastT = t
	w.samples++
}

func (w *DriveWork) Value() float64 {
	return w.work
}

func (w *DriveWork) Reset() {
	w.work = 0
	w.lastT = 0
	w.samples = 0
}
