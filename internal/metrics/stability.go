package metrics

import (
	"math"

	"github.com/san-kum/spheresim/internal/dynamo"
)

// ContactFraction is the share of samples spent on the surface.
type ContactFraction struct {
	name     string
	contacts int
	samples  int
}

func NewContactFraction() *ContactFraction {
	return &ContactFraction{
		name: "contact_fraction",
	}
}

func (c *ContactFraction) Name() string {
	return c.name
}

func (c *ContactFraction) Observe(s dynamo.ParticleState, t float64) {
	c.samples++
	if s.Phase == dynamo.Contact {
		c.contacts++
	}
}

func (c *ContactFraction) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.contacts) / float64(c.samples)
}

func (c *ContactFraction) Reset() {
	c.contacts = 0
	c.samples = 0
}

// SurfaceDeviation is the largest ||p| - R| seen over contact samples.
type SurfaceDeviation struct {
	radius float64
	max    float64
}

func NewSurfaceDeviation(radius float64) *SurfaceDeviation {
	return &SurfaceDeviation{radius: radius}
}

func (d *SurfaceDeviation) Name() string { return "surface_deviation" }

func (d *SurfaceDeviation) Observe(s dynamo.ParticleState, t float64) {
	if s.Phase != dynamo.Contact {
		return
	}
	d.max = math.Max(d.max, math.Abs(s.Position.Len()-d.radius))
}

func (d *SurfaceDeviation) Value() float64 { return d.max }

func (d *SurfaceDeviation) Reset() { d.max = 0 }

// Detachments counts contact to free-flight changes between consecutive
// samples. A detach and re-land inside one step is not visible here.
type Detachments struct {
	count   int
	last    dynamo.Phase
	started bool
}

func NewDetachments() *Detachments {
	return &Detachments{}
}

func (d *Detachments) Name() string { return "detachments" }

func (d *Detachments) Observe(s dynamo.ParticleState, t float64) {
	if d.started && d.last == dynamo.Contact && s.Phase == dynamo.FreeFlight {
		d.count++
	}
	d.last = s.Phase
	d.started = true
}

func (d *Detachments) Value() float64 { return float64(d.count) }

func (d *Detachments) Reset() {
	d.count = 0
	d.started = false
}
