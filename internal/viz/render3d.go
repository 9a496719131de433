package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is an orbit camera looking at the origin from +Z.
type Camera struct {
	RotX, RotY float64
	Zoom       float64
	// Extent is the world distance from the origin mapped to the edge of
	// the viewport at zoom 1.
	Extent float64
	// Distance of the eye from the origin in units of Extent.
	Distance float64
}

func NewCamera(extent float64) *Camera {
	c := &Camera{Extent: extent, Distance: 4}
	c.Reset()
	return c
}

// Reset restores a slightly tilted view from above the equator.
func (c *Camera) Reset() {
	c.RotX, c.RotY, c.Zoom = 0.35, -0.5, 1
	if c.Extent <= 0 {
		c.Extent = 1
	}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.RotX).Mul3(mgl64.Rotate3DY(c.RotY))
}

// Project maps a world point to canvas sub-pixels of a sw x sh viewport. The
// returned depth grows toward the viewer; ok is false behind the eye.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (x, y int, depth float64, ok bool) {
	return c.project(c.view(), p, sw, sh)
}

func (c *Camera) project(view mgl64.Mat3, p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := view.Mul3x1(p).Mul(c.Zoom / c.Extent)
	if rot.Z() >= c.Distance-0.05 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z())
	half := 0.45 * float64(min(sw, sh))
	sx := int(math.Round(rot.X()*persp*half)) + sw/2
	sy := int(math.Round(-rot.Y()*persp*half)) + sh/2
	return sx, sy, rot.Z(), true
}

type EdgeKind int

const (
	// EdgeSurface lines are dotted when they face away from the viewer.
	EdgeSurface EdgeKind = iota
	EdgeSolid
)

type Edge struct {
	Start, End mgl64.Vec3
	Kind       EdgeKind
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(s, e mgl64.Vec3, k EdgeKind) { w.Edges = append(w.Edges, Edge{s, e, k}) }
func (w *Wireframe) Clear()                              { w.Edges = w.Edges[:0] }

// AddPath connects consecutive points with solid edges.
func (w *Wireframe) AddPath(points []mgl64.Vec3) {
	for i := 1; i < len(points); i++ {
		w.AddEdge(points[i-1], points[i], EdgeSolid)
	}
}

// Render3D draws the wireframe to the canvas.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.PixelSize()
	view := cam.view()
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.project(view, e.Start, sw, sh)
		x2, y2, d2, v2 := cam.project(view, e.End, sw, sh)
		if !v1 || !v2 {
			continue
		}
		if e.Kind == EdgeSurface && d1+d2 < 0 {
			c.DrawDotted(x1, y1, x2, y2, 3)
			continue
		}
		c.DrawLine(x1, y1, x2, y2)
	}
}

// SphereWireframe builds lat latitude rings and lon meridians of a sphere
// centred on the origin, each sampled with 32 segments.
func SphereWireframe(radius float64, lat, lon int) *Wireframe {
	const segments = 32
	w := NewWireframe()
	if radius <= 0 {
		return w
	}

	for i := 1; i <= lat; i++ {
		polar := math.Pi * float64(i) / float64(lat+1)
		y := -radius * math.Cos(polar)
		r := radius * math.Sin(polar)
		prev := mgl64.Vec3{r, y, 0}
		for s := 1; s <= segments; s++ {
			a := 2 * math.Pi * float64(s) / segments
			next := mgl64.Vec3{r * math.Cos(a), y, r * math.Sin(a)}
			w.AddEdge(prev, next, EdgeSurface)
			prev = next
		}
	}

	for j := 0; j < lon; j++ {
		az := math.Pi * float64(j) / float64(lon)
		ca, sa := math.Cos(az), math.Sin(az)
		prev := mgl64.Vec3{0, -radius, 0}
		for s := 1; s <= segments; s++ {
			polar := 2 * math.Pi * float64(s) / segments
			r := radius * math.Sin(polar)
			next := mgl64.Vec3{r * ca, -radius * math.Cos(polar), r * sa}
			w.AddEdge(prev, next, EdgeSurface)
			prev = next
		}
	}
	return w
}

func CreateAxesWireframe(l float64) *Wireframe {
	w := NewWireframe()
	w.AddEdge(mgl64.Vec3{}, mgl64.Vec3{l, 0, 0}, EdgeSolid)
	w.AddEdge(mgl64.Vec3{}, mgl64.Vec3{0, l, 0}, EdgeSolid)
	w.AddEdge(mgl64.Vec3{}, mgl64.Vec3{0, 0, l}, EdgeSolid)
	return w
}
