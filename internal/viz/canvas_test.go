package viz

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(1, 3)
	if c.Grid[0][0] != rune(brailleBase|0x1|0x80) {
		t.Errorf("cell = %U", c.Grid[0][0])
	}
	if !c.IsSet(1, 3) || c.IsSet(1, 2) {
		t.Error("IsSet mismatch")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != rune(brailleBase|0x80) {
		t.Errorf("after unset cell = %U", c.Grid[0][0])
	}

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(100, 100)

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestCanvasLinesAndDots(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 9, 0)

	n := 0
	c.EachDot(func(x, y int) {
		if y != 0 {
			t.Errorf("unexpected dot at (%d,%d)", x, y)
		}
		n++
	})
	if n != 10 {
		t.Errorf("line set %d dots, want 10", n)
	}

	c.Clear()
	c.DrawDotted(0, 0, 9, 0, 3)
	n = 0
	c.EachDot(func(x, y int) { n++ })
	if n != 4 {
		t.Errorf("dotted line set %d dots, want 4", n)
	}

	// fully off-canvas segments are skipped
	c.Clear()
	c.DrawLine(-50, -50, -10, -1)
	c.EachDot(func(x, y int) { t.Errorf("dot at (%d,%d)", x, y) })
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(3, 3)
	c.Resize(0, 7)
	if c.Width != 1 || c.Height != 7 || len(c.Grid) != 7 {
		t.Errorf("resize: %dx%d", c.Width, c.Height)
	}
	w, h := c.PixelSize()
	if w != 2 || h != 28 {
		t.Errorf("pixel size %dx%d", w, h)
	}
}

func TestSphereWireframe(t *testing.T) {
	w := SphereWireframe(2, 5, 6)
	if len(w.Edges) != (5+6)*32 {
		t.Fatalf("edges = %d", len(w.Edges))
	}
	for _, e := range w.Edges {
		for _, p := range []mgl64.Vec3{e.Start, e.End} {
			if d := p.Len() - 2; d > 1e-9 || d < -1e-9 {
				t.Fatalf("vertex %v off the sphere", p)
			}
		}
	}

	if len(SphereWireframe(0, 5, 6).Edges) != 0 {
		t.Error("zero radius should give no edges")
	}
}

func TestCameraCentresOrigin(t *testing.T) {
	cam := NewCamera(1)
	x, y, _, ok := cam.Project(mgl64.Vec3{}, 120, 100)
	if !ok || x != 60 || y != 50 {
		t.Errorf("origin projected to (%d,%d,%v)", x, y, ok)
	}

	cam.RotX, cam.RotY = 0, 0
	_, top, _, _ := cam.Project(mgl64.Vec3{0, 1, 0}, 120, 100)
	_, bottom, _, _ := cam.Project(mgl64.Vec3{0, -1, 0}, 120, 100)
	if top >= 50 || bottom <= 50 {
		t.Errorf("+Y should be up: top=%d bottom=%d", top, bottom)
	}
}

func TestRender3DDrawsSphere(t *testing.T) {
	c := NewCanvas(40, 20)
	Render3D(c, SphereWireframe(1, 3, 4), NewCamera(1.1))

	n := 0
	c.EachDot(func(x, y int) { n++ })
	if n == 0 {
		t.Error("expected the sphere to be drawn")
	}

	Render3D(nil, nil, nil)
}
