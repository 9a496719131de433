package export

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/viz"
)

// Plane names a pair of world axes: the first maps to screen x, the second
// to screen y (pointing up).
type Plane string

const (
	PlaneXY Plane = "xy"
	PlaneXZ Plane = "xz"
	PlaneZY Plane = "zy"
)

func (p Plane) axes() (int, int, error) {
	switch p {
	case PlaneXY, "":
		return 0, 1, nil
	case PlaneXZ:
		return 0, 2, nil
	case PlaneZY:
		return 2, 1, nil
	}
	return 0, 0, fmt.Errorf("unknown plane %q (want xy, xz or zy)", string(p))
}

// TrajectorySVG writes the trajectory projected onto plane, inside the
// sphere's outline, with start and end markers.
func TrajectorySVG(w io.Writer, traj dynamo.Trajectory, radius float64, plane Plane, width, height int) error {
	ax, ay, err := plane.axes()
	if err != nil {
		return err
	}
	if radius <= 0 {
		return fmt.Errorf("radius must be positive, got %v", radius)
	}

	cx, cy := float64(width)/2, float64(height)/2
	scale := 0.45 * math.Min(float64(width), float64(height)) / radius
	screen := func(p mgl64.Vec3) (float64, float64) {
		return cx + p[ax]*scale, cy - p[ay]*scale
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#444466" stroke-width="1"/>
`, width, height, width, height, cx, cy, radius*scale)
	fmt.Fprintf(bw, `<text x="8" y="18" fill="#888899" font-family="monospace" font-size="12">%s plane, R=%g</text>
`, string(plane), radius)

	if traj.Len() > 1 {
		bw.WriteString(`<path fill="none" stroke="#00ffff" stroke-width="1.2" d="`)
		for i, p := range traj.Positions {
			x, y := screen(p)
			if i == 0 {
				fmt.Fprintf(bw, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			}
		}
		bw.WriteString("\"/>\n")
	}
	if !traj.Empty() {
		x, y := screen(traj.Positions[0])
		fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="4" fill="#00ff88"/>
`, x, y)
		x, y = screen(traj.Positions[traj.Len()-1])
		fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="4" fill="#ff4444"/>
`, x, y)
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// CanvasSVG converts a Braille canvas to SVG, one circle per dot.
func CanvasSVG(w io.Writer, canvas *viz.Canvas, scale float64, color string) error {
	if canvas == nil {
		return fmt.Errorf("nil canvas")
	}
	pw, ph := canvas.PixelSize()
	width, height := float64(pw)*scale, float64(ph)*scale

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, color)

	dot := scale * 0.4
	canvas.EachDot(func(x, y int) {
		fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, (float64(x)+0.5)*scale, (float64(y)+0.5)*scale, dot)
	})

	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// WireframeSVG renders the sphere wireframe and trajectory through the
// terminal camera and writes the resulting canvas as SVG.
func WireframeSVG(w io.Writer, traj dynamo.Trajectory, radius float64, cols, rows int) error {
	canvas := viz.NewCanvas(cols, rows)
	cam := viz.NewCamera(radius * 1.1)
	viz.Render3D(canvas, viz.SphereWireframe(radius, 5, 6), cam)
	path := viz.NewWireframe()
	path.AddPath(traj.Positions)
	viz.Render3D(canvas, path, cam)
	return CanvasSVG(w, canvas, 4, "#00ffff")
}
