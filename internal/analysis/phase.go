package analysis

import (
	"strings"

	"github.com/san-kum/spheresim/internal/dynamo"
)

// Point is one phase-space sample.
type Point struct{ X, Y float64 }

// PhasePortrait holds height (X) against radial velocity (Y) for every
// sample of a trajectory. Radial velocity is positive outward.
type PhasePortrait struct {
	Points []Point
}

// Heights returns the y coordinate of every sample.
func Heights(traj dynamo.Trajectory) []float64 {
	h := make([]float64, traj.Len())
	for i, p := range traj.Positions {
		h[i] = p.Y()
	}
	return h
}

// Speeds returns |v| for every sample.
func Speeds(traj dynamo.Trajectory) []float64 {
	s := make([]float64, traj.Len())
	for i, v := range traj.Velocities {
		s[i] = v.Len()
	}
	return s
}

// SurfaceOffsets returns |p| - radius for every sample.
func SurfaceOffsets(traj dynamo.Trajectory, radius float64) []float64 {
	d := make([]float64, traj.Len())
	for i, p := range traj.Positions {
		d[i] = p.Len() - radius
	}
	return d
}

func NewPhasePortrait(traj dynamo.Trajectory) *PhasePortrait {
	portrait := &PhasePortrait{Points: make([]Point, 0, traj.Len())}
	for i, p := range traj.Positions {
		vr := 0.0
		if l := p.Len(); l > 1e-12 {
			vr = traj.Velocities[i].Dot(p) / l
		}
		portrait.Points = append(portrait.Points, Point{X: p.Y(), Y: vr})
	}
	return portrait
}

// ToASCII plots the portrait on a width x height character grid with axes
// drawn where they cross the visible area.
func (pp *PhasePortrait) ToASCII(width, height int) string {
	if pp == nil || len(pp.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := pp.Points[0].X, pp.Points[0].X
	minY, maxY := pp.Points[0].Y, pp.Points[0].Y
	for _, p := range pp.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range pp.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the times at which the height rises through level,
// linearly interpolated between samples dt apart.
func Crossings(traj dynamo.Trajectory, dt, level float64) []float64 {
	var times []float64
	for i := 1; i < traj.Len(); i++ {
		prev, curr := traj.Positions[i-1].Y(), traj.Positions[i].Y()
		if prev < level && curr >= level {
			frac := (level - prev) / (curr - prev)
			times = append(times, (float64(i-1)+frac)*dt)
		}
	}
	return times
}
