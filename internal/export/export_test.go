package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/storage"
	"github.com/san-kum/spheresim/internal/viz"
)

func arc() dynamo.Trajectory {
	traj := dynamo.NewTrajectory(3)
	traj.Append(dynamo.Sample{Position: mgl64.Vec3{0, -1, 0}, Velocity: mgl64.Vec3{1, 0, 0}})
	traj.Append(dynamo.Sample{Position: mgl64.Vec3{0.7, -0.7, 0}, Velocity: mgl64.Vec3{0.7, 0.7, 0}})
	traj.Append(dynamo.Sample{Position: mgl64.Vec3{1, 0, 0}, Velocity: mgl64.Vec3{0, 1, 0}})
	return traj
}

func TestTrajectorySVG(t *testing.T) {
	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, arc(), 1, PlaneXY, 200, 200); err != nil {
		t.Fatalf("svg: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("malformed document")
	}
	// outline radius is 0.45 of the smaller side
	if !strings.Contains(out, `<circle cx="100.0" cy="100.0" r="90.0"`) {
		t.Error("missing sphere outline")
	}
	// start at the south pole, screen y grows downward
	if !strings.Contains(out, "M100.0,190.0") {
		t.Errorf("path should start at the south pole:\n%s", out)
	}
	if !strings.Contains(out, "L190.0,100.0") {
		t.Error("path should end on the equator")
	}
}

func TestTrajectorySVGPlanes(t *testing.T) {
	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, arc(), 1, PlaneZY, 200, 200); err != nil {
		t.Fatalf("svg: %v", err)
	}
	// z is zero throughout, so the path stays on the vertical centre line
	if strings.Contains(buf.String(), "L190.0") {
		t.Error("zy plane should drop x")
	}

	if err := TrajectorySVG(&buf, arc(), 1, Plane("yz"), 200, 200); err == nil {
		t.Error("expected error for unknown plane")
	}
	if err := TrajectorySVG(&buf, arc(), 0, PlaneXY, 200, 200); err == nil {
		t.Error("expected error for zero radius")
	}
}

func TestTrajectorySVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, dynamo.NewTrajectory(0), 2, PlaneXZ, 100, 100); err != nil {
		t.Fatalf("svg: %v", err)
	}
	if strings.Contains(buf.String(), "<path") {
		t.Error("empty trajectory should draw no path")
	}
}

func TestCanvasSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	var buf bytes.Buffer
	if err := CanvasSVG(&buf, c, 2, "#00ff00"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(out, `cx="7.0" cy="7.0"`) {
		t.Errorf("dot position wrong:\n%s", out)
	}

	if err := CanvasSVG(&buf, nil, 1, "#fff"); err == nil {
		t.Error("expected error for nil canvas")
	}
}

func TestWireframeSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := WireframeSVG(&buf, arc(), 1, 40, 20); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "<circle") == 0 {
		t.Error("expected dots")
	}
}

func TestWriteJSON(t *testing.T) {
	meta := storage.RunMetadata{ID: "dynamic_1", Model: "dynamic", Radius: 1, Dt: 0.5}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, meta, arc()); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Run.ID != "dynamic_1" || got.Steps != 3 {
		t.Errorf("unexpected header: %+v", got.Run)
	}
	if got.Times[2] != 1 {
		t.Errorf("times = %v", got.Times)
	}
	if got.Positions[1] != [3]float64{0.7, -0.7, 0} {
		t.Errorf("positions[1] = %v", got.Positions[1])
	}
}
