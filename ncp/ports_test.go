package ncp

import (
	"errors"
	"math"
	"testing"

	"github.com/lumenlab/facade/geom"
	"github.com/lumenlab/facade/scene"
)

// squareAt builds a unit square window in the y=depth plane with its
// normal facing -Y, offset along X.
func squareAt(t *testing.T, x0, depth float64) scene.Primitive {
	t.Helper()
	pg, err := geom.NewPolygon([]geom.Vector{
		{X: x0, Y: depth, Z: 0},
		{X: x0 + 1, Y: depth, Z: 0},
		{X: x0 + 1, Y: depth, Z: 1},
		{X: x0, Y: depth, Z: 1},
	})
	if err != nil {
		t.Fatalf("unable to build window polygon: %v", err)
	}
	return scene.FromPolygon(pg, "glazing", "window")
}

func TestMergeWindowsPoolsCoplanarWindows(t *testing.T) {
	merged, err := MergeWindows([]scene.Primitive{
		squareAt(t, 0, 0),
		squareAt(t, 1, 0),
	})
	if err != nil {
		t.Fatalf("unable to merge coplanar windows: %v", err)
	}

	pg, err := merged.Polygon()
	if err != nil {
		t.Fatalf("merged primitive is not a polygon: %v", err)
	}
	if got := pg.Area(); math.Abs(got-2) > geom.Eps {
		t.Fatalf("expected merged area 2; got %g", got)
	}
	if !pg.Normal().Equal(geom.Vector{Y: -1}) {
		t.Fatalf("merged normal changed; got %v", pg.Normal())
	}
}

func TestMergeWindowsRejectsNonCoplanar(t *testing.T) {
	// Parallel planes: same normal, offset along it.
	_, err := MergeWindows([]scene.Primitive{
		squareAt(t, 0, 0),
		squareAt(t, 1, 0.5),
	})
	var gerr *geom.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected geometry error for parallel offset windows; got %v", err)
	}

	// Distinct normals.
	tilted, err := squareAt(t, 1, 0).Polygon()
	if err != nil {
		t.Fatal(err)
	}
	tilted = tilted.Rotate(geom.Vector{Z: 1}, 0.3)
	_, err = MergeWindows([]scene.Primitive{
		squareAt(t, 0, 0),
		scene.FromPolygon(tilted, "glazing", "window"),
	})
	if !errors.As(err, &gerr) {
		t.Fatalf("expected geometry error for tilted window; got %v", err)
	}
}

func TestPortsFromWindowExtrudesShell(t *testing.T) {
	ports, err := PortsFromWindow([]scene.Primitive{squareAt(t, 0, 0)}, 0.5, 1.0)
	if err != nil {
		t.Fatalf("unable to synthesize ports: %v", err)
	}
	if len(ports) != 5 {
		t.Fatalf("expected 5 ports; got %d", len(ports))
	}

	for i, p := range ports {
		if p.Modifier != portModifier {
			t.Fatalf("port %d modifier: expected %q; got %q", i, portModifier, p.Modifier)
		}
		if want := portName(i); p.Identifier != want {
			t.Fatalf("port %d identifier: expected %q; got %q", i, want, p.Identifier)
		}
	}

	// The extrusion cap sits depth behind the window, against the
	// reversed window normal.
	capFace, err := ports[0].Polygon()
	if err != nil {
		t.Fatalf("port 0 is not a polygon: %v", err)
	}
	if got := capFace.Centroid().Y; math.Abs(got-0.5) > geom.Eps {
		t.Fatalf("expected extrusion cap at y=0.5; got y=%g", got)
	}
}

func TestPortsFromShadingAxisAligned(t *testing.T) {
	window := squareAt(t, 0, 0)
	shadePg, err := geom.NewPolygon([]geom.Vector{
		{X: -0.2, Y: -0.4, Z: 1.1},
		{X: 1.2, Y: -0.4, Z: 1.1},
		{X: 1.2, Y: -0.1, Z: 1.1},
		{X: -0.2, Y: -0.1, Z: 1.1},
	})
	if err != nil {
		t.Fatalf("unable to build shading polygon: %v", err)
	}
	shade := scene.FromPolygon(shadePg, "metal", "overhang")

	ports, err := PortsFromShading([]scene.Primitive{window}, []scene.Primitive{shade})
	if err != nil {
		t.Fatalf("unable to synthesize bounding ports: %v", err)
	}
	if len(ports) != 5 {
		t.Fatalf("expected 5 ports; got %d", len(ports))
	}

	wn := geom.Vector{Y: -1}
	for i, p := range ports {
		pg, err := p.Polygon()
		if err != nil {
			t.Fatalf("port %d is not a polygon: %v", i, err)
		}
		if pg.Normal().Reverse().Equal(wn) {
			t.Fatalf("port %d still covers the window opening", i)
		}
	}
}

func TestPortsFromShadingRotationalSearch(t *testing.T) {
	// A square window rotated 30 degrees off axis: the search must
	// recover the frame where the box degenerates onto the window
	// plane and drop the face flush with it.
	rot := -30 * math.Pi / 180
	windowPg, err := geom.NewPolygon([]geom.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 0},
	})
	if err != nil {
		t.Fatalf("unable to build window polygon: %v", err)
	}
	windowPg = windowPg.Rotate(geom.Vector{Z: 1}, rot)
	window := scene.FromPolygon(windowPg, "glazing", "window")

	shadePg, err := geom.NewPolygon([]geom.Vector{
		{X: -0.2, Y: -0.4, Z: 1.1},
		{X: 1.2, Y: -0.4, Z: 1.1},
		{X: 1.2, Y: -0.1, Z: 1.1},
		{X: -0.2, Y: -0.1, Z: 1.1},
	})
	if err != nil {
		t.Fatalf("unable to build shading polygon: %v", err)
	}
	shadePg = shadePg.Rotate(geom.Vector{Z: 1}, rot)
	shade := scene.FromPolygon(shadePg, "metal", "overhang")

	ports, err := PortsFromShading([]scene.Primitive{window}, []scene.Primitive{shade})
	if err != nil {
		t.Fatalf("unable to synthesize bounding ports: %v", err)
	}
	if len(ports) != 5 {
		t.Fatalf("expected 5 ports; got %d", len(ports))
	}

	wn := windowPg.Normal()
	sawOpposite := false
	for i, p := range ports {
		pg, err := p.Polygon()
		if err != nil {
			t.Fatalf("port %d is not a polygon: %v", i, err)
		}
		n := pg.Normal().Round(3)
		if n.Equal(wn.Round(3)) {
			t.Fatalf("port %d faces the window opening", i)
		}
		if n.Equal(wn.Reverse().Round(3)) {
			sawOpposite = true
		}
	}
	if !sawOpposite {
		t.Fatal("expected a port opposite the window plane")
	}
}

func TestMatchSideFaceTolerance(t *testing.T) {
	cases := []struct {
		normal geom.Vector
		want   int
	}{
		{geom.Vector{X: 1}, 0},
		{geom.Vector{Y: -1}, 1},
		{geom.Vector{X: -1}, 2},
		{geom.Vector{Y: 1}, 3},
		{geom.Vector{X: 0.99999, Y: 0.00001}, 0},
		{geom.Vector{X: 0.7, Y: 0.7}, -1},
		{geom.Vector{Z: 1}, -1},
	}
	for _, c := range cases {
		if got := matchSideFace(c.normal); got != c.want {
			t.Fatalf("matchSideFace(%v): expected %d; got %d", c.normal, c.want, got)
		}
	}
}
