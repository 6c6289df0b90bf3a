package geom

import (
	"math"
	"testing"
)

func TestConvexHullDropsInteriorPoints(t *testing.T) {
	normal := Vector{0, 0, 1}
	points := []Vector{
		{0, 0, 0},
		{4, 0, 0},
		{4, 4, 0},
		{0, 4, 0},
		// interior and edge points
		{2, 2, 0},
		{2, 0, 0},
	}

	hull, err := ConvexHull(points, normal)
	if err != nil {
		t.Fatal(err)
	}

	if len(hull.Vertices()) != 4 {
		t.Fatalf("expected 4 hull vertices; got %d", len(hull.Vertices()))
	}

	if !hull.Normal().Equal(normal) {
		t.Fatalf("expected hull normal %v; got %v", normal, hull.Normal())
	}

	if math.Abs(hull.Area()-16) > Eps {
		t.Fatalf("expected hull area 16; got %g", hull.Area())
	}
}

func TestConvexHullOfTwoCoplanarWindows(t *testing.T) {
	// Two offset squares sharing the plane x=0; hull must cover both.
	normal := Vector{1, 0, 0}
	points := []Vector{
		{0, 0, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1},
		{0, 2, 0}, {0, 3, 0}, {0, 3, 1}, {0, 2, 1},
	}

	hull, err := ConvexHull(points, normal)
	if err != nil {
		t.Fatal(err)
	}

	if !hull.Normal().Equal(normal) {
		t.Fatalf("expected hull normal %v; got %v", normal, hull.Normal())
	}

	if math.Abs(hull.Area()-3) > Eps {
		t.Fatalf("expected hull area 3; got %g", hull.Area())
	}

	// Hull vertices must come from the input set.
	for _, v := range hull.Vertices() {
		found := false
		for _, p := range points {
			if v.Equal(p) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("hull vertex %v not among input points", v)
		}
	}
}

func TestConvexHullRejectsCollinear(t *testing.T) {
	_, err := ConvexHull([]Vector{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, Vector{0, 0, 1})
	if err == nil {
		t.Fatal("expected error for collinear input")
	}
}
