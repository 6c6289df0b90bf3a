package geom

import (
	"sort"

	planar "github.com/jbeda/geom"
)

// indexed 2D projection of a 3D point.
type planePoint struct {
	planar.Coord
	idx int
}

func cross2(o, a, b planar.Coord) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ConvexHull computes the 2D convex hull of a coplanar point set in the
// plane given by normal and lifts it back to 3D. The returned polygon
// winds so that its normal matches the given normal.
func ConvexHull(points []Vector, normal Vector) (Polygon, error) {
	if len(points) < 3 {
		return Polygon{}, errorf("hull", "need at least 3 points; got %d", len(points))
	}
	n := normal.Unit()
	if n.Length() < Eps {
		return Polygon{}, errorf("hull", "zero plane normal")
	}

	// In-plane basis (u, v) with u x v = n.
	ref := Vector{1, 0, 0}
	if n.Dot(ref) > 0.9 || n.Dot(ref) < -0.9 {
		ref = Vector{0, 1, 0}
	}
	u := ref.Cross(n).Unit()
	v := n.Cross(u)

	projected := make([]planePoint, len(points))
	for i, pt := range points {
		projected[i] = planePoint{planar.Coord{X: pt.Dot(u), Y: pt.Dot(v)}, i}
	}
	sort.Slice(projected, func(i, j int) bool {
		if projected[i].X != projected[j].X {
			return projected[i].X < projected[j].X
		}
		return projected[i].Y < projected[j].Y
	})

	// Monotone chain; collinear points are dropped from the hull.
	var lower, upper []planePoint
	for _, p := range projected {
		for len(lower) > 1 && cross2(lower[len(lower)-2].Coord, lower[len(lower)-1].Coord, p.Coord) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(projected) - 1; i >= 0; i-- {
		p := projected[i]
		for len(upper) > 1 && cross2(upper[len(upper)-2].Coord, upper[len(upper)-1].Coord, p.Coord) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return Polygon{}, errorf("hull", "points are collinear")
	}

	loop := make([]Vector, len(hull))
	for i, p := range hull {
		loop[i] = points[p.idx]
	}
	pg, err := NewPolygon(loop)
	if err != nil {
		return Polygon{}, err
	}
	if pg.Normal().Dot(n) < 0 {
		pg = pg.Flip()
	}
	return pg, nil
}
