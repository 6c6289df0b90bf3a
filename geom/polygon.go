package geom

// A Polygon is a closed, planar, non-self-intersecting loop of 3D
// points. Polygons are immutable once constructed; every transform
// returns a new value.
type Polygon struct {
	vertices []Vector
}

// Create a polygon from an ordered vertex loop. The loop must contain
// at least three vertices and span a non-degenerate area.
func NewPolygon(vertices []Vector) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, errorf("polygon", "need at least 3 vertices; got %d", len(vertices))
	}
	p := Polygon{vertices: append([]Vector(nil), vertices...)}
	if p.Area() < Eps {
		return Polygon{}, errorf("polygon", "degenerate polygon (area %g)", p.Area())
	}
	return p, nil
}

// Return a copy of the polygon vertex loop.
func (p Polygon) Vertices() []Vector {
	return append([]Vector(nil), p.vertices...)
}

// Newell sum over the vertex loop. Its direction is the polygon normal
// by the right-hand rule and its length is twice the polygon area.
func (p Polygon) newell() Vector {
	var sum Vector
	for i, a := range p.vertices {
		b := p.vertices[(i+1)%len(p.vertices)]
		sum = sum.Add(a.Cross(b))
	}
	return sum
}

// Unit normal following the right-hand rule from vertex order.
func (p Polygon) Normal() Vector {
	return p.newell().Unit()
}

// Polygon area.
func (p Polygon) Area() float64 {
	return p.newell().Length() / 2
}

// Vertex centroid.
func (p Polygon) Centroid() Vector {
	var sum Vector
	for _, v := range p.vertices {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(p.vertices)))
}

// Rotate the polygon around an axis through the origin by angle radians.
func (p Polygon) Rotate(axis Vector, angle float64) Polygon {
	out := make([]Vector, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = v.Rotate(axis, angle)
	}
	return Polygon{vertices: out}
}

// Scale the polygon about an origin point.
func (p Polygon) Scale(factor float64, origin Vector) (Polygon, error) {
	out := make([]Vector, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = v.Sub(origin).Scale(factor).Add(origin)
	}
	scaled := Polygon{vertices: out}
	if scaled.Area() < Eps {
		return Polygon{}, errorf("scale", "factor %g collapses polygon", factor)
	}
	return scaled, nil
}

// Translate the polygon by a vector.
func (p Polygon) Translate(v Vector) Polygon {
	out := make([]Vector, len(p.vertices))
	for i, pt := range p.vertices {
		out[i] = pt.Add(v)
	}
	return Polygon{vertices: out}
}

// Flip reverses the vertex order, negating the normal.
func (p Polygon) Flip() Polygon {
	out := make([]Vector, len(p.vertices))
	for i, pt := range p.vertices {
		out[len(out)-1-i] = pt
	}
	return Polygon{vertices: out}
}

// Extrude sweeps the polygon along a vector and returns the resulting
// shell: index 0 is the original polygon, index 1 the swept cap and the
// rest the side faces, one per edge.
func (p Polygon) Extrude(v Vector) ([]Polygon, error) {
	if v.Length() < Eps {
		return nil, errorf("extrude", "zero extrusion vector")
	}
	shell := []Polygon{p, p.Translate(v)}
	n := len(p.vertices)
	for i := 0; i < n; i++ {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		side, err := NewPolygon([]Vector{a, b, b.Add(v), a.Add(v)})
		if err != nil {
			return nil, err
		}
		shell = append(shell, side)
	}
	return shell, nil
}

// Coords flattens the vertex loop into x y z triplets.
func (p Polygon) Coords() []float64 {
	out := make([]float64, 0, len(p.vertices)*3)
	for _, v := range p.vertices {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}
