package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lumenlab/facade/geom"
)

// Identifier assigned to primitives whose original identifier collides
// with a sibling when a surface set is staged as one flux-collecting
// aggregate.
const Discarded = "discarded"

// A Primitive is one named, typed scene surface element: a modifier
// reference, an identifier and the three Radiance argument blocks. The
// integer argument block is always empty and is not retained.
type Primitive struct {
	Modifier   string
	Type       string
	Identifier string
	StrArgs    []string
	RealArgs   []float64
}

// Render the primitive in scene text form.
func (p Primitive) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s %s %s\n", p.Modifier, p.Type, p.Identifier)
	fmt.Fprintf(&sb, "%d", len(p.StrArgs))
	for _, arg := range p.StrArgs {
		sb.WriteString(" ")
		sb.WriteString(arg)
	}
	sb.WriteString("\n0\n")
	fmt.Fprintf(&sb, "%d", len(p.RealArgs))
	for i, arg := range p.RealArgs {
		if i%3 == 0 {
			sb.WriteString("\n   ")
		} else {
			sb.WriteString(" ")
		}
		sb.WriteString(strconv.FormatFloat(arg, 'g', -1, 64))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Decode the real argument block as a polygon vertex loop.
func (p Primitive) Polygon() (geom.Polygon, error) {
	if p.Type != "polygon" {
		return geom.Polygon{}, fmt.Errorf("scene: primitive %q is a %s, not a polygon", p.Identifier, p.Type)
	}
	if len(p.RealArgs) < 9 || len(p.RealArgs)%3 != 0 {
		return geom.Polygon{}, fmt.Errorf("scene: primitive %q has %d real args; want a multiple of 3 >= 9", p.Identifier, len(p.RealArgs))
	}
	vertices := make([]geom.Vector, 0, len(p.RealArgs)/3)
	for i := 0; i < len(p.RealArgs); i += 3 {
		vertices = append(vertices, geom.XYZ(p.RealArgs[i], p.RealArgs[i+1], p.RealArgs[i+2]))
	}
	return geom.NewPolygon(vertices)
}

// Encode a polygon as a primitive.
func FromPolygon(pg geom.Polygon, modifier, identifier string) Primitive {
	return Primitive{
		Modifier:   modifier,
		Type:       "polygon",
		Identifier: identifier,
		RealArgs:   pg.Coords(),
	}
}

// Render a primitive sequence in scene text form.
func Format(prims []Primitive) string {
	var sb strings.Builder
	for _, p := range prims {
		sb.WriteString(p.String())
	}
	return sb.String()
}
