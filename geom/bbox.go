package geom

import (
	"math"

	planar "github.com/jbeda/geom"
)

// Axis-aligned bounds of a polygon set: a 2D footprint rect in the XY
// plane plus a vertical extent.
type bounds struct {
	footprint planar.Rect
	zlo, zhi  float64
}

func boundsOf(polygons []Polygon) bounds {
	b := bounds{
		footprint: planar.Rect{
			Min: planar.Coord{X: math.Inf(1), Y: math.Inf(1)},
			Max: planar.Coord{X: math.Inf(-1), Y: math.Inf(-1)},
		},
		zlo: math.Inf(1),
		zhi: math.Inf(-1),
	}
	for _, pg := range polygons {
		for _, v := range pg.vertices {
			b.footprint.Min.X = math.Min(b.footprint.Min.X, v.X)
			b.footprint.Min.Y = math.Min(b.footprint.Min.Y, v.Y)
			b.footprint.Max.X = math.Max(b.footprint.Max.X, v.X)
			b.footprint.Max.Y = math.Max(b.footprint.Max.Y, v.Y)
			b.zlo = math.Min(b.zlo, v.Z)
			b.zhi = math.Max(b.zhi, v.Z)
		}
	}
	return b
}

// Face order returned by BoundingBox. The four side faces come first so
// the port synthesizer can match a horizontal window normal directly
// against SideNormals.
const (
	FacePosX = iota
	FaceNegY
	FaceNegX
	FacePosY
	FaceNegZ
	FacePosZ
)

// Outward normals of the four side faces, in face order.
var SideNormals = []Vector{
	{1, 0, 0},
	{0, -1, 0},
	{-1, 0, 0},
	{0, 1, 0},
}

// BoundingBox returns the six axis-aligned faces enclosing the union of
// the input polygons. Every face is independently pushed outward along
// its own normal by offset and winds so its normal points out of the
// box. Face order is FacePosX, FaceNegY, FaceNegX, FacePosY, FaceNegZ,
// FacePosZ; the first face is the "front" face whose area the port
// search minimizes.
func BoundingBox(polygons []Polygon, offset float64) ([]Polygon, error) {
	if len(polygons) == 0 {
		return nil, errorf("bbox", "no input polygons")
	}
	b := boundsOf(polygons)
	lo := Vector{b.footprint.Min.X, b.footprint.Min.Y, b.zlo}
	hi := Vector{b.footprint.Max.X, b.footprint.Max.Y, b.zhi}

	loops := [6][]Vector{
		// +X
		{
			{hi.X + offset, lo.Y, lo.Z},
			{hi.X + offset, hi.Y, lo.Z},
			{hi.X + offset, hi.Y, hi.Z},
			{hi.X + offset, lo.Y, hi.Z},
		},
		// -Y
		{
			{lo.X, lo.Y - offset, lo.Z},
			{hi.X, lo.Y - offset, lo.Z},
			{hi.X, lo.Y - offset, hi.Z},
			{lo.X, lo.Y - offset, hi.Z},
		},
		// -X
		{
			{lo.X - offset, lo.Y, lo.Z},
			{lo.X - offset, lo.Y, hi.Z},
			{lo.X - offset, hi.Y, hi.Z},
			{lo.X - offset, hi.Y, lo.Z},
		},
		// +Y
		{
			{lo.X, hi.Y + offset, lo.Z},
			{lo.X, hi.Y + offset, hi.Z},
			{hi.X, hi.Y + offset, hi.Z},
			{hi.X, hi.Y + offset, lo.Z},
		},
		// -Z
		{
			{lo.X, lo.Y, lo.Z - offset},
			{lo.X, hi.Y, lo.Z - offset},
			{hi.X, hi.Y, lo.Z - offset},
			{hi.X, lo.Y, lo.Z - offset},
		},
		// +Z
		{
			{lo.X, lo.Y, hi.Z + offset},
			{hi.X, lo.Y, hi.Z + offset},
			{hi.X, hi.Y, hi.Z + offset},
			{lo.X, hi.Y, hi.Z + offset},
		},
	}

	faces := make([]Polygon, 0, 6)
	for _, loop := range loops {
		face, err := NewPolygon(loop)
		if err != nil {
			return nil, errorf("bbox", "flat extent along one axis: %v", err)
		}
		faces = append(faces, face)
	}
	return faces, nil
}
