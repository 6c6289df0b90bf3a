// Package ncp generates bidirectional scattering transfer matrices for
// non-coplanar shading systems: shading geometry that is not parallel
// to its window. It synthesizes the enclosing aperture ("port") set,
// orchestrates the directional simulator passes and encodes the
// results into one interchange document per window.
package ncp

import (
	"errors"
	"math"
	"strconv"

	"github.com/lumenlab/facade/geom"
	"github.com/lumenlab/facade/log"
	"github.com/lumenlab/facade/scene"
)

var logger = log.New("ncp")

// Port primitives share one modifier so the simulator samples them as
// a single aggregate aperture.
const (
	portModifier = "port"
	zOffset      = 0.1   // inward nudge of axis-aligned port faces
	searchOffset = 0.001 // bounding-box slack during the rotational search
)

var zAxis = geom.Vector{X: 0, Y: 0, Z: 1}

// errNoSolarMaterial is returned when a solar run finds no data-driven
// material to respectralize in the environment.
var errNoSolarMaterial = errors.New("no data-driven shading material in environment")

// MergeWindows pools coplanar window primitives into one effective
// window: the convex hull of all vertices in the shared plane. Windows
// whose normals differ fail with a geometry error.
func MergeWindows(prims []scene.Primitive) (scene.Primitive, error) {
	if len(prims) == 1 {
		return prims[0], nil
	}

	polygons := make([]geom.Polygon, len(prims))
	for i, p := range prims {
		pg, err := p.Polygon()
		if err != nil {
			return scene.Primitive{}, err
		}
		polygons[i] = pg
	}

	normal := polygons[0].Normal()
	plane := normal.Dot(polygons[0].Vertices()[0])
	for _, pg := range polygons[1:] {
		if !pg.Normal().Equal(normal) {
			return scene.Primitive{}, &geom.Error{
				Op:  "merge",
				Msg: "window polygons are not coplanar",
			}
		}
		// Parallel windows in distinct planes share a normal but not
		// the plane offset.
		if math.Abs(normal.Dot(pg.Vertices()[0])-plane) > geom.Eps {
			return scene.Primitive{}, &geom.Error{
				Op:  "merge",
				Msg: "window polygons share a normal but not a plane",
			}
		}
	}

	var points []geom.Vector
	for _, pg := range polygons {
		points = append(points, pg.Vertices()...)
	}
	hull, err := geom.ConvexHull(points, normal)
	if err != nil {
		return scene.Primitive{}, err
	}
	return scene.FromPolygon(hull, prims[0].Modifier, prims[0].Identifier), nil
}

func portPrims(polygons []geom.Polygon) []scene.Primitive {
	prims := make([]scene.Primitive, len(polygons))
	for i, pg := range polygons {
		prims[i] = scene.FromPolygon(pg, portModifier, portName(i))
	}
	return prims
}

func portName(i int) string {
	return "portf" + strconv.Itoa(i+1)
}

// PortsFromWindow synthesizes ports by extrusion, used when no shading
// geometry constrains the result: the merged window is scaled about
// its centroid so oblique ray bundles stay inside the shell, then
// extruded backward along its reversed normal. The cap coincident with
// the window is not a port.
func PortsFromWindow(wprims []scene.Primitive, depth, scale float64) ([]scene.Primitive, error) {
	merged, err := MergeWindows(wprims)
	if err != nil {
		return nil, err
	}
	window, err := merged.Polygon()
	if err != nil {
		return nil, err
	}

	scaled, err := window.Scale(scale, window.Centroid())
	if err != nil {
		return nil, err
	}
	shell, err := scaled.Extrude(window.Normal().Reverse().Scale(depth))
	if err != nil {
		return nil, err
	}

	ports := portPrims(shell[1:])
	for _, p := range ports {
		logger.Debugf("port: %s", p.Identifier)
	}
	return ports, nil
}

// PortsFromShading synthesizes the enclosing port set for a window
// with non-coplanar shading geometry: the smallest axis-aligned box,
// in some frame rotated about +Z, that encloses the window and all
// shading polygons, minus the face flush with the window.
func PortsFromShading(wprims, sprims []scene.Primitive) ([]scene.Primitive, error) {
	merged, err := MergeWindows(wprims)
	if err != nil {
		return nil, err
	}
	window, err := merged.Polygon()
	if err != nil {
		return nil, err
	}

	var shading []geom.Polygon
	for _, p := range sprims {
		if p.Type != "polygon" {
			continue
		}
		pg, err := p.Polygon()
		if err != nil {
			return nil, err
		}
		shading = append(shading, pg)
	}

	ports, err := portPolygons(window, shading)
	if err != nil {
		return nil, err
	}
	return portPrims(ports), nil
}

// portPolygons implements the bounding strategy. Horizontal
// axis-aligned window normals skip the search; everything else runs an
// exhaustive integer-degree rotation over [0,89] about +Z minimizing
// the front-face area of the rotated bounding box.
func portPolygons(window geom.Polygon, shading []geom.Polygon) ([]geom.Polygon, error) {
	wn := window.Normal()

	if math.Abs(math.Abs(wn.X)-1) < geom.Eps || math.Abs(math.Abs(wn.Y)-1) < geom.Eps {
		faces, err := geom.BoundingBox(append(shading, window), 0)
		if err != nil {
			return nil, err
		}
		kept := make([]geom.Polygon, 0, 5)
		for _, face := range faces {
			// Drop the face flush with the window: its outward normal
			// is the reverse of the window normal.
			if face.Normal().Reverse().Equal(wn) {
				continue
			}
			kept = append(kept, face.Translate(wn.Scale(-zOffset)))
		}
		if len(kept) != 5 {
			return nil, &geom.Error{Op: "ports", Msg: "no box face matches the window normal"}
		}
		return kept, nil
	}

	bestDeg := -1
	bestArea := math.Inf(1)
	var bestFaces []geom.Polygon
	var bestNormal geom.Vector

	for deg := 0; deg < 90; deg++ {
		rot := float64(deg) * math.Pi / 180
		rotated := make([]geom.Polygon, 0, len(shading)+1)
		for _, pg := range shading {
			rotated = append(rotated, pg.Rotate(zAxis, rot))
		}
		windowRot := window.Rotate(zAxis, rot)
		rotated = append(rotated, windowRot)

		faces, err := geom.BoundingBox(rotated, searchOffset)
		if err != nil {
			return nil, err
		}
		// Lowest angle wins exact ties.
		if area := faces[0].Area(); area < bestArea {
			bestDeg = deg
			bestArea = area
			bestFaces = faces
			bestNormal = windowRot.Normal()
		}
	}

	matched := matchSideFace(bestNormal)
	if matched < 0 {
		return nil, &geom.Error{Op: "ports", Msg: "rotated window normal matches no box face"}
	}

	rot := float64(bestDeg) * math.Pi / 180
	ports := make([]geom.Polygon, 0, 5)
	for i, face := range bestFaces {
		if i == matched {
			continue
		}
		ports = append(ports, face.Rotate(zAxis, -rot))
	}
	logger.Infof("port search: %d deg, front face area %.4f", bestDeg, bestArea)
	return ports, nil
}

// matchSideFace maps a rotated window normal onto one of the four box
// side faces. The normal is rounded to one decimal first and the match
// uses the package tolerance rather than exact equality.
func matchSideFace(normal geom.Vector) int {
	rounded := normal.Round(1)
	for i, side := range geom.SideNormals {
		if rounded.Equal(side) {
			return i
		}
	}
	return -1
}
