package basis

import (
	"math"

	"github.com/lumenlab/facade/geom"
)

// Patch rows of the Tregenza sky dome, horizon first. A Reinhart MF:N
// discretization splits every row into N altitude bands with N times
// the azimuth count, plus a single zenith cap.
var tregenzaRows = []int{30, 30, 24, 24, 18, 12, 6}

// A Patch is one directional sky/sun patch center.
type Patch struct {
	// Altitude and azimuth of the patch center, degrees. Azimuth runs
	// clockwise from north (+Y).
	Alt, Azi float64
	Dir      geom.Vector
}

func patchDir(altDeg, aziDeg float64) geom.Vector {
	alt := altDeg * math.Pi / 180
	azi := aziDeg * math.Pi / 180
	return geom.XYZ(
		math.Sin(azi)*math.Cos(alt),
		math.Cos(azi)*math.Cos(alt),
		math.Sin(alt),
	)
}

// ReinhartPatches returns the patch centers of a Reinhart MF:mf sky
// discretization, horizon row first, zenith cap last. The patch count
// is 144*mf*mf+1.
func ReinhartPatches(mf int) []Patch {
	rowHeight := 90.0 / (float64(7*mf) + 0.5)

	var patches []Patch
	for row := 0; row < 7*mf; row++ {
		alt := (float64(row) + 0.5) * rowHeight
		count := tregenzaRows[row/mf] * mf
		step := 360.0 / float64(count)
		for i := 0; i < count; i++ {
			azi := float64(i) * step
			patches = append(patches, Patch{Alt: alt, Azi: azi, Dir: patchDir(alt, azi)})
		}
	}
	patches = append(patches, Patch{Alt: 90, Azi: 0, Dir: geom.XYZ(0, 0, 1)})
	return patches
}
