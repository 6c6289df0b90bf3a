package mtx

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/lumenlab/facade/basis"
	"github.com/lumenlab/facade/scene"
)

// A Culler reduces a discretized sun set to the positions that can
// contribute, returning one keep flag per patch.
type Culler func(patches []basis.Patch) ([]bool, error)

// activeSuns expands a Reinhart basis tag into patch centers and
// applies the optional culler.
func activeSuns(basisTag string, cull Culler) ([]basis.Patch, []bool, error) {
	b, err := basis.Parse(basisTag)
	if err != nil {
		return nil, nil, err
	}
	if b.Family != basis.Reinhart {
		return nil, nil, &basis.ConfigError{Msg: fmt.Sprintf("sun endpoint basis must be Reinhart; got %q", basisTag)}
	}

	patches := basis.ReinhartPatches(b.Subdiv)
	active := make([]bool, len(patches))
	for i := range active {
		active[i] = true
	}
	if cull == nil {
		return patches, active, nil
	}

	keep, err := cull(patches)
	if err != nil {
		return nil, nil, err
	}
	kept := 0
	for i := range active {
		active[i] = active[i] && keep[i]
		if active[i] {
			kept++
		}
	}
	logger.Infof("sun culling kept %d of %d positions", kept, len(patches))
	return patches, active, nil
}

// ChainCullers composes cullers; a patch survives only if every culler
// keeps it.
func ChainCullers(cullers ...Culler) Culler {
	return func(patches []basis.Patch) ([]bool, error) {
		keep := make([]bool, len(patches))
		for i := range keep {
			keep[i] = true
		}
		for _, c := range cullers {
			if c == nil {
				continue
			}
			k, err := c(patches)
			if err != nil {
				return nil, err
			}
			for i := range keep {
				keep[i] = keep[i] && k[i]
			}
		}
		return keep, nil
	}
}

// WindowCuller drops sun positions that face away from every window:
// a sun behind a window plane cannot send flux through it.
func WindowCuller(windows []scene.Primitive) (Culler, error) {
	var normals []struct{ x, y, z float64 }
	for _, w := range windows {
		pg, err := w.Polygon()
		if err != nil {
			return nil, err
		}
		n := pg.Normal()
		normals = append(normals, struct{ x, y, z float64 }{n.X, n.Y, n.Z})
	}
	return func(patches []basis.Patch) ([]bool, error) {
		keep := make([]bool, len(patches))
		for i, p := range patches {
			for _, n := range normals {
				// Dir points toward the sun, so a sun illuminates the
				// window when it sits on the outward-normal side.
				if p.Dir.X*n.x+p.Dir.Y*n.y+p.Dir.Z*n.z > 0 {
					keep[i] = true
					break
				}
			}
		}
		return keep, nil
	}, nil
}

// LocationCuller drops sun positions the sun never occupies over a
// year at the given site, sampled on a fixed step. Patch membership is
// tested against the patch angular radius implied by the row height.
func LocationCuller(lat, lon float64, year int) Culler {
	return func(patches []basis.Patch) ([]bool, error) {
		keep := make([]bool, len(patches))

		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		// Half a patch row in radians; MF:1 rows are 12 degrees tall.
		tol := 0.125

		for t := start; t.Before(end); t = t.Add(15 * time.Minute) {
			pos := suncalc.GetPosition(t, lat, lon)
			if pos.Altitude <= 0 {
				continue
			}
			sx, sy, sz := dirFromHorizon(pos.Azimuth, pos.Altitude)
			for i, p := range patches {
				if keep[i] {
					continue
				}
				dot := p.Dir.X*sx + p.Dir.Y*sy + p.Dir.Z*sz
				if dot > 1-tol {
					keep[i] = true
				}
			}
		}
		return keep, nil
	}
}

// dirFromHorizon converts suncalc horizon coordinates (azimuth
// measured from south, positive westward, radians) to a unit vector in
// scene coordinates (+Y north).
func dirFromHorizon(azimuth, altitude float64) (x, y, z float64) {
	cosAlt := math.Cos(altitude)
	return -math.Sin(azimuth) * cosAlt, -math.Cos(azimuth) * cosAlt, math.Sin(altitude)
}

// MatrixCuller drops sun positions whose daylight-coefficient row is
// entirely zero in a precomputed matrix: those patches never reach a
// window. Rows beyond the file length stay active.
func MatrixCuller(smxPath string) Culler {
	return func(patches []basis.Patch) ([]bool, error) {
		f, err := os.Open(smxPath)
		if err != nil {
			return nil, fmt.Errorf("mtx: daylight matrix: %w", err)
		}
		defer f.Close()

		keep := make([]bool, len(patches))
		for i := range keep {
			keep[i] = true
		}

		row := 0
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		for scanner.Scan() && row < len(patches) {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			nonzero := false
			for _, field := range strings.Fields(line) {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, fmt.Errorf("mtx: daylight matrix row %d: bad value %q", row, field)
				}
				if v != 0 {
					nonzero = true
					break
				}
			}
			keep[row] = nonzero
			row++
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("mtx: daylight matrix: %w", err)
		}
		return keep, nil
	}
}
