// Package mtx models the endpoints of one transfer-matrix computation:
// senders emit sampling rays, receivers collect flux. Every endpoint
// stages exactly one temporary description consumed by exactly one
// simulator invocation.
package mtx

import (
	"fmt"
	"math"
	"strings"

	"github.com/lumenlab/facade/basis"
	"github.com/lumenlab/facade/geom"
	"github.com/lumenlab/facade/log"
	"github.com/lumenlab/facade/scene"
)

var logger = log.New("mtx")

// Up vector hint for the hemisphere sampling frame: any direction not
// parallel to the surface normal works.
func upVector(prims []scene.Primitive) string {
	for _, p := range prims {
		if p.Type != "polygon" {
			continue
		}
		pg, err := p.Polygon()
		if err != nil {
			continue
		}
		if math.Abs(pg.Normal().Z) > 1-geom.Eps {
			return "+Y"
		}
		break
	}
	return "+Z"
}

// prepareSurface renders a surface set as one staged sampling
// description: a sampling header, an optional synthetic flux-collecting
// source, and the member primitives rewritten to share one modifier
// with colliding identifiers renamed to the discard sentinel. A
// non-zero offset moves every member polygon along its own normal
// before encoding.
func prepareSurface(prims []scene.Primitive, basisTag string, offset float64, source, out string) (string, error) {
	if basisTag == "" {
		return "", &basis.ConfigError{Msg: "surface endpoint needs a sampling basis"}
	}
	if _, err := basis.Parse(basisTag); err != nil {
		return "", err
	}
	if len(prims) == 0 {
		return "", fmt.Errorf("mtx: empty surface primitive set")
	}

	modifiers := make(map[string]bool, len(prims))
	for _, p := range prims {
		modifiers[p.Modifier] = true
	}
	if len(modifiers) > 1 {
		logger.Warningf("surface members do not share a modifier: %v", keys(modifiers))
	}
	srcMod := "rflx" + prims[0].Modifier

	var sb strings.Builder
	fmt.Fprintf(&sb, "#@rfluxmtx h=%s u=%s\n", basisTag, upVector(prims))
	if out != "" {
		fmt.Fprintf(&sb, "#@rfluxmtx o=%s\n\n", out)
	}
	if source != "" {
		fmt.Fprintf(&sb, "void %s %s\n0\n0\n4 1 1 1 0\n\n", source, srcMod)
	}

	seen := make(map[string]bool, len(prims))
	for _, p := range prims {
		member := p
		member.Modifier = srcMod
		if modifiers[member.Identifier] || seen[member.Identifier] {
			member.Identifier = scene.Discarded
		} else {
			seen[member.Identifier] = true
		}

		if offset != 0 && member.Type == "polygon" {
			pg, err := member.Polygon()
			if err != nil {
				return "", err
			}
			moved := pg.Translate(pg.Normal().Scale(offset))
			member.RealArgs = moved.Coords()
		}
		sb.WriteString(member.String())
	}
	return sb.String(), nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
