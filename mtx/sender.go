package mtx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/lumenlab/facade/rad"
	"github.com/lumenlab/facade/scene"
)

// The sender kinds.
type Form int

const (
	FormSurface Form = iota
	FormPoints
	FormView
	FormSun
)

// A Sender is the emitting endpoint of one matrix computation. It owns
// one staged description and must be released after the invocation
// that consumes it.
type Sender struct {
	Form  Form
	basis string

	res     *scene.Resource
	content string

	// Point-grid line count, retained for flag construction.
	lineCount int

	// View raster dimensions.
	xres, yres int
}

// Path to the staged sender description.
func (s *Sender) Path() string { return s.res.Path() }

// Content returns the staged description text.
func (s *Sender) Content() string { return s.content }

// Release the staged description.
func (s *Sender) Release() error {
	if s == nil {
		return nil
	}
	return s.res.Release()
}

// SurfaceSender stages a surface set as a sampling sender. The basis
// tag may carry a leading minus to sample from the back side; a
// non-zero offset moves every member polygon along its own normal.
func SurfaceSender(prims []scene.Primitive, basisTag string, offset float64) (*Sender, error) {
	content, err := prepareSurface(prims, basisTag, offset, "", "")
	if err != nil {
		return nil, err
	}
	res, err := scene.Stage("sndr_srf", content)
	if err != nil {
		return nil, err
	}
	return &Sender{Form: FormSurface, basis: basisTag, res: res, content: content}, nil
}

// PointSender stages a sequence of position+direction 6-tuples as a
// point-grid sender.
func PointSender(points [][6]float64) (*Sender, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("mtx: empty point grid")
	}
	var sb strings.Builder
	for _, pt := range points {
		for i, v := range pt {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		sb.WriteString("\n")
	}
	content := sb.String()
	res, err := scene.Stage("sndr_grid", content)
	if err != nil {
		return nil, err
	}
	return &Sender{Form: FormPoints, res: res, content: content, lineCount: len(points)}, nil
}

// A View is a simulator view specification: the projection type plus
// its raw option list.
type View struct {
	Type    string
	Options []string
}

// crop2circle zeroes the direction of every ray that falls outside the
// circle inscribed in the view square. Used for angular fisheye views
// whose corners carry no flux.
func crop2circle(rayCount, xres int) []string {
	return []string{
		rad.Expr("DIM:%d;CNT:%d", xres, rayCount),
		"pn=(recno-1)/CNT+.5",
		"frac(x):x-floor(x)",
		"xpos=frac(pn/DIM);ypos=pn/(DIM*DIM)",
		"incir=if(.25-(xpos-.5)*(xpos-.5)-(ypos-.5)*(ypos-.5),1,0)",
		"$1=$1;$2=$2;$3=$3;$4=$4*incir;$5=$5*incir;$6=$6*incir",
	}
}

// ViewSender expands a view specification into per-pixel sample rays
// at the given resolution and stages them. rayCount > 1 requests
// multiple jittered rays per pixel; cropToCircle applies the inscribed
// circle transform for angular fisheye views.
func ViewSender(r rad.Runner, view View, rayCount, xres, yres int, cropToCircle bool) (*Sender, error) {
	if xres <= 0 || yres <= 0 {
		return nil, fmt.Errorf("mtx: view sender needs a pixel resolution")
	}

	// The simulator may adjust the requested dimensions to match the
	// view aspect; ask for the effective ones first.
	dims, err := r.Run(rad.Vwrays(view.Options, xres, yres, rayCount, true))
	if err != nil {
		return nil, err
	}
	xres, yres, err = parseDims(string(dims), xres, yres)
	if err != nil {
		return nil, err
	}

	rays, err := r.Run(rad.Vwrays(view.Options, xres, yres, rayCount, false))
	if err != nil {
		return nil, err
	}

	if view.Type == "a" && cropToCircle {
		cropped, err := r.Run(rad.Command{
			Prog:  "rcalc",
			Args:  cropArgs(rayCount, xres),
			Stdin: bytes.NewReader(rays),
		})
		if err != nil {
			return nil, err
		}
		rays = cropped
	}

	res, err := scene.Stage("sndr_view", string(rays))
	if err != nil {
		return nil, err
	}
	return &Sender{Form: FormView, res: res, content: string(rays), xres: xres, yres: yres}, nil
}

func cropArgs(rayCount, xres int) []string {
	args := []string{"-if6", "-of"}
	for _, e := range crop2circle(rayCount, xres) {
		args = append(args, "-e", e)
	}
	return args
}

// parseDims extracts the -x/-y values echoed by the dimension probe.
func parseDims(out string, xres, yres int) (int, int, error) {
	fields := strings.Fields(out)
	for i := 0; i+1 < len(fields); i++ {
		var err error
		switch fields[i] {
		case "-x":
			if xres, err = strconv.Atoi(fields[i+1]); err != nil {
				return 0, 0, fmt.Errorf("mtx: bad view dimensions %q", out)
			}
		case "-y":
			if yres, err = strconv.Atoi(fields[i+1]); err != nil {
				return 0, 0, fmt.Errorf("mtx: bad view dimensions %q", out)
			}
		}
	}
	return xres, yres, nil
}

// SunSender stages the active solar directions as an origin+direction
// grid, one ray per discretized sun position.
func SunSender(basisTag string, cull Culler) (*Sender, error) {
	patches, active, err := activeSuns(basisTag, cull)
	if err != nil {
		return nil, err
	}

	var points [][6]float64
	for i, p := range patches {
		if !active[i] {
			continue
		}
		points = append(points, [6]float64{0, 0, 0, p.Dir.X, p.Dir.Y, p.Dir.Z})
	}
	sndr, err := PointSender(points)
	if err != nil {
		return nil, err
	}
	sndr.Form = FormSun
	sndr.basis = basisTag
	return sndr, nil
}
