package cmd

import (
	"errors"

	"github.com/urfave/cli"

	"github.com/lumenlab/facade/ncp"
	"github.com/lumenlab/facade/rad"
	"github.com/lumenlab/facade/scene"
)

// loadPolygons parses a scene file and keeps its polygon primitives.
func loadPolygons(path string) ([]scene.Primitive, error) {
	prims, err := scene.ParseFile(path)
	if err != nil {
		return nil, err
	}
	var polygons []scene.Primitive
	for _, p := range prims {
		if p.Type == "polygon" {
			polygons = append(polygons, p)
		}
	}
	if len(polygons) == 0 {
		return nil, errors.New("no polygon primitives in " + path)
	}
	return polygons, nil
}

// synthesizePorts builds the port set from the command flags: the
// bounding strategy when shading geometry is given, the extrusion
// strategy otherwise.
func synthesizePorts(ctx *cli.Context, windows []scene.Primitive) ([]scene.Primitive, error) {
	if shading := ctx.String("shading"); shading != "" {
		sprims, err := scene.ParseFile(shading)
		if err != nil {
			return nil, err
		}
		return ncp.PortsFromShading(windows, sprims)
	}
	return ncp.PortsFromWindow(windows, ctx.Float64("depth"), ctx.Float64("scale"))
}

// Generate transfer matrices for a shaded window group.
func GenMatrix(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing window scene file argument")
	}
	windows, err := loadPolygons(ctx.Args().First())
	if err != nil {
		return err
	}
	logger.Infof("%d window polygon(s)", len(windows))

	ports, err := synthesizePorts(ctx, windows)
	if err != nil {
		return err
	}
	logger.Infof("%d port polygon(s)", len(ports))

	m := ncp.Model{
		Windows: windows,
		Ports:   ports,
		Env:     ctx.StringSlice("env"),
		SBasis:  ctx.String("sbasis"),
		RBasis:  ctx.String("rbasis"),
	}
	o := ncp.Options{
		Opt:   rad.Fields(ctx.String("opt")),
		Refl:  ctx.Bool("refl"),
		Forw:  ctx.Bool("forw"),
		Wrap:  !ctx.Bool("raw"),
		Solar: ctx.Bool("solar"),
		Gzip:  ctx.Bool("gzip"),
	}

	runner := rad.ExecRunner{}
	rad.Probe(runner)
	return ncp.GenMatrix(runner, m, ctx.String("out"), o)
}
