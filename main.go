package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/lumenlab/facade/cmd"
	"github.com/lumenlab/facade/log"
)

var logger = log.New("facade")

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "facade"
	app.Usage = "generate scattering transfer matrices for shaded windows"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "matrix",
			Usage: "compute transfer matrices for a shaded window group",
			Description: `
Synthesize the enclosing aperture set for the window and its shading
geometry, run one directional simulator pass per window and encode the
results into one interchange document per window.`,
			ArgsUsage: "window_scene_file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "shading",
					Usage: "shading geometry scene file; extrusion ports are used when omitted",
				},
				cli.StringSliceFlag{
					Name:  "env",
					Value: &cli.StringSlice{},
					Usage: "environment scene file (repeatable)",
				},
				cli.StringFlag{
					Name:  "sbasis",
					Value: "kf",
					Usage: "window sampling basis",
				},
				cli.StringFlag{
					Name:  "rbasis",
					Value: "kf",
					Usage: "port sampling basis",
				},
				cli.StringFlag{
					Name:  "opt",
					Value: "-ab 2 -c 5000",
					Usage: "simulator sampling options",
				},
				cli.Float64Flag{
					Name:  "depth",
					Value: 0.15,
					Usage: "extrusion depth behind the window",
				},
				cli.Float64Flag{
					Name:  "scale",
					Value: 1.0,
					Usage: "extrusion scale about the window centroid",
				},
				cli.BoolFlag{
					Name:  "refl",
					Usage: "also compute reflection passes",
				},
				cli.BoolFlag{
					Name:  "forw",
					Usage: "also compute forward passes",
				},
				cli.BoolFlag{
					Name:  "solar",
					Usage: "repeat with the solar spectrum and merge both into the document",
				},
				cli.BoolFlag{
					Name:  "raw",
					Usage: "keep raw pass matrices instead of wrapping",
				},
				cli.BoolFlag{
					Name:  "gzip",
					Usage: "compress the wrapped documents",
				},
				cli.StringFlag{
					Name:  "out",
					Value: "blinds.xml",
					Usage: "output document path stem",
				},
			},
			Action: cmd.GenMatrix,
		},
		{
			Name:  "ports",
			Usage: "synthesize the port set and print it as scene text",
			Description: `
Write the enclosing aperture polygons for a shaded window group to
stdout without running any simulator pass.`,
			ArgsUsage: "window_scene_file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "shading",
					Usage: "shading geometry scene file; extrusion ports are used when omitted",
				},
				cli.Float64Flag{
					Name:  "depth",
					Value: 0.15,
					Usage: "extrusion depth behind the window",
				},
				cli.Float64Flag{
					Name:  "scale",
					Value: 1.0,
					Usage: "extrusion scale about the window centroid",
				},
			},
			Action: cmd.GenPorts,
		},
		{
			Name:   "list-bases",
			Usage:  "list the supported angular bases",
			Action: cmd.ListBases,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
