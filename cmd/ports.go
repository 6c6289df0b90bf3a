package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/lumenlab/facade/scene"
)

// Synthesize the port set for a shaded window group and write it as
// scene text on stdout.
func GenPorts(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing window scene file argument")
	}
	windows, err := loadPolygons(ctx.Args().First())
	if err != nil {
		return err
	}

	ports, err := synthesizePorts(ctx, windows)
	if err != nil {
		return err
	}
	fmt.Print(scene.Format(ports))
	return nil
}
