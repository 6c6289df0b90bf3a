package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/lumenlab/facade/basis"
)

// List the supported angular bases.
func ListBases(ctx *cli.Context) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tag", "Resolution", "Patches", "Solid angle"})

	for _, tag := range []string{"kq", "kh", "kf"} {
		name, err := basis.Name(tag)
		if err != nil {
			return err
		}
		count, err := basis.PatchCount(tag)
		if err != nil {
			return err
		}
		coeffs, err := basis.Coefficients(tag)
		if err != nil {
			return err
		}
		lo, hi := coeffs[0], coeffs[0]
		for _, c := range coeffs[1:] {
			if c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
		}
		table.Append([]string{
			tag, name, fmt.Sprintf("%d", count),
			fmt.Sprintf("%.4f .. %.4f sr", lo, hi),
		})
	}

	for _, n := range []int{2, 4, 8, 16} {
		tag := fmt.Sprintf("sc%d", n)
		count, err := basis.PatchCount(tag)
		if err != nil {
			return err
		}
		table.Append([]string{tag, fmt.Sprintf("Shirley-Chiu %dx%d", n, n), fmt.Sprintf("%d", count), "adaptive"})
	}

	for _, n := range []int{1, 2, 4, 6} {
		tag := fmt.Sprintf("r%d", n)
		count, err := basis.PatchCount(tag)
		if err != nil {
			return err
		}
		table.Append([]string{tag, fmt.Sprintf("Reinhart MF:%d", n), fmt.Sprintf("%d", count), "sky dome"})
	}

	table.Render()
	return nil
}
