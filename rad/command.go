// Package rad builds and runs the external light-transport simulator
// commands. Every invocation is assembled as a typed argument list so
// quoting and injection concerns stay out of the pipeline code.
package rad

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A Command is one simulator invocation: program, argument list and an
// optional stdin stream.
type Command struct {
	Prog  string
	Args  []string
	Stdin io.Reader
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Prog
	}
	return c.Prog + " " + strings.Join(c.Args, " ")
}

// Rfluxmtx assembles a surface-to-surface flux matrix invocation. The
// receiver description carries its own output directive, so stdout is
// only meaningful for stdin-driven senders.
func Rfluxmtx(opts []string, sender, receiver string, env []string) Command {
	args := append([]string{}, opts...)
	args = append(args, sender, receiver)
	args = append(args, env...)
	return Command{Prog: "rfluxmtx", Args: args}
}

// RfluxmtxStdin assembles a flux matrix invocation whose sender rays
// arrive on stdin (point grids and views).
func RfluxmtxStdin(opts, senderFlags []string, out, receiver string, env []string, stdin io.Reader) Command {
	args := append([]string{}, opts...)
	args = append(args, senderFlags...)
	args = append(args, "-o", out, "-", receiver)
	args = append(args, env...)
	return Command{Prog: "rfluxmtx", Args: args, Stdin: stdin}
}

// Rmtxop assembles the fixed luminous-efficiency RGB collapse applied
// to every raw pass matrix before wrapping.
func RmtxopPhotopic(input string) Command {
	return Command{
		Prog: "rmtxop",
		Args: []string{"-fa", "-t", "-c", ".265", ".67", ".065", input},
	}
}

// Getinfo strips the information header from a matrix stream.
func Getinfo(stdin io.Reader) Command {
	return Command{Prog: "getinfo", Args: []string{"-"}, Stdin: stdin}
}

// Rcalc assembles a per-record expression evaluation over a float
// stream.
func Rcalc(binaryIn bool, exprs []string, input string) Command {
	var args []string
	if binaryIn {
		args = append(args, "-if3", "-of")
	}
	for _, e := range exprs {
		args = append(args, "-e", e)
	}
	if input != "" {
		args = append(args, input)
	}
	return Command{Prog: "rcalc", Args: args}
}

// RttreeReduce assembles the adaptive tensor-tree reduction of a
// Shirley-Chiu sampled matrix.
func RttreeReduce(rank, log2 int, cullPct float64, average bool, stdin io.Reader) Command {
	var args []string
	if average {
		args = append(args, "-a")
	}
	args = append(args,
		"-h", "-ff",
		"-t", strconv.FormatFloat(cullPct, 'g', -1, 64),
		"-r", strconv.Itoa(rank),
		"-g", strconv.Itoa(log2),
	)
	return Command{Prog: "rttree_reduce", Args: args, Stdin: stdin}
}

// Rcollate reshapes a matrix file into one column per record.
func Rcollate(input string) Command {
	return Command{Prog: "rcollate", Args: []string{"-ho", "-oc", "1", input}}
}

// WrapField ties one directional pass file to its interchange slot
// (tb, tf, rb or rf).
type WrapField struct {
	Key  string
	Path string
}

// WrapSpectrum groups the directional fields of one spectrum.
type WrapSpectrum struct {
	Name   string
	Fields []WrapField
}

// WrapBSDF assembles the interchange document wrapper for one window.
func WrapBSDF(basisTag string, correct bool, spectra []WrapSpectrum) Command {
	args := []string{"-a", basisTag}
	if correct {
		args = append(args, "-c")
	}
	for _, sp := range spectra {
		if sp.Name != "" {
			args = append(args, "-s", sp.Name)
		}
		for _, f := range sp.Fields {
			args = append(args, "-"+f.Key, f.Path)
		}
	}
	return Command{Prog: "wrapBSDF", Args: args}
}

// Oconv freezes an environment plus receiver description into an
// octree for direct-sun runs.
func Oconv(inputs []string) Command {
	return Command{Prog: "oconv", Args: append([]string{}, inputs...)}
}

// Rcontrib assembles a direct-sun coefficient invocation against a
// modifier list.
func Rcontrib(opts []string, modifierFile, octree, out string, stdin io.Reader) Command {
	args := append([]string{}, opts...)
	args = append(args, "-fo+", "-o", out, "-M", modifierFile, octree)
	return Command{Prog: "rcontrib", Args: args, Stdin: stdin}
}

// Vwrays expands a view specification into per-pixel sample rays.
func Vwrays(viewArgs []string, xres, yres, rayCount int, dimensionsOnly bool) Command {
	var args []string
	if dimensionsOnly {
		args = append(args, "-d")
	} else {
		args = append(args, "-ff")
		if rayCount > 1 {
			args = append(args, "-c", strconv.Itoa(rayCount), "-pj", "0.7")
		}
	}
	args = append(args, "-x", strconv.Itoa(xres), "-y", strconv.Itoa(yres))
	args = append(args, viewArgs...)
	return Command{Prog: "vwrays", Args: args}
}

// Fields joins option fragments the way they appear on a command line.
// Used to split a pass-through options string into argument form.
func Fields(opt string) []string {
	return strings.Fields(opt)
}

// Sprintf-style helper for rcalc expressions.
func Expr(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
