package mtx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lumenlab/facade/rad"
)

// release tears down both endpoints after their single consuming
// invocation. A cleanup failure is surfaced but never masks the
// invocation error.
func release(err error, sndr *Sender, rcvr *Receiver) error {
	for _, relErr := range []error{sndr.Release(), rcvr.Release()} {
		if relErr == nil {
			continue
		}
		logger.Errorf("endpoint cleanup: %v", relErr)
		if err == nil {
			err = relErr
		}
	}
	return err
}

// Compute runs one flux-transfer invocation for a sender/receiver
// pair against an environment scene list. For surface senders the
// receiver description routes the output; stdin-driven senders write
// to out. Both endpoints are released on every exit path.
func Compute(r rad.Runner, sndr *Sender, rcvr *Receiver, env []string, out string, opts []string) (err error) {
	defer func() { err = release(err, sndr, rcvr) }()

	switch sndr.Form {
	case FormSurface:
		cmd := rad.Rfluxmtx(opts, sndr.Path(), rcvr.Path(), env)
		if out != "" {
			return r.RunToFile(cmd, out)
		}
		_, err := r.Run(cmd)
		return err

	case FormPoints, FormSun:
		f, err := os.Open(sndr.Path())
		if err != nil {
			return fmt.Errorf("mtx: %w", err)
		}
		defer f.Close()
		flags := []string{"-I+", "-faf", "-y", strconv.Itoa(sndr.lineCount)}
		_, err = r.Run(rad.RfluxmtxStdin(opts, flags, out, rcvr.Path(), env, f))
		return err

	case FormView:
		f, err := os.Open(sndr.Path())
		if err != nil {
			return fmt.Errorf("mtx: %w", err)
		}
		defer f.Close()
		flags := []string{
			"-ffc",
			"-x", strconv.Itoa(sndr.xres),
			"-y", strconv.Itoa(sndr.yres),
			"-ld-",
		}
		frameOut := filepath.Join(out, "%04d.hdr")
		_, err = r.Run(rad.RfluxmtxStdin(opts, flags, frameOut, rcvr.Path(), env, f))
		return err
	}
	return fmt.Errorf("mtx: unknown sender form %d", sndr.Form)
}

// ComputeSun runs one direct-sun coefficient invocation: the
// environment and the sun receiver are frozen into an octree, then the
// sender rays are traced against the receiver modifier list.
func ComputeSun(r rad.Runner, sndr *Sender, rcvr *Receiver, env []string, out string, opts []string) (err error) {
	defer func() { err = release(err, sndr, rcvr) }()

	oct, err := os.CreateTemp("", "sunoct")
	if err != nil {
		return fmt.Errorf("mtx: %w", err)
	}
	oct.Close()
	defer os.Remove(oct.Name())

	inputs := append(append([]string{}, env...), rcvr.Path())
	if err := r.RunToFile(rad.Oconv(inputs), oct.Name()); err != nil {
		return err
	}

	f, err := os.Open(sndr.Path())
	if err != nil {
		return fmt.Errorf("mtx: %w", err)
	}
	defer f.Close()

	runOpts := append([]string{}, opts...)
	switch sndr.Form {
	case FormView:
		runOpts = append(runOpts, "-ffc", "-x", strconv.Itoa(sndr.xres), "-y", strconv.Itoa(sndr.yres))
		out = filepath.Join(out, "%04d.hdr")
	default:
		runOpts = append(runOpts, "-faf", "-y", strconv.Itoa(sndr.lineCount))
	}
	_, err = r.Run(rad.Rcontrib(runOpts, rcvr.ModifierPath(), oct.Name(), out, f))
	return err
}
