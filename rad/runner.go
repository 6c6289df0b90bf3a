package rad

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/lumenlab/facade/log"
)

var logger = log.New("rad")

// RunError is a simulator invocation failure: non-zero exit or missing
// output. It is fatal for the enclosing window pass and is never
// retried automatically.
type RunError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("rad: %s: %v", e.Cmd, e.Err)
	if e.Stderr != "" {
		msg += "\n" + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// Runner executes simulator commands. The pipeline depends only on
// this interface; tests substitute a recording implementation.
type Runner interface {
	// Run executes a command and returns its stdout.
	Run(cmd Command) ([]byte, error)

	// RunToFile executes a command with stdout redirected to a file.
	RunToFile(cmd Command, outPath string) error
}

// ExecRunner runs commands as local child processes.
type ExecRunner struct{}

func (ExecRunner) exec(cmd Command, stdout *os.File) ([]byte, error) {
	logger.Debugf("exec: %s", cmd)

	proc := exec.Command(cmd.Prog, cmd.Args...)
	proc.Stdin = cmd.Stdin

	var outBuf, errBuf bytes.Buffer
	if stdout != nil {
		proc.Stdout = stdout
	} else {
		proc.Stdout = &outBuf
	}
	proc.Stderr = &errBuf

	if err := proc.Run(); err != nil {
		return nil, &RunError{Cmd: cmd.String(), Stderr: errBuf.String(), Err: err}
	}
	return outBuf.Bytes(), nil
}

func (r ExecRunner) Run(cmd Command) ([]byte, error) {
	return r.exec(cmd, nil)
}

func (r ExecRunner) RunToFile(cmd Command, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return &RunError{Cmd: cmd.String(), Err: err}
	}
	_, runErr := r.exec(cmd, f)
	if closeErr := f.Close(); runErr == nil && closeErr != nil {
		runErr = &RunError{Cmd: cmd.String(), Err: closeErr}
	}
	return runErr
}

// Pipe runs a command chain sequentially, feeding each stage's stdout
// to the next one's stdin, and writes the final stage to outPath. The
// chain is staged in memory rather than through a shell pipe so a
// failing stage reports its own command context.
func Pipe(r Runner, cmds []Command, outPath string) error {
	var carry []byte
	for i, cmd := range cmds {
		if carry != nil {
			cmd.Stdin = bytes.NewReader(carry)
		}
		if i == len(cmds)-1 {
			return r.RunToFile(cmd, outPath)
		}
		out, err := r.Run(cmd)
		if err != nil {
			return err
		}
		carry = out
	}
	return nil
}

// Probe reports the simulator toolchain version. The check is advisory
// only; failures are logged, never fatal.
func Probe(r Runner) string {
	out, err := r.Run(Command{Prog: "rtrace", Args: []string{"-version"}})
	if err != nil {
		logger.Warningf("simulator version probe failed: %v", err)
		return ""
	}
	version := strings.TrimSpace(string(out))
	logger.Infof("simulator: %s", version)
	return version
}
