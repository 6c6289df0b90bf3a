package ncp

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/lumenlab/facade/basis"
	"github.com/lumenlab/facade/rad"
)

// recRunner records every invocation. Flux runs honor the receiver's
// output directives so staged pass files exist for downstream stages;
// header strips return a square dummy matrix sized to the requested
// basis.
type recRunner struct {
	t       *testing.T
	rows    int
	cmds    []rad.Command
	outputs []string
}

func (r *recRunner) count(prog string) int {
	n := 0
	for _, c := range r.cmds {
		if c.Prog == prog {
			n++
		}
	}
	return n
}

func (r *recRunner) find(prog string) []rad.Command {
	var found []rad.Command
	for _, c := range r.cmds {
		if c.Prog == prog {
			found = append(found, c)
		}
	}
	return found
}

func (r *recRunner) Run(cmd rad.Command) ([]byte, error) {
	r.cmds = append(r.cmds, cmd)
	switch cmd.Prog {
	case "rfluxmtx":
		r.touchOutputs(cmd)
	case "getinfo":
		var buf bytes.Buffer
		for i := 0; i < r.rows; i++ {
			buf.WriteString("1.0 1.0\n")
		}
		return buf.Bytes(), nil
	case "wrapBSDF":
		return []byte("<BSDF></BSDF>\n"), nil
	}
	return []byte("ok\n"), nil
}

func (r *recRunner) RunToFile(cmd rad.Command, outPath string) error {
	r.cmds = append(r.cmds, cmd)
	return os.WriteFile(outPath, []byte("ok\n"), 0o644)
}

// touchOutputs creates the files named by o= directives in any staged
// description passed to the invocation.
func (r *recRunner) touchOutputs(cmd rad.Command) {
	for _, arg := range cmd.Args {
		data, err := os.ReadFile(arg)
		if err != nil {
			continue
		}
		for _, field := range strings.Fields(string(data)) {
			if !strings.HasPrefix(field, "o=") {
				continue
			}
			path := field[2:]
			if err := os.WriteFile(path, []byte("pass\n"), 0o644); err != nil {
				r.t.Fatalf("unable to stage pass output %s: %v", path, err)
			}
			r.outputs = append(r.outputs, path)
		}
	}
}

func testModel(t *testing.T, windows int, sbasis, rbasis string) Model {
	t.Helper()
	m := Model{SBasis: sbasis, RBasis: rbasis, Env: []string{"env.mat"}}
	for i := 0; i < windows; i++ {
		m.Windows = append(m.Windows, squareAt(t, float64(i)*2, 0))
	}
	ports, err := PortsFromWindow(m.Windows, 0.5, 1.1)
	if err != nil {
		t.Fatalf("unable to synthesize ports: %v", err)
	}
	m.Ports = ports
	return m
}

func TestGenMatrixTensorTreeSingleWindow(t *testing.T) {
	r := &recRunner{t: t}
	m := testModel(t, 1, "sc4", "sc4")
	out := filepath.Join(t.TempDir(), "shade.xml")

	err := GenMatrix(r, m, out, Options{Wrap: true})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if got := r.count("rfluxmtx"); got != 1 {
		t.Fatalf("expected 1 flux invocation; got %d", got)
	}
	flux := r.find("rfluxmtx")[0]
	joined := flux.String()
	if !strings.Contains(joined, "-hd") || !strings.Contains(joined, "-ff") {
		t.Fatalf("tensor-tree flux options missing: %s", joined)
	}

	calcs := r.find("rcalc")
	if len(calcs) != 1 {
		t.Fatalf("expected 1 reduction stage; got %d", len(calcs))
	}
	cargs := calcs[0].String()
	for _, want := range []string{"Omega:PI/(4*4)", "Yi:.2651*$1+.6701*$2+.0648*$3"} {
		if !strings.Contains(cargs, want) {
			t.Fatalf("reduction stage missing %q: %s", want, cargs)
		}
	}

	wraps := r.find("wrapBSDF")
	if len(wraps) != 1 {
		t.Fatalf("expected 1 wrap invocation; got %d", len(wraps))
	}
	wargs := wraps[0].String()
	for _, want := range []string{"-a t4", "-s Visible", "-tb "} {
		if !strings.Contains(wargs, want) {
			t.Fatalf("wrap invocation missing %q: %s", want, wargs)
		}
	}
	if strings.Contains(wargs, "-rb") || strings.Contains(wargs, "-tf") {
		t.Fatalf("unexpected pass fields in wrap invocation: %s", wargs)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("wrapped document missing: %v", err)
	}
}

func TestGenMatrixKlemsAllPasses(t *testing.T) {
	rows, err := basis.PatchCount("kf")
	if err != nil {
		t.Fatalf("unable to size dummy matrix: %v", err)
	}
	r := &recRunner{t: t, rows: rows}
	m := testModel(t, 2, "kf", "kf")
	out := filepath.Join(t.TempDir(), "shade.xml")

	err = GenMatrix(r, m, out, Options{Wrap: true, Refl: true, Forw: true})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	// One invocation per window per direction; reflection folds into
	// the transmission receivers.
	if got := r.count("rfluxmtx"); got != 4 {
		t.Fatalf("expected 4 flux invocations; got %d", got)
	}
	if got := len(r.outputs); got != 8 {
		t.Fatalf("expected 8 staged pass outputs; got %d", got)
	}

	wraps := r.find("wrapBSDF")
	if len(wraps) != 2 {
		t.Fatalf("expected 2 wrap invocations; got %d", len(wraps))
	}
	for _, w := range wraps {
		joined := w.String()
		for _, want := range []string{"-a kf", "-c", "-tb ", "-rb ", "-tf ", "-rf "} {
			if !strings.Contains(joined, want) {
				t.Fatalf("wrap invocation missing %q: %s", want, joined)
			}
		}
	}

	for _, name := range []string{"shade_w1.xml", "shade_w2.xml"} {
		if _, err := os.Stat(filepath.Join(filepath.Dir(out), name)); err != nil {
			t.Fatalf("wrapped document %s missing: %v", name, err)
		}
	}
}

func TestGenMatrixRawPasses(t *testing.T) {
	r := &recRunner{t: t}
	m := testModel(t, 1, "kf", "kf")
	dir := t.TempDir()
	out := filepath.Join(dir, "shade.xml")

	if err := GenMatrix(r, m, out, Options{}); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if got := r.count("wrapBSDF"); got != 0 {
		t.Fatalf("raw mode must not wrap; got %d wrap invocations", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "shade_tb0.mtx")); err != nil {
		t.Fatalf("raw pass matrix missing: %v", err)
	}
}

func TestCollectRawCopyFallback(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tb0.dat")
	if err := os.WriteFile(src, []byte("pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "shade_tb0.mtx")

	// The path taken when rename fails across filesystems.
	if err := copyAndRemove(src, dst); err != nil {
		t.Fatalf("copy fallback failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "pass\n" {
		t.Fatalf("destination content wrong: %q, %v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source not removed after copy")
	}
}

func TestGenMatrixRejectsMixedFamilies(t *testing.T) {
	r := &recRunner{t: t}
	m := testModel(t, 1, "kf", "sc4")

	err := GenMatrix(r, m, filepath.Join(t.TempDir(), "shade.xml"), Options{Wrap: true})
	var cerr *basis.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected configuration error; got %v", err)
	}
	if len(r.cmds) != 0 {
		t.Fatalf("expected no invocations after config rejection; got %d", len(r.cmds))
	}
}

func TestGenMatrixRejectsNonPowerOfTwoTree(t *testing.T) {
	r := &recRunner{t: t}
	m := testModel(t, 1, "sc6", "sc6")

	err := GenMatrix(r, m, filepath.Join(t.TempDir(), "shade.xml"), Options{Wrap: true})
	var cerr *basis.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected configuration error; got %v", err)
	}
	if len(r.cmds) != 0 {
		t.Fatalf("expected no invocations after config rejection; got %d", len(r.cmds))
	}
}

func TestGenMatrixGzipDocument(t *testing.T) {
	rows, err := basis.PatchCount("kq")
	if err != nil {
		t.Fatalf("unable to size dummy matrix: %v", err)
	}
	r := &recRunner{t: t, rows: rows}
	m := testModel(t, 1, "kq", "kq")
	out := filepath.Join(t.TempDir(), "shade.xml")

	if err := GenMatrix(r, m, out, Options{Wrap: true, Gzip: true}); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	f, err := os.Open(out + ".gz")
	if err != nil {
		t.Fatalf("compressed document missing: %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("document is not gzip: %v", err)
	}
	defer zr.Close()
	var doc bytes.Buffer
	if _, err := doc.ReadFrom(zr); err != nil {
		t.Fatalf("unable to decompress document: %v", err)
	}
	if !strings.Contains(doc.String(), "<BSDF>") {
		t.Fatalf("unexpected document payload: %q", doc.String())
	}
}
