package ncp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lumenlab/facade/basis"
	"github.com/lumenlab/facade/mtx"
	"github.com/lumenlab/facade/rad"
	"github.com/lumenlab/facade/scene"
)

// A Model aggregates everything one matrix-generation request needs:
// the window primitives, the synthesized port primitives, the
// environment scene files and the sender/receiver sampling bases. It
// is immutable for the duration of the run.
type Model struct {
	Windows []scene.Primitive
	Ports   []scene.Primitive
	Env     []string
	SBasis  string
	RBasis  string
}

// Options is the request-scoped pipeline configuration.
type Options struct {
	// Pass-through simulator options.
	Opt []string

	// Compute the reflection passes in addition to transmission.
	Refl bool

	// Compute the forward (front) passes in addition to the default
	// backward direction.
	Forw bool

	// Wrap raw pass matrices into one interchange document per window.
	// When false, raw matrices are moved next to the output path.
	Wrap bool

	// Repeat the pipeline with the solar spectral variant of the
	// shading material and merge both spectra into one document.
	Solar bool

	// Write interchange documents gzip-compressed.
	Gzip bool
}

// Pass identifies one simulator invocation for one window: direction
// (front/back) and transmission or reflection.
type pass struct {
	key string // tb, rb, tf or rf
	idx int    // window index
}

func (p pass) name() string {
	return p.key + strconv.Itoa(p.idx)
}

// passSet builds the staging map for every active pass. Back
// transmission always runs; the rest depend on the option toggles.
func passSet(windows int, o Options, dir string) map[string]string {
	paths := make(map[string]string)
	for idx := 0; idx < windows; idx++ {
		add := func(key string) {
			p := pass{key, idx}
			paths[p.name()] = filepath.Join(dir, p.name()+".dat")
		}
		add("tb")
		if o.Forw {
			add("tf")
		}
		if o.Refl {
			add("rb")
			if o.Forw {
				add("rf")
			}
		}
	}
	return paths
}

// A spectrum groups the staged pass matrices of one wavelength band.
type spectrum struct {
	name  string // interchange spectrum label, empty for the default
	paths map[string]string
}

// windowFields returns the wrap fields of one window in canonical
// tb, rb, tf, rf order, skipping passes that did not run.
func windowFields(paths map[string]string, idx int) []rad.WrapField {
	var fields []rad.WrapField
	for _, key := range []string{"tb", "rb", "tf", "rf"} {
		if path, ok := paths[pass{key, idx}.name()]; ok {
			fields = append(fields, rad.WrapField{Key: key, Path: path})
		}
	}
	return fields
}

// windowOut maps a window index onto its output document path. A
// single window takes the stem as-is.
func windowOut(out string, idx, windows int) string {
	if windows == 1 {
		return out
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "_w" + strconv.Itoa(idx+1) + ext
}

// GenMatrix is the pipeline entry point: it runs every active
// directional pass for every window of the model and encodes the
// results. out is the output path stem; each window produces either
// one interchange document or a set of raw pass matrices next to it.
func GenMatrix(r rad.Runner, m Model, out string, o Options) error {
	if err := basis.CheckPair(m.SBasis, m.RBasis); err != nil {
		return err
	}

	// Tensor-tree wrapping constraints are checked before any
	// invocation is issued.
	rb, err := basis.Parse(m.RBasis)
	if err != nil {
		return err
	}
	tree := o.Wrap && rb.Family == basis.TensorTree
	if tree {
		if _, err = rb.TreeLog2(); err != nil {
			return err
		}
		o.Opt = append(append([]string{}, o.Opt...), "-hd", "-ff")
	}

	stageDir, err := os.MkdirTemp("", "ncp")
	if err != nil {
		return fmt.Errorf("ncp: %w", err)
	}
	defer os.RemoveAll(stageDir)

	paths := passSet(len(m.Windows), o, stageDir)
	if err = computePasses(r, m, paths, o); err != nil {
		return err
	}

	if !o.Wrap {
		return collectRaw(paths, out)
	}

	spectra := []spectrum{{paths: paths}}
	if o.Solar {
		sm, err := solarModel(m, stageDir)
		if err != nil {
			return err
		}
		solarDir := filepath.Join(stageDir, "solar")
		if err = os.Mkdir(solarDir, 0o755); err != nil {
			return fmt.Errorf("ncp: %w", err)
		}
		spaths := passSet(len(m.Windows), o, solarDir)
		if err = computePasses(r, sm, spaths, o); err != nil {
			return err
		}
		spectra = []spectrum{
			{name: "Visible", paths: paths},
			{name: "Solar", paths: spaths},
		}
	}

	if tree {
		return treeWrap(r, m, spectra, out, o)
	}
	return klemsWrap(r, m, spectra, out, o)
}

// computePasses runs every active directional pass of one spectral
// variant of the model.
func computePasses(r rad.Runner, m Model, paths map[string]string, o Options) error {
	if err := computeBack(r, m, paths, o); err != nil {
		return err
	}
	if o.Forw {
		return computeFront(r, m, paths, o)
	}
	return nil
}

// computeBack runs the backward passes: light entering from outside.
// The window is the sender, the ports the receiver; a requested
// reflection pass folds a flipped-window receiver into the same
// invocation.
func computeBack(r rad.Runner, m Model, paths map[string]string, o Options) error {
	logger.Info("computing backward passes")
	for idx, wp := range m.Windows {
		logger.Infof("backward transmission for window %d", idx)
		rcvr, err := mtx.SurfaceReceiver(m.Ports, "-"+m.RBasis, 0, paths[pass{"tb", idx}.name()])
		if err != nil {
			return err
		}
		sndr, err := mtx.SurfaceSender([]scene.Primitive{wp}, "-"+m.SBasis, 0)
		if err != nil {
			rcvr.Release()
			return err
		}

		if o.Refl {
			logger.Infof("backward reflection for window %d", idx)
			flipped, err := flipPrim(wp, "breceiver", "window"+strconv.Itoa(idx))
			if err != nil {
				sndr.Release()
				rcvr.Release()
				return err
			}
			back, err := mtx.SurfaceReceiver([]scene.Primitive{flipped}, "-"+m.RBasis, 0, paths[pass{"rb", idx}.name()])
			if err != nil {
				sndr.Release()
				rcvr.Release()
				return err
			}
			if err = rcvr.Add(back); err != nil {
				sndr.Release()
				rcvr.Release()
				return err
			}
		}

		if err = mtx.Compute(r, sndr, rcvr, m.Env, "", o.Opt); err != nil {
			return err
		}
	}
	return nil
}

// computeFront runs the forward passes: the flipped ports send, each
// flipped window receives; a requested reflection pass folds a port
// receiver into the same invocation.
func computeFront(r rad.Runner, m Model, paths map[string]string, o Options) error {
	logger.Info("computing forward passes")
	flippedPorts := make([]scene.Primitive, len(m.Ports))
	for i, p := range m.Ports {
		fp, err := flipPrim(p, p.Modifier, p.Identifier)
		if err != nil {
			return err
		}
		flippedPorts[i] = fp
	}

	for idx, wp := range m.Windows {
		logger.Infof("forward transmission for window %d", idx)
		sndr, err := mtx.SurfaceSender(flippedPorts, "-"+m.RBasis, 0)
		if err != nil {
			return err
		}

		flipped, err := flipPrim(wp, "breceiver", "window"+strconv.Itoa(idx))
		if err != nil {
			sndr.Release()
			return err
		}
		rcvr, err := mtx.SurfaceReceiver([]scene.Primitive{flipped}, "-"+m.SBasis, 0, paths[pass{"tf", idx}.name()])
		if err != nil {
			sndr.Release()
			return err
		}

		if o.Refl {
			logger.Infof("forward reflection for window %d", idx)
			ref, err := mtx.SurfaceReceiver(m.Ports, m.RBasis, 0, paths[pass{"rf", idx}.name()])
			if err != nil {
				sndr.Release()
				rcvr.Release()
				return err
			}
			if err = rcvr.Add(ref); err != nil {
				sndr.Release()
				rcvr.Release()
				return err
			}
		}

		if err = mtx.Compute(r, sndr, rcvr, m.Env, "", o.Opt); err != nil {
			return err
		}
	}
	return nil
}

// flipPrim rebuilds a polygon primitive with reversed vertex order.
func flipPrim(p scene.Primitive, modifier, identifier string) (scene.Primitive, error) {
	pg, err := p.Polygon()
	if err != nil {
		return scene.Primitive{}, err
	}
	return scene.FromPolygon(pg.Flip(), modifier, identifier), nil
}

// collectRaw moves the raw pass matrices next to the output stem.
func collectRaw(paths map[string]string, out string) error {
	dir := filepath.Dir(out)
	stem := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	for key, src := range paths {
		dst := filepath.Join(dir, stem+"_"+key+".mtx")
		if err := moveFile(src, dst); err != nil {
			return err
		}
		logger.Infof("raw pass matrix: %s", dst)
	}
	return nil
}

// moveFile renames src onto dst. The staging dir and the output dir
// can sit on different filesystems, where rename fails with EXDEV;
// fall back to copy-and-remove.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyAndRemove(src, dst)
}

func copyAndRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &scene.ResourceError{Op: "collect", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return &scene.ResourceError{Op: "collect", Path: dst, Err: err}
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return &scene.ResourceError{Op: "collect", Path: dst, Err: err}
	}
	if err = out.Close(); err != nil {
		return &scene.ResourceError{Op: "collect", Path: dst, Err: err}
	}
	return os.Remove(src)
}
