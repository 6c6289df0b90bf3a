package ncp

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/lumenlab/facade/basis"
	"github.com/lumenlab/facade/rad"
	"github.com/lumenlab/facade/scene"
)

// klemsWrap collapses every pass matrix to photopic values, normalizes
// it by the per-patch solid angles and wraps one interchange document
// per window.
func klemsWrap(r rad.Runner, m Model, spectra []spectrum, out string, o Options) error {
	tag := strings.TrimPrefix(m.RBasis, "-")
	coeffs, err := basis.Coefficients(tag)
	if err != nil {
		return err
	}

	for idx := range m.Windows {
		var wrapSpectra []rad.WrapSpectrum
		for _, sp := range spectra {
			var fields []rad.WrapField
			for _, f := range windowFields(sp.paths, idx) {
				staged := f.Path + ".klems"
				if err := klemsStage(r, coeffs, f.Path, staged); err != nil {
					return err
				}
				fields = append(fields, rad.WrapField{Key: f.Key, Path: staged})
			}
			wrapSpectra = append(wrapSpectra, rad.WrapSpectrum{Name: sp.name, Fields: fields})
		}

		doc, err := r.Run(rad.WrapBSDF(tag, true, wrapSpectra))
		if err != nil {
			return err
		}
		path := windowOut(out, idx, len(m.Windows))
		if err := writeDoc(path, doc, o.Gzip); err != nil {
			return err
		}
		logger.Infof("wrapped document: %s", docPath(path, o.Gzip))
	}
	return nil
}

// klemsStage flattens one raw pass matrix to a single photopic channel
// and divides each patch row by its solid-angle coefficient.
func klemsStage(r rad.Runner, coeffs []float64, src, dst string) error {
	flat, err := r.Run(rad.RmtxopPhotopic(src))
	if err != nil {
		return err
	}
	body, err := r.Run(rad.Getinfo(bytes.NewReader(flat)))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	row := 0
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<22)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if row >= len(coeffs) {
			return fmt.Errorf("ncp: %s: matrix has more rows than the %d basis patches", src, len(coeffs))
		}
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("ncp: %s: row %d: %w", src, row, err)
			}
			if i > 0 {
				buf.WriteByte('\t')
			}
			fmt.Fprintf(&buf, "%.6f", v/coeffs[row])
		}
		buf.WriteByte('\n')
		row++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("ncp: %s: %w", src, err)
	}
	if row != len(coeffs) {
		return fmt.Errorf("ncp: %s: matrix has %d rows, basis has %d patches", src, row, len(coeffs))
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

// treeWrap reduces every pass matrix into an adaptive tensor tree and
// wraps one interchange document per window. Reflection passes keep the
// ring average so culled nodes stay energy-conserving.
func treeWrap(r rad.Runner, m Model, spectra []spectrum, out string, o Options) error {
	rb, err := basis.Parse(m.RBasis)
	if err != nil {
		return err
	}
	log2, err := rb.TreeLog2()
	if err != nil {
		return err
	}

	ns := rb.Subdiv
	exprs := []string{
		rad.Expr("Omega:PI/(%d*%d)", ns, ns),
		"Yi:.2651*$1+.6701*$2+.0648*$3",
		"$1=Yi/Omega",
	}

	for idx := range m.Windows {
		var wrapSpectra []rad.WrapSpectrum
		for _, sp := range spectra {
			name := sp.name
			if name == "" {
				name = "Visible"
			}
			var fields []rad.WrapField
			for _, f := range windowFields(sp.paths, idx) {
				staged := f.Path + ".txt"
				chain := []rad.Command{
					rad.Rcalc(true, exprs, f.Path),
					rad.RttreeReduce(4, log2, 90, strings.HasPrefix(f.Key, "r"), nil),
				}
				if err := rad.Pipe(r, chain, staged); err != nil {
					return err
				}
				fields = append(fields, rad.WrapField{Key: f.Key, Path: staged})
			}
			wrapSpectra = append(wrapSpectra, rad.WrapSpectrum{Name: name, Fields: fields})
		}

		doc, err := r.Run(rad.WrapBSDF("t4", false, wrapSpectra))
		if err != nil {
			return err
		}
		path := windowOut(out, idx, len(m.Windows))
		if err := writeDoc(path, doc, o.Gzip); err != nil {
			return err
		}
		logger.Infof("wrapped document: %s", docPath(path, o.Gzip))
	}
	return nil
}

func docPath(path string, gz bool) string {
	if gz && !strings.HasSuffix(path, ".gz") {
		return path + ".gz"
	}
	return path
}

// writeDoc writes one interchange document, gzip-compressed when
// requested.
func writeDoc(path string, doc []byte, gz bool) error {
	path = docPath(path, gz)
	f, err := os.Create(path)
	if err != nil {
		return &scene.ResourceError{Op: "write", Path: path, Err: err}
	}
	defer f.Close()

	if !gz {
		_, err = f.Write(doc)
		if err != nil {
			return &scene.ResourceError{Op: "write", Path: path, Err: err}
		}
		return nil
	}

	zw := gzip.NewWriter(f)
	if _, err = zw.Write(doc); err != nil {
		zw.Close()
		return &scene.ResourceError{Op: "write", Path: path, Err: err}
	}
	if err = zw.Close(); err != nil {
		return &scene.ResourceError{Op: "write", Path: path, Err: err}
	}
	return nil
}
