package ncp

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lumenlab/facade/scene"
)

// solarModel rewrites the environment so the shading material's solar
// spectral data drives the simulation. The data-driven material embeds
// both spectra in one interchange document with the visible band wired
// as primary; swapping the wavelength labels promotes the solar band
// without touching any coefficient.
func solarModel(m Model, stageDir string) (Model, error) {
	env := make([]string, len(m.Env))
	swapped := false
	for i, path := range m.Env {
		prims, err := scene.ParseFile(path)
		if err != nil {
			return Model{}, err
		}

		changed := false
		for j, p := range prims {
			if p.Type != "BSDF" || len(p.StrArgs) < 2 {
				continue
			}
			doc := p.StrArgs[1]
			solarDoc := filepath.Join(stageDir, "solar_"+filepath.Base(doc))
			if err := swapSpectra(doc, solarDoc); err != nil {
				return Model{}, err
			}
			p.StrArgs = append([]string{}, p.StrArgs...)
			p.StrArgs[1] = solarDoc
			prims[j] = p
			changed = true
			swapped = true
		}
		if !changed {
			env[i] = path
			continue
		}

		staged := filepath.Join(stageDir, "solar_env"+strconv.Itoa(i)+".rad")
		if err := os.WriteFile(staged, []byte(scene.Format(prims)), 0o644); err != nil {
			return Model{}, &scene.ResourceError{Op: "solar", Path: staged, Err: err}
		}
		env[i] = staged
	}

	if !swapped {
		return Model{}, &scene.ResourceError{
			Op:   "solar",
			Path: strings.Join(m.Env, " "),
			Err:  errNoSolarMaterial,
		}
	}
	return Model{Windows: m.Windows, Ports: m.Ports, Env: env, SBasis: m.SBasis, RBasis: m.RBasis}, nil
}

// swapSpectra copies an interchange document with its Visible and
// Solar wavelength labels exchanged. The token stream is rewritten
// structurally so every other element survives untouched.
func swapSpectra(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &scene.ResourceError{Op: "solar", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return &scene.ResourceError{Op: "solar", Path: dst, Err: err}
	}
	defer out.Close()

	dec := xml.NewDecoder(in)
	enc := xml.NewEncoder(out)
	inWavelength := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &scene.ResourceError{Op: "solar", Path: src, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Wavelength" {
				inWavelength = true
			}
		case xml.EndElement:
			if t.Name.Local == "Wavelength" {
				inWavelength = false
			}
		case xml.CharData:
			if inWavelength {
				switch strings.TrimSpace(string(t)) {
				case "Visible":
					tok = xml.CharData("Solar")
				case "Solar":
					tok = xml.CharData("Visible")
				}
			}
		}
		if err := enc.EncodeToken(tok); err != nil {
			return &scene.ResourceError{Op: "solar", Path: dst, Err: err}
		}
	}
	if err := enc.Flush(); err != nil {
		return &scene.ResourceError{Op: "solar", Path: dst, Err: err}
	}
	return nil
}
