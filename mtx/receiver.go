package mtx

import (
	"fmt"
	"strings"

	"github.com/lumenlab/facade/basis"
	"github.com/lumenlab/facade/scene"
)

// A Receiver is the flux-collecting endpoint of one matrix
// computation. Like a sender it owns one staged description; sun
// receivers additionally own a staged modifier list.
type Receiver struct {
	basis   string
	content string

	res    *scene.Resource
	modRes *scene.Resource
}

// Path to the staged receiver description.
func (r *Receiver) Path() string { return r.res.Path() }

// Content returns the staged description text.
func (r *Receiver) Content() string { return r.content }

// ModifierPath returns the staged modifier list of a sun receiver, or
// an empty string.
func (r *Receiver) ModifierPath() string {
	if r.modRes == nil {
		return ""
	}
	return r.modRes.Path()
}

// Release the staged description(s). Both resources are attempted even
// if the first fails.
func (r *Receiver) Release() error {
	if r == nil {
		return nil
	}
	err := r.res.Release()
	if modErr := r.modRes.Release(); err == nil {
		err = modErr
	}
	return err
}

// Add folds another receiver into this one by concatenating the staged
// descriptions, order preserved. The other receiver's staging is
// released; this receiver then answers for both in one invocation.
func (r *Receiver) Add(other *Receiver) error {
	r.content += other.content
	if err := r.res.Rewrite(r.content); err != nil {
		return err
	}
	return other.Release()
}

// SurfaceReceiver stages a surface set as a flux-collecting receiver
// backed by a uniform glow source. out names the matrix file the
// invocation writes for this receiver.
func SurfaceReceiver(prims []scene.Primitive, basisTag string, offset float64, out string) (*Receiver, error) {
	content, err := prepareSurface(prims, basisTag, offset, "glow", out)
	if err != nil {
		return nil, err
	}
	res, err := scene.Stage("rcvr_srf", content)
	if err != nil {
		return nil, err
	}
	return &Receiver{basis: basisTag, content: content, res: res}, nil
}

// SkyReceiver stages a uniform glow sky and ground dome discretized at
// a Reinhart/Tregenza basis.
func SkyReceiver(basisTag string) (*Receiver, error) {
	b, err := basis.Parse(basisTag)
	if err != nil {
		return nil, err
	}
	if b.Family != basis.Reinhart {
		return nil, &basis.ConfigError{Msg: fmt.Sprintf("sky receiver basis must be Reinhart/Tregenza; got %q", basisTag)}
	}

	var sb strings.Builder
	sb.WriteString("#@rfluxmtx u=+Y h=u\n\n")
	sb.WriteString("void glow groundglow\n0\n0\n4 1 1 1 0\n\n")
	sb.WriteString("groundglow source ground\n0\n0\n4 0 0 -1 180\n\n")
	fmt.Fprintf(&sb, "#@rfluxmtx u=+Y h=%s\n\n", b.Tag)
	sb.WriteString("void glow skyglow\n0\n0\n4 1 1 1 0\n\n")
	sb.WriteString("skyglow source skydome\n0\n0\n4 0 0 1 180\n")
	content := sb.String()

	res, err := scene.Stage("rcvr_sky", content)
	if err != nil {
		return nil, err
	}
	return &Receiver{basis: basisTag, content: content, res: res}, nil
}

// SunReceiver stages one light source per active discretized sun
// position plus the modifier list consumed by the direct-sun
// invocation.
func SunReceiver(basisTag string, cull Culler) (*Receiver, error) {
	patches, active, err := activeSuns(basisTag, cull)
	if err != nil {
		return nil, err
	}

	var body, mods strings.Builder
	for i, p := range patches {
		if !active[i] {
			continue
		}
		fmt.Fprintf(&body, "void light sol%d\n0\n0\n3 1 1 1\n", i)
		fmt.Fprintf(&body, "sol%d source sun%d\n0\n0\n4 %g %g %g 0.533\n\n", i, i, p.Dir.X, p.Dir.Y, p.Dir.Z)
		fmt.Fprintf(&mods, "sol%d\n", i)
	}
	if body.Len() == 0 {
		return nil, fmt.Errorf("mtx: sun culling removed every position")
	}

	res, err := scene.Stage("rcvr_sun", body.String())
	if err != nil {
		return nil, err
	}
	modRes, err := scene.Stage("rcvr_sunmod", mods.String())
	if err != nil {
		res.Release()
		return nil, err
	}
	return &Receiver{basis: basisTag, content: body.String(), res: res, modRes: modRes}, nil
}
