// Package basis models the angular discretization schemes used by
// matrix endpoints: the uniform Klems tiers, adaptive Shirley-Chiu
// tensor-tree subdivisions and the Reinhart/Tregenza sky patching.
package basis

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigError is a fatal configuration defect: an unknown basis tag, a
// mismatched basis family or a tensor-tree resolution that is not a
// power of two. It is always surfaced before any simulator invocation.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "basis: " + e.Msg
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

type Family int

const (
	Klems Family = iota
	TensorTree
	Reinhart
)

func (f Family) String() string {
	switch f {
	case Klems:
		return "Klems"
	case TensorTree:
		return "tensor-tree"
	case Reinhart:
		return "Reinhart"
	}
	return "unknown"
}

// A Basis is a parsed angular basis tag. Back marks the leading minus
// used to sample a surface from its back side; Tag retains the bare tag
// without the flag.
type Basis struct {
	Tag    string
	Family Family
	Subdiv int
	Back   bool
}

// Parse an angular basis tag: kf/kh/kq (Klems), scN (tensor-tree,
// N subdivisions per side) or rN (Reinhart MF:N). A leading minus
// flags back-side sampling.
func Parse(tag string) (Basis, error) {
	b := Basis{Tag: tag}
	if strings.HasPrefix(b.Tag, "-") {
		b.Back = true
		b.Tag = b.Tag[1:]
	}

	switch {
	case b.Tag == "kf" || b.Tag == "kh" || b.Tag == "kq":
		b.Family = Klems
	case strings.HasPrefix(b.Tag, "sc"):
		n, err := strconv.Atoi(b.Tag[2:])
		if err != nil || n < 1 {
			return b, configErrorf("invalid tensor-tree tag %q", tag)
		}
		b.Family = TensorTree
		b.Subdiv = n
	case strings.HasPrefix(b.Tag, "r"):
		n, err := strconv.Atoi(b.Tag[1:])
		if err != nil || n < 1 {
			return b, configErrorf("invalid Reinhart tag %q", tag)
		}
		b.Family = Reinhart
		b.Subdiv = n
	default:
		return b, configErrorf("unknown basis tag %q", tag)
	}
	return b, nil
}

// CheckPair validates that the sender and receiver bases belong to the
// same family. Mixing families is rejected before any pass runs.
func CheckPair(sender, receiver string) error {
	s, err := Parse(sender)
	if err != nil {
		return err
	}
	r, err := Parse(receiver)
	if err != nil {
		return err
	}
	if s.Family != r.Family {
		return configErrorf("sender basis %q (%s) and receiver basis %q (%s) mix families",
			sender, s.Family, receiver, r.Family)
	}
	return nil
}

// TreeLog2 returns log2 of the tensor-tree side length, rejecting
// resolutions that are not an exact power of two.
func (b Basis) TreeLog2() (int, error) {
	if b.Family != TensorTree {
		return 0, configErrorf("basis %q is not tensor-tree", b.Tag)
	}
	if b.Subdiv&(b.Subdiv-1) != 0 {
		return 0, configErrorf("tensor-tree resolution %d is not a power of two", b.Subdiv)
	}
	log2 := 0
	for n := b.Subdiv; n > 1; n >>= 1 {
		log2++
	}
	return log2, nil
}
