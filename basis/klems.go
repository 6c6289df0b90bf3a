package basis

import "math"

// Klems ring layout: polar-angle boundaries in degrees and patch count
// per ring, pole ring first.
type klemsLayout struct {
	name   string
	bounds []float64
	counts []int
}

var klemsTiers = map[string]klemsLayout{
	"kf": {
		name:   "Klems Full",
		bounds: []float64{0, 5, 15, 25, 35, 45, 55, 65, 75, 90},
		counts: []int{1, 8, 16, 20, 24, 24, 24, 16, 12},
	},
	"kh": {
		name:   "Klems Half",
		bounds: []float64{0, 6.5, 19.5, 32.5, 46.5, 61.5, 76.5, 90},
		counts: []int{1, 8, 16, 20, 12, 12, 4},
	},
	"kq": {
		name:   "Klems Quarter",
		bounds: []float64{0, 9, 27, 46, 66, 90},
		counts: []int{1, 8, 12, 12, 8},
	},
}

// Name returns the descriptive resolution name of a Klems tag.
func Name(tag string) (string, error) {
	tier, ok := klemsTiers[tag]
	if !ok {
		return "", configErrorf("unknown Klems tag %q", tag)
	}
	return tier.name, nil
}

// Coefficients returns the per-patch solid-angle (lambda) coefficients
// of a Klems tier, patch 0 at the pole: lambda = pi*(sin^2 hi - sin^2
// lo)/n for each ring of n patches.
func Coefficients(tag string) ([]float64, error) {
	tier, ok := klemsTiers[tag]
	if !ok {
		return nil, configErrorf("unknown Klems tag %q", tag)
	}

	var coeffs []float64
	for ring, n := range tier.counts {
		lo := tier.bounds[ring] * math.Pi / 180
		hi := tier.bounds[ring+1] * math.Pi / 180
		lambda := math.Pi * (math.Sin(hi)*math.Sin(hi) - math.Sin(lo)*math.Sin(lo)) / float64(n)
		for i := 0; i < n; i++ {
			coeffs = append(coeffs, lambda)
		}
	}
	return coeffs, nil
}

// PatchCount returns the number of directional patches of a basis tag.
func PatchCount(tag string) (int, error) {
	b, err := Parse(tag)
	if err != nil {
		return 0, err
	}
	switch b.Family {
	case Klems:
		total := 0
		for _, n := range klemsTiers[b.Tag].counts {
			total += n
		}
		return total, nil
	case TensorTree:
		return b.Subdiv * b.Subdiv, nil
	case Reinhart:
		return 144*b.Subdiv*b.Subdiv + 1, nil
	}
	return 0, configErrorf("unknown basis tag %q", tag)
}
