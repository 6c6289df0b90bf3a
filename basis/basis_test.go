package basis

import (
	"errors"
	"math"
	"testing"
)

func TestParseTags(t *testing.T) {
	type tcase struct {
		tag    string
		family Family
		subdiv int
		back   bool
	}
	cases := []tcase{
		{"kf", Klems, 0, false},
		{"-kh", Klems, 0, true},
		{"sc4", TensorTree, 4, false},
		{"-sc16", TensorTree, 16, true},
		{"r4", Reinhart, 4, false},
	}

	for _, s := range cases {
		b, err := Parse(s.tag)
		if err != nil {
			t.Fatalf("%s: %v", s.tag, err)
		}
		if b.Family != s.family || b.Subdiv != s.subdiv || b.Back != s.back {
			t.Fatalf("%s: got %+v", s.tag, b)
		}
	}

	for _, tag := range []string{"", "xx", "sc", "scx", "r", "-"} {
		if _, err := Parse(tag); err == nil {
			t.Fatalf("expected error for tag %q", tag)
		}
	}
}

func TestCheckPair(t *testing.T) {
	if err := CheckPair("kf", "kf"); err != nil {
		t.Fatal(err)
	}
	if err := CheckPair("sc4", "sc4"); err != nil {
		t.Fatal(err)
	}
	if err := CheckPair("kf", "sc4"); err == nil {
		t.Fatal("expected error for mixed basis families")
	}
}

func TestTreeLog2(t *testing.T) {
	b, err := Parse("sc4")
	if err != nil {
		t.Fatal(err)
	}
	log2, err := b.TreeLog2()
	if err != nil {
		t.Fatal(err)
	}
	if log2 != 2 {
		t.Fatalf("expected log2 2; got %d", log2)
	}

	b, err = Parse("sc6")
	if err != nil {
		t.Fatal(err)
	}
	_, err = b.TreeLog2()
	if err == nil {
		t.Fatal("expected error for non power-of-two resolution")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError; got %T", err)
	}
}

func TestKlemsPatchCounts(t *testing.T) {
	type tcase struct {
		tag string
		n   int
	}
	for _, s := range []tcase{{"kf", 145}, {"kh", 73}, {"kq", 41}, {"sc4", 16}, {"r1", 145}, {"r4", 2305}} {
		n, err := PatchCount(s.tag)
		if err != nil {
			t.Fatalf("%s: %v", s.tag, err)
		}
		if n != s.n {
			t.Fatalf("%s: expected %d patches; got %d", s.tag, s.n, n)
		}
	}
}

func TestKlemsCoefficients(t *testing.T) {
	for _, tag := range []string{"kf", "kh", "kq"} {
		coeffs, err := Coefficients(tag)
		if err != nil {
			t.Fatal(err)
		}
		n, _ := PatchCount(tag)
		if len(coeffs) != n {
			t.Fatalf("%s: expected %d coefficients; got %d", tag, n, len(coeffs))
		}

		// Ring solid angles telescope to the full hemisphere projection.
		sum := 0.0
		for _, c := range coeffs {
			if c <= 0 {
				t.Fatalf("%s: non-positive coefficient %g", tag, c)
			}
			sum += c
		}
		if math.Abs(sum-math.Pi) > 1e-9 {
			t.Fatalf("%s: expected coefficients to sum to pi; got %g", tag, sum)
		}
	}
}

func TestCoefficientRoundTrip(t *testing.T) {
	coeffs, err := Coefficients("kf")
	if err != nil {
		t.Fatal(err)
	}

	row := []float64{0.25, 1.5, 42}
	for i, c := range coeffs {
		for _, val := range row {
			if got := val / c * c; math.Abs(got-val) > 1e-12*val {
				t.Fatalf("patch %d: round-trip %g -> %g", i, val, got)
			}
		}
	}
}

func TestReinhartPatches(t *testing.T) {
	for _, mf := range []int{1, 2, 4} {
		patches := ReinhartPatches(mf)
		if len(patches) != 144*mf*mf+1 {
			t.Fatalf("mf %d: expected %d patches; got %d", mf, 144*mf*mf+1, len(patches))
		}

		zenith := patches[len(patches)-1]
		if zenith.Alt != 90 {
			t.Fatalf("mf %d: expected zenith cap last; got alt %g", mf, zenith.Alt)
		}

		for i, p := range patches {
			if math.Abs(p.Dir.Length()-1) > 1e-9 {
				t.Fatalf("mf %d: patch %d direction not unit: %v", mf, i, p.Dir)
			}
			if p.Dir.Z < 0 {
				t.Fatalf("mf %d: patch %d below horizon", mf, i)
			}
		}
	}
}
