package curve

import (
	"math/big"
	"testing"
)

// toyCurve returns y² = x³ + 2x + 3 (mod 97) with base point (3, 6),
// which has order 5 (verified by hand: 5*(3,6) = Infinity).
func toyCurve(t *testing.T) *Curve {
	t.Helper()
	p := big.NewInt(97)
	a := big.NewInt(2)
	b := big.NewInt(3)
	g := Point{big.NewInt(3), big.NewInt(6)}
	n := big.NewInt(5)
	c, err := New(p, a, b, g, n)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestGeneratorOnCurve(t *testing.T) {
	c := toyCurve(t)
	if !c.OnCurve(c.G) {
		t.Fatal("generator expected to be on curve")
	}
}

func TestOnCurveRejectsGarbage(t *testing.T) {
	c := toyCurve(t)
	if c.OnCurve(Point{big.NewInt(1), big.NewInt(1)}) {
		t.Fatal("(1,1) should not be on curve")
	}
}

func TestAddIdentity(t *testing.T) {
	c := toyCurve(t)
	sum := c.Add(c.G, Infinity)
	if sum.X.Cmp(c.G.X) != 0 || sum.Y.Cmp(c.G.Y) != 0 {
		t.Fatalf("P + Infinity != P: got (%v,%v)", sum.X, sum.Y)
	}
}

func TestAddNegation(t *testing.T) {
	c := toyCurve(t)
	negG := c.Neg(c.G)
	sum := c.Add(c.G, negG)
	if !sum.IsInfinity() {
		t.Fatalf("P + (-P) expected Infinity, got (%v,%v)", sum.X, sum.Y)
	}
}

func TestScalarMulZero(t *testing.T) {
	c := toyCurve(t)
	r := c.ScalarMul(c.G, big.NewInt(0))
	if !r.IsInfinity() {
		t.Fatal("0*P expected Infinity")
	}
}

func TestScalarMulMatchesRepeatedAdd(t *testing.T) {
	c := toyCurve(t)
	acc := Infinity
	for k := int64(0); k < 5; k++ {
		got := c.ScalarMul(c.G, big.NewInt(k))
		if acc.IsInfinity() != got.IsInfinity() {
			t.Fatalf("k=%d: infinity mismatch", k)
		}
		if !acc.IsInfinity() && (acc.X.Cmp(got.X) != 0 || acc.Y.Cmp(got.Y) != 0) {
			t.Fatalf("k=%d: repeated-add (%v,%v) != scalar-mul (%v,%v)", k, acc.X, acc.Y, got.X, got.Y)
		}
		acc = c.Add(acc, c.G)
	}
}

func TestOrderAnnihilatesGenerator(t *testing.T) {
	c := toyCurve(t)
	r := c.ScalarMul(c.G, c.N)
	if !r.IsInfinity() {
		t.Fatalf("n*G expected Infinity, got (%v,%v)", r.X, r.Y)
	}
}

func TestAffineFailsOnInfinity(t *testing.T) {
	c := toyCurve(t)
	if _, _, err := c.Affine(Infinity); err == nil {
		t.Fatal("expected error for affine of infinity")
	}
}

func TestNewRejectsOffCurveGenerator(t *testing.T) {
	p := big.NewInt(97)
	a := big.NewInt(2)
	b := big.NewInt(3)
	bad := Point{big.NewInt(1), big.NewInt(1)}
	if _, err := New(p, a, b, bad, big.NewInt(5)); err == nil {
		t.Fatal("expected error constructing curve with off-curve generator")
	}
}
