package confid

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/umskt/umskt-go/internal/testutils"
)

func toyField(t *testing.T) *Field {
	t.Helper()
	// A 63-bit prime stands in for the real activation modulus; NR=3 is
	// the smallest quadratic non-residue mod this prime.
	m := big.NewInt(4611686018427388039) // 2^62 + 135, prime
	return NewField(m, big.NewInt(3))
}

func TestFieldMulMatchesBigIntReference(t *testing.T) {
	f := toyField(t)
	cases := [][2]int64{{3, 5}, {0, 9}, {1, 1}, {123456789, 987654321}}
	for _, c := range cases {
		a := big.NewInt(c[0])
		b := big.NewInt(c[1])
		got := f.Mul(a, b)
		want := new(big.Int).Mod(new(big.Int).Mul(a, b), f.M)
		testutils.AssertBigIntsEqual(t, "Mul result", want, got)
	}
}

func TestFieldAddSubRoundTrip(t *testing.T) {
	f := toyField(t)
	a := big.NewInt(42)
	b := big.NewInt(1000)
	sum := f.Add(a, b)
	back := f.Sub(sum, b)
	if back.Cmp(a) != 0 {
		t.Fatalf("Sub(Add(a,b),b) = %s, want %s", back, a)
	}
}

func TestMixUnmixRoundTrip(t *testing.T) {
	key := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	for _, n := range []int{14, 16, 17, 19} {
		for _, office := range []bool{false, true} {
			buf := make([]byte, n)
			for i := range buf {
				buf[i] = byte(i * 7)
			}
			original := append([]byte(nil), buf...)

			Mix(buf, key, office)
			Unmix(buf, key, office)

			if !bytes.Equal(buf, original) {
				t.Errorf("n=%d office=%v: Unmix(Mix(buf)) != buf; got %x want %x", n, office, buf, original)
			}
		}
	}
}

func TestPolynomialMulDivModMonic(t *testing.T) {
	f := toyField(t)
	// (x+2)(x+3) = x^2+5x+6
	a := NewPoly(f, big.NewInt(2), big.NewInt(1))
	b := NewPoly(f, big.NewInt(3), big.NewInt(1))
	prod := a.Mul(b)
	if prod.Degree() != 2 {
		t.Fatalf("degree = %d, want 2", prod.Degree())
	}
	if prod.Coeff(0).Int64() != 6 || prod.Coeff(1).Int64() != 5 || prod.Coeff(2).Int64() != 1 {
		t.Fatalf("unexpected product coefficients: %v %v %v", prod.Coeff(0), prod.Coeff(1), prod.Coeff(2))
	}

	q, r := prod.DivModMonic(b)
	if !r.IsZero() {
		t.Fatalf("remainder = %v, want zero", r)
	}
	if q.Degree() != 1 || q.Coeff(0).Int64() != 2 || q.Coeff(1).Int64() != 1 {
		t.Fatalf("quotient = %v, want (x+2)", q)
	}
}

func TestXGCDBezoutIdentity(t *testing.T) {
	f := toyField(t)
	a := NewPoly(f, big.NewInt(2), big.NewInt(1)) // x+2
	b := NewPoly(f, big.NewInt(3), big.NewInt(1)) // x+3
	gcd, m1, m2 := XGCD(a, b)

	lhs := m1.Mul(a).Add(m2.Mul(b))
	if lhs.Degree() != gcd.Degree() {
		t.Fatalf("Bezout identity degree mismatch: got deg %d, want deg %d", lhs.Degree(), gcd.Degree())
	}
	for i := 0; i <= gcd.Degree(); i++ {
		if lhs.Coeff(i).Cmp(gcd.Coeff(i)) != 0 {
			t.Fatalf("Bezout identity failed at coeff %d: got %s, want %s", i, lhs.Coeff(i), gcd.Coeff(i))
		}
	}
}

func toyCurve(t *testing.T) *Curve {
	t.Helper()
	f := toyField(t)
	// An arbitrary sextic; this package's divisor arithmetic does not
	// depend on the curve actually being cryptographically meaningful
	// for the identity/zero-scalar properties exercised here.
	sextic := []*big.Int{
		big.NewInt(1), big.NewInt(0), big.NewInt(0),
		big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(1),
	}
	return NewCurve(f, sextic)
}

func TestDivisorIdentityIsAdditiveUnit(t *testing.T) {
	c := toyCurve(t)
	d := &Divisor{
		U: NewPoly(c.Field, big.NewInt(5), big.NewInt(7), big.NewInt(1)),
		V: NewPoly(c.Field, big.NewInt(3), big.NewInt(2)),
	}
	sum := c.Add(d, c.Identity())
	if sum.U.Degree() != d.U.Degree() || sum.U.Coeff(0).Cmp(d.U.Coeff(0)) != 0 || sum.U.Coeff(1).Cmp(d.U.Coeff(1)) != 0 {
		t.Fatalf("Add(d, identity) changed U: got %v/%v want %v/%v", sum.U.Coeff(0), sum.U.Coeff(1), d.U.Coeff(0), d.U.Coeff(1))
	}
}

func TestScalarMulZeroIsIdentity(t *testing.T) {
	c := toyCurve(t)
	d := &Divisor{
		U: NewPoly(c.Field, big.NewInt(5), big.NewInt(7), big.NewInt(1)),
		V: NewPoly(c.Field, big.NewInt(3), big.NewInt(2)),
	}
	result := c.ScalarMul(d, big.NewInt(0))
	if !result.IsIdentity() {
		t.Fatalf("ScalarMul(d, 0) = %v/%v, want identity", result.U, result.V)
	}
}

func TestEmitConfirmationIDShape(t *testing.T) {
	e := big.NewInt(123456789)
	s := EmitConfirmationID(e)
	groups := 0
	for _, r := range s {
		if r == '-' {
			groups++
		}
	}
	if groups != 6 {
		t.Fatalf("EmitConfirmationID produced %d dashes, want 6", groups)
	}
	if len(s) != 48 {
		t.Fatalf("EmitConfirmationID length = %d, want 48", len(s))
	}
}

func TestParseInstallationIDRejectsShortInput(t *testing.T) {
	_, _, err := ParseInstallationID("12345")
	if err == nil {
		t.Fatal("expected error for a short installation id")
	}
}

func TestParseInstallationIDRejectsBadCheckDigit(t *testing.T) {
	// Group "12345" with an incorrect 6th check digit.
	_, _, err := ParseInstallationID("123459" + "000000" + "000000" + "000000" + "000000" + "000000" + "00000000")
	if err == nil {
		t.Fatal("expected error for an invalid check digit")
	}
}
