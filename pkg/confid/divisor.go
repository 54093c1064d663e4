package confid

import "math/big"

// Curve bundles the genus-2 hyperelliptic curve y² = F(x) over Field:
// the sextic F and its defining field, plus the non-residue already
// carried by Field.NR (spec §4.6, activation curve parameters).
type Curve struct {
	Field *Field
	F     *Poly // the sextic, degree ≤ 6
}

// NewCurve builds a Curve from the sextic's coefficients, low-degree
// first (spec §4.6 "a fixed sextic over the 62-bit prime field").
func NewCurve(field *Field, sextic []*big.Int) *Curve {
	return &Curve{Field: field, F: NewPoly(field, sextic...)}
}

// Divisor is a Mumford-form divisor (u, v) on Curve's Jacobian:
// u = x^deg + ... monic, v has degree < deg(u). The identity divisor
// has u = 1 (degree 0), v = 0; this package represents the "BAD"
// degenerate encodings from spec §3 as ordinary low-degree Poly values
// rather than as sentinel constants, since Poly already supports any
// degree uniformly.
type Divisor struct {
	U *Poly
	V *Poly
}

// Identity returns the zero divisor of c's Jacobian.
func (c *Curve) Identity() *Divisor {
	return &Divisor{U: onePoly(c.Field), V: zeroPoly(c.Field)}
}

// IsIdentity reports whether d is the zero divisor.
func (d *Divisor) IsIdentity() bool {
	return d.U.Degree() == 0 && d.V.IsZero()
}

// FindV solves for v such that u | v² - F, given only u (spec §4.6.3
// find_v). deg(u) must be 1 or 2. Returns false if no such v exists,
// in which case the caller is expected to perturb u and retry.
func (c *Curve) FindV(u *Poly) (*Poly, bool) {
	f := c.Field
	monicU := u.Monic()
	fModU := c.F.Mod(monicU)

	switch monicU.Degree() {
	case 0:
		return zeroPoly(f), true

	case 1:
		// Ring F[x]/(u) ≅ F via x ↦ -u0; solve v0² = F(-u0).
		u0 := monicU.Coeff(0)
		root, ok := f.Sqrt(fModU.Coeff(0))
		_ = u0
		if !ok {
			return nil, false
		}
		return NewPoly(f, root), true

	case 2:
		u1 := monicU.Coeff(1)
		u0 := monicU.Coeff(0)
		a := fModU.Coeff(1)
		b := fModU.Coeff(0)

		// v = v1 x + v0 with v² mod u = (-v1²u1 + 2v1v0) x + (v0² - v1²u0).
		// Matching coefficients against (a, b) and eliminating v0 gives a
		// quadratic in w = v1²:
		//   (u1² - 4u0) w² + (2a·u1 - 4b) w + a² = 0.
		c2 := f.Sub(f.Mul(u1, u1), f.Mul(big.NewInt(4), u0))
		c1 := f.Sub(f.Mul(big.NewInt(2), f.Mul(a, u1)), f.Mul(big.NewInt(4), b))
		c0 := f.Mul(a, a)

		tryW := func(w *big.Int) (*Poly, bool) {
			v1, ok := f.Sqrt(w)
			if !ok {
				return nil, false
			}
			if v1.Sign() == 0 {
				if a.Sign() != 0 {
					return nil, false
				}
				v0, ok := f.Sqrt(b)
				if !ok {
					return nil, false
				}
				return NewPoly(f, v0, big.NewInt(0)), true
			}
			// v0 = (a + u1*w) / (2*v1)
			num := f.Add(a, f.Mul(u1, w))
			v0 := f.Mul(num, f.Inv(f.Mul(big.NewInt(2), v1)))
			check := f.Sub(f.Mul(v0, v0), f.Mul(w, u0))
			if check.Cmp(b) != 0 {
				return nil, false
			}
			return NewPoly(f, v0, v1), true
		}

		if c2.Sign() == 0 {
			if c1.Sign() == 0 {
				if c0.Sign() != 0 {
					return nil, false
				}
				return tryW(big.NewInt(0))
			}
			w := f.Mul(f.Neg(c0), f.Inv(c1))
			return tryW(w)
		}

		disc := f.Sub(f.Mul(c1, c1), f.Mul(big.NewInt(4), f.Mul(c2, c0)))
		sq, ok := f.Sqrt(disc)
		if !ok {
			return nil, false
		}
		invTwoC2 := f.Inv(f.Mul(big.NewInt(2), c2))
		w1 := f.Mul(f.Add(f.Neg(c1), sq), invTwoC2)
		if v, ok := tryW(w1); ok {
			return v, true
		}
		w2 := f.Mul(f.Sub(f.Neg(c1), sq), invTwoC2)
		return tryW(w2)

	default:
		return nil, false
	}
}

// Add implements Cantor's composition and reduction (Koblitz form,
// spec §4.6.3). It is general enough to also serve as Double(d) =
// Add(d, d).
func (c *Curve) Add(d1, d2 *Divisor) *Divisor {
	f := c.Field

	if d1.IsIdentity() {
		return d2
	}
	if d2.IsIdentity() {
		return d1
	}

	// d = gcd(u1, u2) = e1*u1 + e2*u2, normalized monic.
	d, e1, e2 := XGCD(d1.U, d2.U)
	d = d.Monic()
	lead := d.Coeff(d.Degree())
	invLead := f.Inv(lead)
	_ = invLead // XGCD already returns a monic gcd; kept for clarity.

	// d' = gcd(d, v1+v2) = c1*d + c2*(v1+v2), normalized monic.
	vSum := d1.V.Add(d2.V)
	dPrime, c1, c2 := XGCD(d, vSum)
	dPrime = dPrime.Monic()

	s1 := c1.Mul(e1)
	s2 := c1.Mul(e2)
	s3 := c2

	u := d1.U.Mul(d2.U)
	if !dPrime.IsZero() {
		q1, _ := u.DivModMonic(dPrime)
		q2, _ := q1.DivModMonic(dPrime)
		u = q2.Monic()
	}

	numerator := s1.Mul(d1.U).Mul(d2.V).
		Add(s2.Mul(d2.U).Mul(d1.V)).
		Add(s3.Mul(d1.V.Mul(d2.V).Add(c.F)))

	var v *Poly
	if !dPrime.IsZero() {
		vQuot, _ := numerator.DivModMonic(dPrime)
		v = vQuot.Mod(u.Monic())
	} else {
		v = zeroPoly(f)
	}

	// Reduce until deg(u) <= 2 (genus 2).
	for u.Degree() > 2 {
		vSq := v.Mul(v)
		numer := c.F.Sub(vSq)
		uPrime, _ := numer.DivModMonic(u.Monic())
		uPrime = uPrime.Monic()
		vPrime := v.Neg().Mod(uPrime)
		u, v = uPrime, vPrime
	}

	return &Divisor{U: u, V: v}
}

// Double returns Add(d, d).
func (c *Curve) Double(d *Divisor) *Divisor {
	return c.Add(d, d)
}

// ScalarMul computes k*D via right-to-left binary double-and-add
// (spec §4.6.3 scalar_mul).
func (c *Curve) ScalarMul(d *Divisor, k *big.Int) *Divisor {
	result := c.Identity()
	base := d
	kk := new(big.Int).Set(k)
	zero := big.NewInt(0)
	for kk.Cmp(zero) > 0 {
		if kk.Bit(0) == 1 {
			result = c.Add(result, base)
		}
		base = c.Double(base)
		kk.Rsh(kk, 1)
	}
	return result
}

// ScalarMul128 extends ScalarMul to a scalar split across two 64-bit
// halves, k = (kHi << 64) | kLo, as used by the 128-bit private key
// (spec §4.6.3 scalar_mul128).
func (c *Curve) ScalarMul128(d *Divisor, kLo, kHi uint64) *Divisor {
	k := new(big.Int).Lsh(new(big.Int).SetUint64(kHi), 64)
	k.Or(k, new(big.Int).SetUint64(kLo))
	return c.ScalarMul(d, k)
}
