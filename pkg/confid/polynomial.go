package confid

import "math/big"

// Poly is a polynomial over F_M with coefficients ordered low-degree
// first: c[0] + c[1]*x + c[2]*x^2 + ... Degree-≤2 divisor components
// are the common case, but intermediate products during Cantor
// composition run up to degree ~5, so Poly itself carries no length
// cap (spec §4.6.2).
type Poly struct {
	f *Field
	c []*big.Int
}

// NewPoly builds a polynomial from its coefficients, low-degree first,
// trimming trailing zero coefficients.
func NewPoly(f *Field, coeffs ...*big.Int) *Poly {
	c := make([]*big.Int, len(coeffs))
	copy(c, coeffs)
	p := &Poly{f: f, c: c}
	p.trim()
	return p
}

func zeroPoly(f *Field) *Poly { return &Poly{f: f} }
func onePoly(f *Field) *Poly  { return NewPoly(f, big.NewInt(1)) }

func (p *Poly) trim() {
	for len(p.c) > 0 && p.c[len(p.c)-1].Sign() == 0 {
		p.c = p.c[:len(p.c)-1]
	}
}

// Degree returns the polynomial's degree, or -1 for the zero poly.
func (p *Poly) Degree() int { return len(p.c) - 1 }

// Coeff returns the coefficient of x^i, or 0 if i is out of range.
func (p *Poly) Coeff(i int) *big.Int {
	if i < 0 || i >= len(p.c) {
		return big.NewInt(0)
	}
	return p.c[i]
}

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool { return p.Degree() < 0 }

func (p *Poly) sized(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = p.Coeff(i)
	}
	return out
}

// Add returns p+q.
func (p *Poly) Add(q *Poly) *Poly {
	n := len(p.c)
	if len(q.c) > n {
		n = len(q.c)
	}
	a, b := p.sized(n), q.sized(n)
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		out[i] = p.f.Add(a[i], b[i])
	}
	return NewPoly(p.f, out...)
}

// Sub returns p-q.
func (p *Poly) Sub(q *Poly) *Poly {
	n := len(p.c)
	if len(q.c) > n {
		n = len(q.c)
	}
	a, b := p.sized(n), q.sized(n)
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		out[i] = p.f.Sub(a[i], b[i])
	}
	return NewPoly(p.f, out...)
}

// Neg returns -p.
func (p *Poly) Neg() *Poly {
	out := make([]*big.Int, len(p.c))
	for i, c := range p.c {
		out[i] = p.f.Neg(c)
	}
	return NewPoly(p.f, out...)
}

// Scale returns p scaled by the field element k.
func (p *Poly) Scale(k *big.Int) *Poly {
	out := make([]*big.Int, len(p.c))
	for i, c := range p.c {
		out[i] = p.f.Mul(c, k)
	}
	return NewPoly(p.f, out...)
}

// Mul multiplies two polynomials by explicit term-by-term accumulation
// followed by a trim of the result (spec §4.6.2).
func (p *Poly) Mul(q *Poly) *Poly {
	if p.IsZero() || q.IsZero() {
		return zeroPoly(p.f)
	}
	out := make([]*big.Int, len(p.c)+len(q.c)-1)
	for i := range out {
		out[i] = big.NewInt(0)
	}
	for i, a := range p.c {
		if a.Sign() == 0 {
			continue
		}
		for j, b := range q.c {
			out[i+j] = p.f.Add(out[i+j], p.f.Mul(a, b))
		}
	}
	return NewPoly(p.f, out...)
}

// DivModMonic divides p by the monic polynomial d, returning
// (quotient, remainder). Panics if d's leading coefficient is not 1
// (spec §4.6.2 div_monic requires a monic divisor).
func (p *Poly) DivModMonic(d *Poly) (*Poly, *Poly) {
	dd := d.Degree()
	if dd < 0 || d.Coeff(dd).Cmp(big.NewInt(1)) != 0 {
		panic("confid: DivModMonic: divisor is not monic")
	}
	rem := make([]*big.Int, len(p.c))
	for i, c := range p.c {
		rem[i] = new(big.Int).Set(c)
	}
	quotLen := len(rem) - dd
	if quotLen < 1 {
		quotLen = 1
	}
	quot := make([]*big.Int, quotLen)
	for i := range quot {
		quot[i] = big.NewInt(0)
	}
	for deg := len(rem) - 1; deg >= dd; deg-- {
		coeff := rem[deg]
		if coeff.Sign() != 0 {
			qi := deg - dd
			quot[qi] = coeff
			for j := 0; j <= dd; j++ {
				rem[deg-dd+j] = p.f.Sub(rem[deg-dd+j], p.f.Mul(coeff, d.Coeff(j)))
			}
		}
	}
	return NewPoly(p.f, quot...), NewPoly(p.f, rem...)
}

// Mod reduces p modulo the monic polynomial d.
func (p *Poly) Mod(d *Poly) *Poly {
	_, r := p.DivModMonic(d)
	return r
}

// Monic returns p scaled so its leading coefficient is 1. Returns p
// unchanged if p is the zero polynomial.
func (p *Poly) Monic() *Poly {
	if p.IsZero() {
		return p
	}
	lead := p.Coeff(p.Degree())
	if lead.Cmp(big.NewInt(1)) == 0 {
		return p
	}
	return p.Scale(p.f.Inv(lead))
}

// XGCD computes (gcd, m1, m2) such that m1*a + m2*b = gcd, via the
// classical polynomial extended Euclidean algorithm (spec §4.6.2). The
// returned gcd is monic (or zero, if both a and b are zero).
func XGCD(a, b *Poly) (gcd, m1, m2 *Poly) {
	f := a.f
	r0, r1 := a, b
	s0, s1 := onePoly(f), zeroPoly(f)
	t0, t1 := zeroPoly(f), onePoly(f)

	for !r1.IsZero() {
		scale := r1.Coeff(r1.Degree())
		invScale := f.Inv(scale)
		monicR1 := r1.Scale(invScale)

		q, r := r0.DivModMonic(monicR1)
		q = q.Scale(invScale)

		r0, r1 = r1, r
		s0, s1 = s1, s0.Sub(q.Mul(s1))
		t0, t1 = t1, t0.Sub(q.Mul(t1))
	}

	if r0.IsZero() {
		return r0, s0, t0
	}
	lead := r0.Coeff(r0.Degree())
	invLead := f.Inv(lead)
	return r0.Scale(invLead), s0.Scale(invLead), t0.Scale(invLead)
}
