// Package confid implements the Confirmation ID transform (spec §4.6):
// arithmetic on divisors of a genus-2 hyperelliptic curve's Jacobian
// over a 62-bit prime field, driving an Installation ID -> Confirmation
// ID mapping via a 128-bit scalar multiplication and a SHA-1 Feistel
// mixer.
package confid

import "math/big"

// Field implements F_M, the 62-bit prime field used throughout the
// Confirmation ID transform. Reduction follows a Barrett scheme: a
// precomputed magic constant mu = ceil(2^k / M) turns each reduction
// into a multiply and shift instead of a full division (spec §4.6.1).
type Field struct {
	M  *big.Int
	NR *big.Int // a fixed quadratic non-residue mod M, used by Sqrt

	mu *big.Int
	k  uint
}

// NewField builds a Field for modulus m with non-residue nr. Both must
// be supplied by the per-activation-curve parameter set; the package
// does not hardcode any particular M.
func NewField(m, nr *big.Int) *Field {
	k := uint(2*m.BitLen() + 16)
	mu := new(big.Int).Lsh(big.NewInt(1), k)
	mu.Add(mu, m)
	mu.Sub(mu, big.NewInt(1))
	mu.Div(mu, m)
	return &Field{M: new(big.Int).Set(m), NR: new(big.Int).Set(nr), mu: mu, k: k}
}

func (f *Field) reduce(z *big.Int) *big.Int {
	q := new(big.Int).Mul(z, f.mu)
	q.Rsh(q, f.k)
	r := new(big.Int).Mul(q, f.M)
	r.Sub(z, r)
	for r.Sign() < 0 {
		r.Add(r, f.M)
	}
	for r.Cmp(f.M) >= 0 {
		r.Sub(r, f.M)
	}
	return r
}

// Add returns (a+b) mod M.
func (f *Field) Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	if r.Cmp(f.M) >= 0 {
		r.Sub(r, f.M)
	}
	return r
}

// Sub returns (a-b) mod M.
func (f *Field) Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	r.Mod(r, f.M)
	return r
}

// Neg returns (-a) mod M.
func (f *Field) Neg(a *big.Int) *big.Int {
	return f.Sub(big.NewInt(0), a)
}

// Mul returns (a*b) mod M via Barrett reduction of the double-width
// product.
func (f *Field) Mul(a, b *big.Int) *big.Int {
	return f.reduce(new(big.Int).Mul(a, b))
}

// Inv returns the multiplicative inverse of a mod M. Panics if a is
// not invertible (a multiple of M) since every caller in this package
// guarantees a nonzero field element first.
func (f *Field) Inv(a *big.Int) *big.Int {
	inv := new(big.Int).ModInverse(a, f.M)
	if inv == nil {
		panic("confid: Inv: element has no inverse mod M")
	}
	return inv
}

// Sqrt returns a square root of a mod M via math/big's Tonelli-Shanks,
// and false if a is not a quadratic residue. The package's own NR
// constant is available to callers that need to produce the "twisted"
// non-residue branch explicitly (spec §4.6.5 step 4 generic case).
func (f *Field) Sqrt(a *big.Int) (*big.Int, bool) {
	if a.Sign() == 0 {
		return big.NewInt(0), true
	}
	r := new(big.Int).ModSqrt(a, f.M)
	if r == nil {
		return nil, false
	}
	return r, true
}

// Mod reduces an arbitrary (possibly negative, possibly oversized)
// integer into [0, M).
func (f *Field) Mod(a *big.Int) *big.Int {
	r := new(big.Int).Mod(a, f.M)
	return r
}
