// Package pidgen3 implements the BINK1998 and BINK2002 product-key
// schemes (spec §4.3, §4.4): each packs a small bitfield record into a
// 114-bit payload, zero-extends it to 128 bits, and renders it through
// base24. The two schemes share this package because "PIDGEN3 variants
// share an interface { generate, validate, pack, unpack }" (spec §9);
// which concrete scheme applies to a SKU is selected by curve field
// size (p < 2^385 ⇒ BINK1998, else BINK2002), not encoded in the key
// itself.
package pidgen3

import (
	"math/big"

	"github.com/umskt/umskt-go/internal/bnutil"
	"github.com/umskt/umskt-go/pkg/base24"
)

// Scheme names the two PIDGEN3 variants.
type Scheme int

const (
	BINK1998 Scheme = iota
	BINK2002
)

// Bink1998Threshold is the field bit-size boundary from spec §9: curves
// with p < 2^385 use BINK1998; at or above, BINK2002.
const Bink1998Threshold = 385

// SelectScheme picks the scheme for a curve given its field modulus.
func SelectScheme(p *big.Int) Scheme {
	if p.BitLen() <= Bink1998Threshold {
		return BINK1998
	}
	return BINK2002
}

// Generator is a generate/validate interface for a scheme whose key
// inputs are bound in advance. Bink1998Params and Bink2002Params do not
// implement it: their Generate methods take a scheme-specific info
// record; callers pick between them with SelectScheme.
type Generator interface {
	Generate(rng RandSource) (string, error)
	Validate(key string) (bool, error)
}

// RandSource is the injected randomness dependency (spec §5): any
// io.Reader-shaped source of uniform random bytes. A nil RandSource
// means "use crypto/rand".
type RandSource = interface {
	Read(p []byte) (n int, err error)
}

// field describes one bitfield of the 114-bit payload: low-order bit
// offset and width, little-endian bit-indexed as spec §4.3/§4.4 tables.
type field struct {
	value  *big.Int
	offset uint
	width  uint
}

// packPayload assembles fields into a 128-bit little-endian buffer
// (the low 114 bits carry the payload, spec §3 "packed key").
func packPayload(fields []field) [base24.BufferSize]byte {
	acc := new(big.Int)
	for _, f := range fields {
		shifted := new(big.Int).Lsh(f.value, f.offset)
		acc.Or(acc, shifted)
	}
	var buf [base24.BufferSize]byte
	// bnutil.LEBytes already yields the little-endian byte order the
	// base24 codec expects.
	copy(buf[:], bnutil.LEBytes(acc, base24.BufferSize))
	return buf
}

// unpackField extracts a width-bit field at the given bit offset from a
// base24-decoded 128-bit little-endian buffer.
func unpackField(buf [base24.BufferSize]byte, offset, width uint) *big.Int {
	be := make([]byte, base24.BufferSize)
	for i, b := range buf {
		be[base24.BufferSize-1-i] = b
	}
	full := new(big.Int).SetBytes(be)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), width), big.NewInt(1))
	out := new(big.Int).Rsh(full, offset)
	out.And(out, mask)
	return out
}

// fixedWidthLE renders x as a curve.Point coordinate LE-serialized at
// the field's byte width, per spec §9's FIELD_BYTES rule: "every byte
// buffer that enters SHA-1 must be padded to the field's byte width,
// not the actual byte length of the integer".
func fixedWidthLE(x *big.Int, byteWidth int) []byte {
	return bnutil.LEBytes(x, byteWidth)
}
