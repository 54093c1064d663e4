// Package bnutil collects the little-endian byte/big.Int conversions
// by the pidgen3 package's BINK1998 and BINK2002 schemes. The core is
// "littered with explicit little-endian conversions and fixed-width
// big-integer serializations" (spec §9); centralizing them here keeps
// every caller consistent about zero-padding to a fixed width.
package bnutil

import "math/big"

// FieldBytes returns the number of bytes needed to hold a value of
// bitLen bits, i.e. ceil(bitLen / 8). Spec §9 defines FIELD_BYTES as
// ceil(⌈log2 p⌉ / 8) for a modulus p; callers pass p.BitLen().
func FieldBytes(bitLen int) int {
	return (bitLen + 7) / 8
}

// LEBytes serializes x as width little-endian bytes, zero-padded on the
// high end. It panics if x does not fit in width bytes, since every
// call site in this module operates on values already bounded by a
// known field or bit-width.
func LEBytes(x *big.Int, width int) []byte {
	be := x.Bytes()
	if len(be) > width {
		panic("bnutil: value does not fit in requested width")
	}
	out := make([]byte, width)
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}

// FromLEBytes parses b as a little-endian unsigned integer.
func FromLEBytes(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

// Concat returns a, b1, b2, ... joined into one freshly allocated slice.
// append(a, b...) can silently extend a in place when a has spare
// capacity; every caller here reuses slices across multiple encodings,
// so Concat always allocates.
func Concat(a []byte, bs ...[]byte) []byte {
	n := len(a)
	for _, b := range bs {
		n += len(b)
	}
	out := make([]byte, 0, n)
	out = append(out, a...)
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}

// MaskBits returns x with only the low n bits retained.
func MaskBits(x uint64, n uint) uint64 {
	if n >= 64 {
		return x
	}
	return x & ((uint64(1) << n) - 1)
}
