// Package base24 implements the 25-character big-integer codec used to
// serialize PIDGEN3 product keys (spec §4.2). A 16-byte buffer carries
// at most ⌊log2(24^25)⌋ = 114 bits of payload; the remaining 14 bits of
// the codec's range are never produced by a correct encoder but must
// still round-trip through Decode.
package base24

import "math/big"

// Alphabet is the fixed 24-character set used by the codec. No
// confusable characters (0/O, 1/I/L, etc.) are present.
const Alphabet = "BCDFGHJKMPQRTVWXY2346789"

// KeyLength is the number of characters in an encoded key.
const KeyLength = 25

// BufferSize is the number of bytes Encode accepts and Decode produces.
const BufferSize = 16

var charIndex = func() map[byte]int {
	m := make(map[byte]int, len(Alphabet))
	for i := 0; i < len(Alphabet); i++ {
		m[Alphabet[i]] = i
	}
	return m
}()

// Encode interprets buf as a little-endian unsigned integer and renders
// it as a 25-character base-24 string, high-order digit first. buf must
// be BufferSize bytes.
func Encode(buf [BufferSize]byte) string {
	be := make([]byte, BufferSize)
	for i, b := range buf {
		be[BufferSize-1-i] = b
	}
	z := new(big.Int).SetBytes(be)

	digits := make([]byte, KeyLength)
	base := big.NewInt(24)
	rem := new(big.Int)
	for i := KeyLength - 1; i >= 0; i-- {
		z.DivMod(z, base, rem)
		digits[i] = Alphabet[rem.Int64()]
	}
	return string(digits)
}

// Decode strips dashes from s, then reads characters left to right,
// silently skipping any not in Alphabet (matching historical behavior,
// spec §4.2 and §9), until 25 valid digits have been consumed. The
// result is emitted as 16 little-endian bytes, zero-padded.
func Decode(s string) [BufferSize]byte {
	y := new(big.Int)
	base := big.NewInt(24)

	read := 0
	for i := 0; i < len(s) && read < KeyLength; i++ {
		c := s[i]
		if c == '-' {
			continue
		}
		idx, ok := charIndex[c]
		if !ok {
			continue
		}
		y.Mul(y, base)
		y.Add(y, big.NewInt(int64(idx)))
		read++
	}

	be := y.Bytes()
	var out [BufferSize]byte
	// be is at most 15 bytes for any y < 24^25 < 2^114; copy right-aligned.
	if len(be) > BufferSize {
		be = be[len(be)-BufferSize:]
	}
	off := BufferSize - len(be)
	for i, b := range be {
		out[BufferSize-1-(off+i)] = b
	}
	return out
}
