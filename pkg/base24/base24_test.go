package base24

import (
	"math/big"
	"testing"
)

func TestAlphabetLength(t *testing.T) {
	if len(Alphabet) != 24 {
		t.Fatalf("alphabet length = %d, want 24", len(Alphabet))
	}
	seen := make(map[byte]bool)
	for i := 0; i < len(Alphabet); i++ {
		if seen[Alphabet[i]] {
			t.Fatalf("duplicate character %q in alphabet", Alphabet[i])
		}
		seen[Alphabet[i]] = true
	}
}

// maxPayload is the largest value Encode can faithfully round-trip:
// 24^25 - 1.
func maxPayload() *big.Int {
	max := new(big.Int).Exp(big.NewInt(24), big.NewInt(25), nil)
	return max.Sub(max, big.NewInt(1))
}

func toBuf(z *big.Int) [BufferSize]byte {
	be := z.Bytes()
	var out [BufferSize]byte
	off := BufferSize - len(be)
	for i, b := range be {
		out[off+i] = b
	}
	// reverse to little-endian
	for i, j := 0, BufferSize-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func fromBuf(b [BufferSize]byte) *big.Int {
	be := make([]byte, BufferSize)
	for i, v := range b {
		be[BufferSize-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

func TestRoundTrip(t *testing.T) {
	max := maxPayload()
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(24),
		big.NewInt(575),
		new(big.Int).Sub(max, big.NewInt(1)),
		max,
	}
	for _, z := range cases {
		buf := toBuf(z)
		encoded := Encode(buf)
		if len(encoded) != KeyLength {
			t.Fatalf("encoded length = %d, want %d", len(encoded), KeyLength)
		}
		decoded := Decode(encoded)
		if decoded != buf {
			t.Fatalf("round trip failed for z=%v: got %v want %v", z, decoded, buf)
		}
		if fromBuf(decoded).Cmp(z) != 0 {
			t.Fatalf("round trip value mismatch for z=%v", z)
		}
	}
}

func TestDecodeSkipsDashesAndUnknownChars(t *testing.T) {
	buf := toBuf(big.NewInt(123456789))
	encoded := Encode(buf)

	dashed := encoded[:5] + "-" + encoded[5:10] + "-" + encoded[10:15] + "-" + encoded[15:20] + "-" + encoded[20:]
	if Decode(dashed) != buf {
		t.Fatal("dashed form should decode identically to bare form")
	}

	noisy := "!" + encoded[:5] + "_" + encoded[5:]
	if Decode(noisy) != buf {
		t.Fatal("unknown characters should be silently skipped")
	}
}

func TestDecodeStopsAfter25Digits(t *testing.T) {
	buf := toBuf(big.NewInt(42))
	encoded := Encode(buf)
	trailingJunk := encoded + Alphabet[:5]
	if Decode(trailingJunk) != Decode(encoded) {
		t.Fatal("decode should ignore characters after the 25th valid digit")
	}
}

func TestKnownKeyDecodesAndReencodes(t *testing.T) {
	// A syntactically valid BINK1998 key from the spec's fixture table.
	// Decode/Encode round trip must be stable regardless of whether the
	// underlying signature verifies.
	key := "7KWK7-9W7H4-T64D6-DB8V7-BW7MW"
	buf := Decode(key)
	reencoded := Encode(buf)
	flat := ""
	for _, r := range key {
		if r != '-' {
			flat += string(r)
		}
	}
	if reencoded != flat {
		t.Fatalf("re-encode mismatch: got %s want %s", reencoded, flat)
	}
}
