package pidgen3

import (
	"math/big"
	"testing"

	"github.com/umskt/umskt-go/pkg/curve"
)

// toyBink2002Params uses y² = x³ + 2x + 30 (mod 10007), whose group has
// prime order 10091, with base point (1, 283). The order-5 curve shared
// by the BINK1998 tests is too small here: R takes only four values, so
// for some channel IDs none of the four quadratics has a square root
// and Generate never finds a signature.
func toyBink2002Params(t *testing.T) *Bink2002Params {
	t.Helper()
	c, err := curve.New(
		big.NewInt(10007),
		big.NewInt(2),
		big.NewInt(30),
		curve.Point{X: big.NewInt(1), Y: big.NewInt(283)},
		big.NewInt(10091),
	)
	if err != nil {
		t.Fatalf("curve.New: %v", err)
	}
	priv := big.NewInt(3)
	pub := c.BaseMul(priv)
	p, err := NewBink2002Params(c, pub, priv)
	if err != nil {
		t.Fatalf("NewBink2002Params: %v", err)
	}
	return p
}

func TestBink2002RoundTrip(t *testing.T) {
	p := toyBink2002Params(t)
	info := Bink2002Info{IsUpgrade: false, ChannelID: 640, AuthInfo: 701}

	key, err := p.Generate(info, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(key) != 25 {
		t.Fatalf("key length = %d, want 25", len(key))
	}

	ok, err := p.Validate(key)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ok {
		t.Fatal("generated key failed to validate")
	}
}

func TestBink2002RejectsTamperedKey(t *testing.T) {
	p := toyBink2002Params(t)
	info := Bink2002Info{IsUpgrade: true, ChannelID: 12, AuthInfo: 3}

	key, err := p.Generate(info, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tampered := []byte(key)
	last := len(tampered) - 1
	if tampered[last] == 'Y' {
		tampered[last] = '9'
	} else {
		tampered[last] = 'Y'
	}

	ok, err := p.Validate(string(tampered))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Fatal("tampered key unexpectedly validated")
	}
}

func TestBink2002SignatureFitsWidth(t *testing.T) {
	p := toyBink2002Params(t)
	for i := 0; i < 20; i++ {
		key, err := p.Generate(Bink2002Info{ChannelID: uint16(i)}, nil)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		unpacked := unpackBink2002(decodeForTest(key))
		if unpacked.Signature >= 1<<bink2002SignatureWidth {
			t.Fatalf("signature %d does not fit in %d bits", unpacked.Signature, bink2002SignatureWidth)
		}
	}
}

func TestBink2002RejectsOversizedChannelID(t *testing.T) {
	p := toyBink2002Params(t)
	_, err := p.Generate(Bink2002Info{ChannelID: 1 << 10}, nil)
	if err == nil {
		t.Fatal("expected error for oversized channel id")
	}
}

func TestSelectScheme(t *testing.T) {
	small := big.NewInt(0).Lsh(big.NewInt(1), 300)
	big512 := big.NewInt(0).Lsh(big.NewInt(1), 500)
	if SelectScheme(small) != BINK1998 {
		t.Fatal("expected BINK1998 for a 300-bit field")
	}
	if SelectScheme(big512) != BINK2002 {
		t.Fatal("expected BINK2002 for a 500-bit field")
	}
}
