package pidgen3

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // historical interoperability artifact, spec §1.
	"fmt"
	"math/big"

	"github.com/umskt/umskt-go/internal/bnutil"
	"github.com/umskt/umskt-go/pkg/base24"
	"github.com/umskt/umskt-go/pkg/curve"
	"github.com/umskt/umskt-go/pkg/umskterr"
)

const (
	bink1998SerialWidth    = 30
	bink1998HashWidth      = 28
	bink1998SignatureWidth = 55

	bink1998NonceBits = 384

	bink1998SerialMax = 1<<bink1998SerialWidth - 1
)

// Bink1998Info is the generator's input for a BINK1998 key (spec §3,
// §4.3): an upgrade flag and a 30-bit serial number.
type Bink1998Info struct {
	IsUpgrade bool
	Serial    uint32
}

// Bink1998Key is an unpacked BINK1998 payload.
type Bink1998Key struct {
	IsUpgrade bool
	Serial    uint32
	Hash      uint32
	Signature uint64
}

// Bink1998Params bundles the curve and keypair for one SKU's BINK1998
// scheme.
type Bink1998Params struct {
	Curve *curve.Curve
	K     curve.Point // public key
	k     *big.Int    // private key, nil for verify-only params
}

// NewBink1998Params validates the fidelity requirement of spec §4.1:
// both G (via curve.New, already checked) and K must be on-curve, and
// if a private key is supplied, K must equal k·G.
func NewBink1998Params(c *curve.Curve, pub curve.Point, priv *big.Int) (*Bink1998Params, error) {
	if !c.OnCurve(pub) {
		return nil, fmt.Errorf("bink1998: public key: %w", umskterr.ErrNotOnCurve)
	}
	if priv != nil {
		if priv.Sign() <= 0 || priv.Cmp(c.N) >= 0 {
			return nil, fmt.Errorf("bink1998: private key out of range [1, n)")
		}
		expected := c.BaseMul(priv)
		if expected.X.Cmp(pub.X) != 0 || expected.Y.Cmp(pub.Y) != 0 {
			return nil, fmt.Errorf("bink1998: public key does not equal k*G")
		}
	}
	return &Bink1998Params{Curve: c, K: pub, k: priv}, nil
}

func bink1998FieldBytes(c *curve.Curve) int {
	return bnutil.FieldBytes(c.P.BitLen())
}

// bink1998Hash computes Hash = (first 4 bytes of SHA-1(msg), read as a
// little-endian uint32) >> 4, masked to 28 bits (spec §4.3 step 3d).
func bink1998Hash(data uint32, px, py *big.Int, fieldBytes int) uint32 {
	dataLE := bnutil.LEBytes(big.NewInt(int64(data)), 4)
	msg := bnutil.Concat(dataLE, bnutil.LEBytes(px, fieldBytes), bnutil.LEBytes(py, fieldBytes))
	digest := sha1.Sum(msg)
	raw := uint32(digest[0]) | uint32(digest[1])<<8 | uint32(digest[2])<<16 | uint32(digest[3])<<24
	return uint32(bnutil.MaskBits(uint64(raw>>4), bink1998HashWidth))
}

// Generate produces a BINK1998 product key (spec §4.3).
func (p *Bink1998Params) Generate(info Bink1998Info, rng RandSource) (string, error) {
	if p.k == nil {
		return "", fmt.Errorf("bink1998: Generate: %w", umskterr.ErrMissingParameter)
	}
	if info.Serial > bink1998SerialMax {
		return "", fmt.Errorf("bink1998: serial exceeds 30 bits")
	}

	var upgradeBit uint32
	if info.IsUpgrade {
		upgradeBit = 1
	}
	data := (info.Serial << 1) | upgradeBit

	kNeg := new(big.Int).Sub(p.Curve.N, p.k)

	fieldBytes := bink1998FieldBytes(p.Curve)

	const maxAttempts = 1 << 20
	for attempt := 0; attempt < maxAttempts; attempt++ {
		c, err := curve.RandomBits(asReader(rng), bink1998NonceBits)
		if err != nil {
			return "", fmt.Errorf("bink1998: sampling nonce: %w", err)
		}
		r := p.Curve.BaseMul(c)
		if r.IsInfinity() {
			continue
		}

		hash := bink1998Hash(data, r.X, r.Y, fieldBytes)

		s := new(big.Int).Mul(kNeg, big.NewInt(int64(hash)))
		s.Add(s, c)
		s.Mod(s, p.Curve.N)

		if s.BitLen() > bink1998SignatureWidth {
			continue
		}

		key := Bink1998Key{
			IsUpgrade: info.IsUpgrade,
			Serial:    info.Serial,
			Hash:      hash,
			Signature: s.Uint64(),
		}
		return packBink1998(key), nil
	}
	return "", fmt.Errorf("bink1998: Generate: %w", umskterr.ErrUnlucky)
}

// Validate reports whether key verifies against p's curve and public
// key (spec §4.3 Verify).
func (p *Bink1998Params) Validate(key string) (bool, error) {
	unpacked := unpackBink1998(base24.Decode(key))

	var upgradeBit uint32
	if unpacked.IsUpgrade {
		upgradeBit = 1
	}
	data := (unpacked.Serial << 1) | upgradeBit

	sig := new(big.Int).SetUint64(unpacked.Signature)
	hash := new(big.Int).SetUint64(uint64(unpacked.Hash))

	term1 := p.Curve.ScalarMul(p.Curve.G, sig)
	term2 := p.Curve.ScalarMul(p.K, hash)
	point := p.Curve.Add(term1, term2)
	if point.IsInfinity() {
		return false, nil
	}

	fieldBytes := bink1998FieldBytes(p.Curve)
	compHash := bink1998Hash(data, point.X, point.Y, fieldBytes)

	return compHash == unpacked.Hash, nil
}

func packBink1998(k Bink1998Key) string {
	var upgrade uint64
	if k.IsUpgrade {
		upgrade = 1
	}
	fields := []field{
		{big.NewInt(int64(upgrade)), 0, 1},
		{big.NewInt(int64(k.Serial)), 1, bink1998SerialWidth},
		{big.NewInt(int64(k.Hash)), 1 + bink1998SerialWidth, bink1998HashWidth},
		{new(big.Int).SetUint64(k.Signature), 1 + bink1998SerialWidth + bink1998HashWidth, bink1998SignatureWidth},
	}
	return base24.Encode(packPayload(fields))
}

func unpackBink1998(buf [base24.BufferSize]byte) Bink1998Key {
	upgrade := unpackField(buf, 0, 1)
	serial := unpackField(buf, 1, bink1998SerialWidth)
	hash := unpackField(buf, 1+bink1998SerialWidth, bink1998HashWidth)
	sig := unpackField(buf, 1+bink1998SerialWidth+bink1998HashWidth, bink1998SignatureWidth)

	return Bink1998Key{
		IsUpgrade: upgrade.Sign() != 0,
		Serial:    uint32(serial.Uint64()),
		Hash:      uint32(hash.Uint64()),
		Signature: sig.Uint64(),
	}
}

// asReader adapts a possibly-nil RandSource to crypto/rand.Reader.
func asReader(rng RandSource) RandSource {
	if rng == nil {
		return rand.Reader
	}
	return rng
}
