package pidgen3

import (
	"crypto/sha1" //nolint:gosec // historical interoperability artifact, spec §1.
	"fmt"
	"math/big"

	"github.com/umskt/umskt-go/internal/bnutil"
	"github.com/umskt/umskt-go/pkg/base24"
	"github.com/umskt/umskt-go/pkg/curve"
	"github.com/umskt/umskt-go/pkg/umskterr"
)

const (
	bink2002ChannelWidth   = 10
	bink2002HashWidth      = 31
	bink2002SignatureWidth = 62
	bink2002AuthInfoWidth  = 10

	bink2002ChannelOffset   = 1
	bink2002HashOffset      = bink2002ChannelOffset + bink2002ChannelWidth
	bink2002SignatureOffset = bink2002HashOffset + bink2002HashWidth
	bink2002AuthInfoOffset  = bink2002SignatureOffset + bink2002SignatureWidth

	bink2002NonceBits = 512

	bink2002H1Tag = byte(0x79)
	bink2002H2Tag = byte(0x5D)
)

// Bink2002Info is the generator's input for a BINK2002 key (spec §3,
// §4.4).
type Bink2002Info struct {
	IsUpgrade bool
	ChannelID uint16
	AuthInfo  uint16
}

// Bink2002Key is an unpacked BINK2002 payload.
type Bink2002Key struct {
	IsUpgrade bool
	ChannelID uint16
	Hash      uint32
	Signature uint64
	AuthInfo  uint16
}

// Bink2002Params bundles the curve and keypair for one SKU's BINK2002
// scheme.
type Bink2002Params struct {
	Curve *curve.Curve
	K     curve.Point
	k     *big.Int
}

// NewBink2002Params validates the spec §4.1 fidelity requirement.
func NewBink2002Params(c *curve.Curve, pub curve.Point, priv *big.Int) (*Bink2002Params, error) {
	if !c.OnCurve(pub) {
		return nil, fmt.Errorf("bink2002: public key: %w", umskterr.ErrNotOnCurve)
	}
	if priv != nil {
		if priv.Sign() <= 0 || priv.Cmp(c.N) >= 0 {
			return nil, fmt.Errorf("bink2002: private key out of range [1, n)")
		}
		expected := c.BaseMul(priv)
		if expected.X.Cmp(pub.X) != 0 || expected.Y.Cmp(pub.Y) != 0 {
			return nil, fmt.Errorf("bink2002: public key does not equal k*G")
		}
	}
	return &Bink2002Params{Curve: c, K: pub, k: priv}, nil
}

func bink2002FieldBytes(c *curve.Curve) int {
	return bnutil.FieldBytes(c.P.BitLen())
}

func bink2002Data(channelID uint16, isUpgrade bool) uint16 {
	var upgrade uint16
	if isUpgrade {
		upgrade = 1
	}
	return (channelID << 1) | upgrade
}

// bink2002H1 computes Hash = first 4 bytes of SHA-1(0x79||data_le2||Px_le||Py_le),
// little-endian, masked to 31 bits (spec §4.4 step 2c / Verify step 4).
func bink2002H1(data uint16, px, py *big.Int, fieldBytes int) uint32 {
	msg := bnutil.Concat(
		[]byte{bink2002H1Tag},
		bnutil.LEBytes(big.NewInt(int64(data)), 2),
		bnutil.LEBytes(px, fieldBytes),
		bnutil.LEBytes(py, fieldBytes),
	)
	digest := sha1.Sum(msg)
	raw := uint32(digest[0]) | uint32(digest[1])<<8 | uint32(digest[2])<<16 | uint32(digest[3])<<24
	return uint32(bnutil.MaskBits(uint64(raw), bink2002HashWidth))
}

// bink2002E computes the 62-bit challenge e from the second hash (spec
// §4.4 step 2d / Verify step 2).
func bink2002E(data uint16, hash uint32, authInfo uint16) *big.Int {
	msg := bnutil.Concat(
		[]byte{bink2002H2Tag},
		bnutil.LEBytes(big.NewInt(int64(data)), 2),
		bnutil.LEBytes(big.NewInt(int64(hash)), 4),
		bnutil.LEBytes(big.NewInt(int64(authInfo)), 2),
		[]byte{0x00, 0x00},
	)
	digest := sha1.Sum(msg)

	low32 := uint32(digest[0]) | uint32(digest[1])<<8 | uint32(digest[2])<<16 | uint32(digest[3])<<24
	high32 := uint32(digest[4]) | uint32(digest[5])<<8 | uint32(digest[6])<<16 | uint32(digest[7])<<24
	high30 := high32 >> 2

	e := new(big.Int).Lsh(big.NewInt(int64(high30)), 32)
	e.Or(e, big.NewInt(int64(low32)))
	return e
}

// Generate produces a BINK2002 product key (spec §4.4).
func (p *Bink2002Params) Generate(info Bink2002Info, rng RandSource) (string, error) {
	if p.k == nil {
		return "", fmt.Errorf("bink2002: Generate: %w", umskterr.ErrMissingParameter)
	}
	if info.ChannelID >= 1<<bink2002ChannelWidth {
		return "", fmt.Errorf("bink2002: channel id exceeds 10 bits")
	}
	if info.AuthInfo >= 1<<bink2002AuthInfoWidth {
		return "", fmt.Errorf("bink2002: auth info exceeds 10 bits")
	}

	data := bink2002Data(info.ChannelID, info.IsUpgrade)
	fieldBytes := bink2002FieldBytes(p.Curve)

	const maxAttempts = 1 << 20
	for attempt := 0; attempt < maxAttempts; attempt++ {
		c, err := curve.RandomBits(asReader(rng), bink2002NonceBits)
		if err != nil {
			return "", fmt.Errorf("bink2002: sampling nonce: %w", err)
		}
		r := p.Curve.BaseMul(c)
		if r.IsInfinity() {
			continue
		}

		hash := bink2002H1(data, r.X, r.Y, fieldBytes)
		e := bink2002E(data, hash, info.AuthInfo)

		ek := new(big.Int).Mul(e, p.k)
		ek.Mod(ek, p.Curve.N)

		d := new(big.Int).Mul(ek, ek)
		d.Add(d, new(big.Int).Lsh(c, 2))
		d.Mod(d, p.Curve.N)

		sqrtD := new(big.Int).ModSqrt(d, p.Curve.N)
		if sqrtD == nil {
			continue
		}

		s := new(big.Int).Sub(sqrtD, ek)
		s.Mod(s, p.Curve.N)
		if s.Bit(0) == 1 {
			s.Add(s, p.Curve.N)
		}
		s.Rsh(s, 1)

		if s.BitLen() > bink2002SignatureWidth {
			continue
		}

		key := Bink2002Key{
			IsUpgrade: info.IsUpgrade,
			ChannelID: info.ChannelID,
			Hash:      hash,
			Signature: s.Uint64(),
			AuthInfo:  info.AuthInfo,
		}
		return packBink2002(key), nil
	}
	return "", fmt.Errorf("bink2002: Generate: %w", umskterr.ErrUnlucky)
}

// Validate reports whether key verifies against p's curve and public
// key (spec §4.4 Verify).
func (p *Bink2002Params) Validate(key string) (bool, error) {
	unpacked := unpackBink2002(base24.Decode(key))
	data := bink2002Data(unpacked.ChannelID, unpacked.IsUpgrade)

	e := bink2002E(data, unpacked.Hash, unpacked.AuthInfo)
	s := new(big.Int).SetUint64(unpacked.Signature)

	sG := p.Curve.ScalarMul(p.Curve.G, s)
	eK := p.Curve.ScalarMul(p.K, e)
	inner := p.Curve.Add(sG, eK)
	point := p.Curve.ScalarMul(inner, s)
	if point.IsInfinity() {
		return false, nil
	}

	fieldBytes := bink2002FieldBytes(p.Curve)
	compHash := bink2002H1(data, point.X, point.Y, fieldBytes)

	return compHash == unpacked.Hash, nil
}

func packBink2002(k Bink2002Key) string {
	var upgrade uint64
	if k.IsUpgrade {
		upgrade = 1
	}
	fields := []field{
		{big.NewInt(int64(upgrade)), 0, 1},
		{big.NewInt(int64(k.ChannelID)), bink2002ChannelOffset, bink2002ChannelWidth},
		{big.NewInt(int64(k.Hash)), bink2002HashOffset, bink2002HashWidth},
		{new(big.Int).SetUint64(k.Signature), bink2002SignatureOffset, bink2002SignatureWidth},
		{big.NewInt(int64(k.AuthInfo)), bink2002AuthInfoOffset, bink2002AuthInfoWidth},
	}
	return base24.Encode(packPayload(fields))
}

func unpackBink2002(buf [base24.BufferSize]byte) Bink2002Key {
	upgrade := unpackField(buf, 0, 1)
	channel := unpackField(buf, bink2002ChannelOffset, bink2002ChannelWidth)
	hash := unpackField(buf, bink2002HashOffset, bink2002HashWidth)
	sig := unpackField(buf, bink2002SignatureOffset, bink2002SignatureWidth)
	authInfo := unpackField(buf, bink2002AuthInfoOffset, bink2002AuthInfoWidth)

	return Bink2002Key{
		IsUpgrade: upgrade.Sign() != 0,
		ChannelID: uint16(channel.Uint64()),
		Hash:      uint32(hash.Uint64()),
		Signature: sig.Uint64(),
		AuthInfo:  uint16(authInfo.Uint64()),
	}
}
