package confid

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/umskt/umskt-go/pkg/umskterr"
)

// Params bundles one activation curve's full parameter set: the
// hyperelliptic curve itself, the 128-bit private scalar, the 4-byte
// Installation-ID un-mix key, and the branding flags that select the
// Feistel message framing (spec §4.6, §6 "activation" parameter table).
type Params struct {
	Curve *Curve

	PrivLo, PrivHi uint64
	IIDKey         [4]byte

	IsOffice    bool
	IsXPBrand   bool
	FlagVersion byte
}

// InstallationID is the parsed, un-mixed payload of a 41- or 45-digit
// Installation ID (spec §3 "Installation ID").
type InstallationID struct {
	HardwareID   uint64
	ProductIDLow uint64
	ProductHigh  byte
	KeySHA1      uint16
	Version      uint32
	RawLen       int // 17 for the 41-digit form, 19 for the 45-digit form
}

// calculateCheckDigit reproduces the Office-branded product ID check
// digit: 10*pid - (digitsum(pid) mod 7) + 7.
func calculateCheckDigit(pid uint32) uint32 {
	var sum uint32
	for n := pid; n != 0; n /= 10 {
		sum += n % 10
	}
	return (10*pid - (sum % 7)) + 7
}

// decodeIIDNewVersion extracts the Office-branded hardware ID and
// version from an unmixed installation-id buffer, which packs these
// fields differently than the XP-branded layout (spec §4.6.5, step 4).
func decodeIIDNewVersion(iid []byte) (hardwareID uint64, version uint32) {
	var buf [5]uint32
	for i := 0; i < 5; i++ {
		buf[i] = uint32(iid[4*i]) | uint32(iid[4*i+1])<<8 | uint32(iid[4*i+2])<<16 | uint32(iid[4*i+3])<<24
	}
	v1 := (buf[3] & 0xFFFFFFF8) | 2
	v2 := ((buf[3] & 7) << 29) | (buf[2] >> 3)
	hardwareID = uint64(v1)<<32 | uint64(v2)
	version = buf[0] & 7
	return
}

// ParseInstallationID validates and decodes the decimal Installation
// ID string (spec §4.6.5 step 1-2): dashes and spaces are ignored,
// digits are accumulated five-at-a-time with a weighted mod-7 check
// digit following each group of five, and the accepted total payload
// lengths are 41 and 45 digits.
func ParseInstallationID(raw string) (payload *big.Int, totalCount int, err error) {
	payload = big.NewInt(0)
	count := 0
	check := 0

	for _, r := range raw {
		if r == ' ' || r == '-' {
			continue
		}
		if r < '0' || r > '9' {
			return nil, 0, fmt.Errorf("confid: ParseInstallationID: %w", umskterr.ErrInvalidCharacter)
		}
		d := int(r - '0')

		if count == 5 {
			if d != check%7 {
				return nil, 0, fmt.Errorf("confid: ParseInstallationID: %w", umskterr.ErrInvalidCheckDigit)
			}
			check = 0
			count = 0
			continue
		}

		if count%2 == 1 {
			check += d * 2
		} else {
			check += d
		}
		count++
		totalCount++
		if totalCount > 45 {
			return nil, 0, fmt.Errorf("confid: ParseInstallationID: %w", umskterr.ErrTooLarge)
		}

		payload.Mul(payload, big.NewInt(10))
		payload.Add(payload, big.NewInt(int64(d)))
	}

	if totalCount != 41 && totalCount < 45 {
		return nil, 0, fmt.Errorf("confid: ParseInstallationID: %w", umskterr.ErrTooShort)
	}
	return payload, totalCount, nil
}

// leBytes renders x as n little-endian bytes, zero-padded.
func leBytes(x *big.Int, n int) []byte {
	buf := make([]byte, n)
	b := x.Bytes() // big-endian, no leading zeros
	for i := 0; i < len(b) && i < n; i++ {
		buf[i] = b[len(b)-1-i]
	}
	return buf
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// unmixInstallationID decodes raw into an InstallationID record,
// dispatching on branding flag (spec §4.6.5 steps 3-4).
func (p *Params) unmixInstallationID(payload *big.Int, totalCount int) (*InstallationID, error) {
	rawLen := 19
	if totalCount == 41 {
		rawLen = 17
	}

	buf := leBytes(payload, 19)
	Unmix(buf[:rawLen], p.IIDKey[:], p.IsOffice)

	if buf[18] >= 0x10 {
		return nil, fmt.Errorf("confid: %w", umskterr.ErrUnknownVersion)
	}

	id := &InstallationID{RawLen: rawLen}

	if p.IsXPBrand {
		id.HardwareID = leUint64(buf[0:8])
		id.ProductIDLow = leUint64(buf[8:16])
		id.ProductHigh = buf[16]
		id.KeySHA1 = uint16(buf[17]) | uint16(buf[18])<<8

		version := (id.ProductIDLow >> 51) & 15
		id.Version = uint32(version)

		expected := uint32(9)
		if totalCount == 45 {
			expected = 10
		}
		if p.FlagVersion == 0 {
			if id.Version != expected {
				return nil, fmt.Errorf("confid: %w", umskterr.ErrUnknownVersion)
			}
		} else if uint32(p.FlagVersion) != id.Version {
			return nil, fmt.Errorf("confid: %w", umskterr.ErrUnknownVersion)
		}
	} else if p.IsOffice {
		hw, version := decodeIIDNewVersion(buf)
		if uint32(p.FlagVersion) != version {
			return nil, fmt.Errorf("confid: %w", umskterr.ErrUnknownVersion)
		}
		id.HardwareID = hw
		id.Version = version
	}

	return id, nil
}

// productIDFields unpacks the four product-id components used to seed
// the divisor search's key material, either from the XP-branded
// Installation ID itself or from an Office-branded productID string
// supplied alongside it (spec §4.6.5 step 2, original source's
// productID[0..3] split).
func (p *Params) productIDFields(id *InstallationID, productID string) (fields [4]uint64, err error) {
	if p.IsXPBrand {
		fields[0] = id.ProductIDLow & ((1 << 17) - 1)
		fields[1] = (id.ProductIDLow >> 17) & ((1 << 10) - 1)
		fields[2] = (id.ProductIDLow >> 27) & ((1 << 24) - 1)
		fields[3] = (id.ProductIDLow >> 55) | (uint64(id.ProductHigh) << 9)
		return fields, nil
	}

	// Office productID strings carry a fixed-offset positional layout
	// rather than a uniform dash count; offsets below mirror the
	// original parser's substr() calls exactly.
	sub := func(start, length int) (uint64, error) {
		if start+length > len(productID) {
			return 0, fmt.Errorf("confid: productIDFields: %w", umskterr.ErrMissingParameter)
		}
		var v uint64
		if _, err := fmt.Sscanf(productID[start:start+length], "%d", &v); err != nil {
			return 0, fmt.Errorf("confid: productIDFields: %w", umskterr.ErrMissingParameter)
		}
		return v, nil
	}

	p0, err := sub(0, 5)
	if err != nil {
		return fields, err
	}
	fields[0] = p0

	channel := ""
	if len(productID) >= 9 {
		channel = strings.ToUpper(productID[6:9])
	}

	if channel == "OEM" {
		p1, err := sub(12, 3)
		if err != nil {
			return fields, err
		}
		day, err := sub(15, 1)
		if err != nil {
			return fields, err
		}
		serial, err := sub(18, 5)
		if err != nil {
			return fields, err
		}
		year, err := sub(10, 2)
		if err != nil {
			return fields, err
		}
		oemid := day*100000 + serial
		fields[1] = p1
		fields[2] = uint64(calculateCheckDigit(uint32(oemid)))
		fields[3] = year * 1000 // the original reads an uninitialized fourth slot here; treated as 0.
	} else {
		p1, err := sub(6, 3)
		if err != nil {
			return fields, err
		}
		p2, err := sub(10, 7)
		if err != nil {
			return fields, err
		}
		p3, err := sub(18, 5)
		if err != nil {
			return fields, err
		}
		fields[1] = p1
		fields[2] = p2
		fields[3] = p3
	}
	return fields, nil
}

// findDivisor runs the bounded rejection-sampling divisor search (spec
// §4.6.5 "Find a suitable divisor"), trying up to 129 candidate seeds
// before surrendering.
func (c *Curve) findDivisor(keyMaterial []byte, attemptByte int, office bool) (*Divisor, error) {
	// u is deliberately NOT reset between attempts: only the attempt
	// byte is overwritten each iteration, so later attempts mix over
	// whatever the previous attempt's Mix() left behind. This matches
	// the original search exactly and is load-bearing for reproducing
	// its output.
	u := make([]byte, 16)
	for attempt := 0; attempt <= 0x80; attempt++ {
		u[attemptByte] = byte(attempt)

		Mix(u[:14], keyMaterial, office)

		lo := new(big.Int).SetBytes(reverseBytes(u[0:8]))
		hi := new(big.Int).SetBytes(reverseBytes(u[8:16]))
		full := new(big.Int).Lsh(hi, 64)
		full.Or(full, lo)

		x2, x1 := new(big.Int), new(big.Int)
		x2.QuoRem(full, c.Field.M, x1)
		x2.Add(x2, big.NewInt(1))

		u0 := c.Field.Sub(c.Field.Mul(x1, x1), c.Field.Mul(c.Field.NR, c.Field.Mul(x2, x2)))
		u1 := c.Field.Add(x1, x1)

		uPoly := NewPoly(c.Field, u0, u1, big.NewInt(1))
		if v, ok := c.FindV(uPoly); ok {
			return &Divisor{U: uPoly, V: v}, nil
		}
	}
	return nil, fmt.Errorf("confid: findDivisor: %w", umskterr.ErrUnlucky)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// divisorToScalar maps a reduced divisor back to the 128-bit integer e
// emitted as the Confirmation ID (spec §4.6.5 "Produce confirmation
// bytes"), handling the zero-divisor and degree-1 degenerate cases
// alongside the generic degree-2 one.
func (c *Curve) divisorToScalar(d *Divisor) *big.Int {
	f := c.Field
	m := f.M
	mPlus1 := new(big.Int).Add(m, big.NewInt(1))

	switch d.U.Degree() {
	case -1, 0:
		// Identity: u = 1 (degree 0, the Poly representation of "both
		// u1 and u0 are the BAD sentinel").
		return new(big.Int).Mul(new(big.Int).Add(m, big.NewInt(2)), m)

	case 1:
		u0 := d.U.Coeff(0)
		e := new(big.Int).Mul(mPlus1, u0)
		e.Add(e, m)
		return e

	default:
		u1 := d.U.Coeff(1)
		u0 := d.U.Coeff(0)

		var x1 *big.Int
		if u1.Bit(0) == 1 {
			x1 = new(big.Int).Add(u1, m)
		} else {
			x1 = new(big.Int).Set(u1)
		}
		x1.Rsh(x1, 1)

		x2sqr := f.Sub(f.Mul(x1, x1), u0)
		x2, ok := f.Sqrt(x2sqr)
		if !ok {
			twisted := f.Mul(x2sqr, f.Inv(f.NR))
			x2, _ = f.Sqrt(twisted)
			e := new(big.Int).Mul(mPlus1, f.Add(m, x2))
			e.Add(e, x1)
			return e
		}

		v1 := d.V.Coeff(1)
		v0 := d.V.Coeff(0)

		x1a := f.Sub(x1, x2)
		y1 := f.Sub(v0, f.Mul(v1, x1a))
		x2a := f.Add(x1, x2)
		y2 := f.Sub(v0, f.Mul(v1, x2a))

		if x1a.Cmp(x2a) > 0 {
			x1a, x2a = x2a, x1a
		}
		if (y1.Bit(0) ^ y2.Bit(0)) == 1 {
			x1a, x2a = x2a, x1a
		}

		e := new(big.Int).Mul(mPlus1, x1a)
		e.Add(e, x2a)
		return e
	}
}

// EmitConfirmationID renders e as the 48-character dash-separated
// Confirmation ID string: seven groups of five decimal digits plus a
// weighted mod-7 check digit per group (spec §4.6.5 final step).
func EmitConfirmationID(e *big.Int) string {
	digits := e.Text(10)
	for len(digits) < 35 {
		digits = "0" + digits
	}

	var groups []string
	for g := 0; g < 7; g++ {
		chunk := digits[g*5 : g*5+5]
		sum := 0
		for i, r := range chunk {
			d := int(r - '0')
			if i%2 == 1 {
				sum += d * 2
			} else {
				sum += d
			}
		}
		groups = append(groups, fmt.Sprintf("%s%d", chunk, sum%7))
	}
	return strings.Join(groups, "-")
}

// Generate implements the full Installation ID -> Confirmation ID flow
// (spec §4.6.5).
func (p *Params) Generate(installationID, productID string) (string, error) {
	payload, totalCount, err := ParseInstallationID(installationID)
	if err != nil {
		return "", err
	}

	id, err := p.unmixInstallationID(payload, totalCount)
	if err != nil {
		return "", err
	}

	productIDFields, err := p.productIDFields(id, productID)
	if err != nil {
		return "", err
	}

	keyMaterial := make([]byte, 16)
	hwBytes := leBytes(new(big.Int).SetUint64(id.HardwareID), 8)
	copy(keyMaterial[0:8], hwBytes)

	mixedPID := productIDFields[0]<<41 | productIDFields[1]<<58 | productIDFields[2]<<17 | productIDFields[3]
	copy(keyMaterial[8:16], leBytes(new(big.Int).SetUint64(mixedPID), 8))

	attemptByte := 7
	if p.IsOffice {
		attemptByte = 6
	}

	d, err := p.Curve.findDivisor(keyMaterial, attemptByte, p.IsOffice)
	if err != nil {
		return "", err
	}

	dPrime := p.Curve.ScalarMul128(d, p.PrivLo, p.PrivHi)
	e := p.Curve.divisorToScalar(dPrime)

	return EmitConfirmationID(e), nil
}
