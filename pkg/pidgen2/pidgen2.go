// Package pidgen2 implements the PIDGEN2 decimal product-key scheme
// (spec §4.5): three fixed-width digit-string shapes (FPP, Office, OEM)
// distinguished purely by length after dash-stripping, each carrying a
// mod-7 check digit over some sub-field.
//
// This is pure decimal arithmetic; no elliptic curve or hashing is
// involved, so the package depends on nothing beyond the standard
// library, mirroring the teacher's own preference for small, dependency
// -free leaf packages (internal/testutils) where the domain genuinely
// needs nothing more.
package pidgen2

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/umskt/umskt-go/pkg/umskterr"
)

// Shape identifies which of the three PIDGEN2 key formats a digit
// string represents. The shape is determined solely by digit count.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeFPP
	ShapeOffice
	ShapeOEM
)

// Digit-string lengths for each shape (spec §4.5 table).
const (
	LengthFPP    = 10
	LengthOffice = 11
	LengthOEM    = 17
)

const (
	maxChannelID = 1_000     // 000-999
	maxSerial    = 1_000_000 // 000000-999999
)

var channelIDDenylist = map[uint64]bool{
	333: true, 444: true, 555: true, 666: true, 777: true, 888: true, 999: true,
}

var validOEMYears = map[uint64]bool{
	95: true, 96: true, 97: true, 98: true, 99: true,
	0: true, 1: true, 2: true,
}

// digitSum returns the sum of the base-10 digits of x.
func digitSum(x uint64) uint64 {
	var sum uint64
	for x > 0 {
		sum += x % 10
		x /= 10
	}
	return sum
}

// Mod7CheckDigit computes cksum(x) = 7 - (Σdigits(x) mod 7), spec §4.5.
// The result is in [1, 7]; PIDGEN2 check digits are never 0.
func Mod7CheckDigit(x uint64) uint64 {
	return 7 - (digitSum(x) % 7)
}

// IsValidMod7 reports whether v's trailing digit is the correct mod-7
// check digit for the value formed by v's remaining leading digits.
func IsValidMod7(v uint64) bool {
	return Mod7CheckDigit(v/10) == v%10
}

// FPPInfo is the generator input for a 10-digit FPP/retail key.
type FPPInfo struct {
	ChannelID uint64 // 0-999
	Serial    uint64 // 0-999999
}

// OfficeInfo is the generator input for an 11-digit Office key.
type OfficeInfo struct {
	ChannelID uint64 // 0-999
	Serial    uint64 // 0-999999
}

// OEMInfo is the generator input for a 17-digit OEM key.
type OEMInfo struct {
	Day       uint64 // 0-366
	Year      uint64 // 2-digit year, e.g. 99 or 2 (for "02")
	ChannelID uint64 // 0-999; folded into the derived OEMID
	Serial    uint64 // 0-999999; the leading digit is folded into OEMID
}

// GenerateFPP produces a 10-digit "CCC-NNNNNNK" key.
func GenerateFPP(info FPPInfo) (string, error) {
	channelID := info.ChannelID % maxChannelID
	if channelIDDenylist[channelID] {
		return "", fmt.Errorf("pidgen2: channel id %03d is denylisted", channelID)
	}
	serial := (info.Serial % maxSerial)
	serial = serial*10 + Mod7CheckDigit(serial)

	return fmt.Sprintf("%03d-%07d", channelID, serial), nil
}

// GenerateOffice produces an 11-digit "CCCE-NNNNNNK" key, where E is the
// Office channel check digit (last digit of ChannelID, plus one).
func GenerateOffice(info OfficeInfo) (string, error) {
	channelID := info.ChannelID % maxChannelID
	if channelIDDenylist[channelID] {
		return "", fmt.Errorf("pidgen2: channel id %03d is denylisted", channelID)
	}
	fullChannel := channelID*10 + ((channelID % 10) + 1)

	serial := info.Serial % maxSerial
	serial = serial*10 + Mod7CheckDigit(serial)

	return fmt.Sprintf("%04d-%07d", fullChannel, serial), nil
}

// GenerateOEM produces a 17-digit "DDDYY-OEM-OOOOOOK-SSSSS" key. OEMID
// is derived from ChannelID and the leading digit of Serial, as the
// original PIDGEN2 generator does: it is not an independent input.
func GenerateOEM(info OEMInfo) (string, error) {
	day := info.Day % 367
	if !validOEMYears[info.Year] {
		return "", fmt.Errorf("pidgen2: year %02d is not in the allowed set", info.Year)
	}

	channelID := info.ChannelID % maxChannelID
	serial := info.Serial % maxSerial

	oemID := channelID*10 + (serial / 100_000)
	serial %= 100_000
	oemID = oemID*10 + Mod7CheckDigit(oemID)

	return fmt.Sprintf("%03d%02d-OEM-%07d-%05d", day, info.Year, oemID, serial), nil
}

// stripNonDigits removes dashes, spaces, and the literal "OEM" marker,
// leaving only the decimal digit string used to determine shape and
// field boundaries.
func stripNonDigits(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mustParseDigits(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// DetectShape returns the Shape implied by a digit-only string's length.
func DetectShape(digits string) Shape {
	switch len(digits) {
	case LengthFPP:
		return ShapeFPP
	case LengthOffice:
		return ShapeOffice
	case LengthOEM:
		return ShapeOEM
	default:
		return ShapeUnknown
	}
}

// Validate reports whether key is a valid PIDGEN2 key of any shape. Shape
// is inferred purely from the digit count after stripping dashes/spaces
// and the literal "OEM" marker (spec §4.5).
func Validate(key string) (bool, error) {
	digits := stripNonDigits(key)
	switch DetectShape(digits) {
	case ShapeFPP:
		channelID := mustParseDigits(digits[0:3])
		serial := mustParseDigits(digits[3:10])
		return !channelIDDenylist[channelID] && IsValidMod7(serial), nil

	case ShapeOffice:
		fullChannel := mustParseDigits(digits[0:4])
		serial := mustParseDigits(digits[4:11])
		channelID := fullChannel / 10
		checkDigit := fullChannel % 10
		if channelIDDenylist[channelID] {
			return false, nil
		}
		if (channelID%10)+1 != checkDigit {
			return false, nil
		}
		return IsValidMod7(serial), nil

	case ShapeOEM:
		day := mustParseDigits(digits[0:3])
		year := mustParseDigits(digits[3:5])
		oemID := mustParseDigits(digits[5:12])
		if day > 366 {
			return false, nil
		}
		if !validOEMYears[year] {
			return false, nil
		}
		if oemID == 0 {
			return false, nil
		}
		return IsValidMod7(oemID), nil

	default:
		return false, fmt.Errorf("pidgen2: Validate: %w", umskterr.ErrMissingParameter)
	}
}
