// Package umskterr defines the error kinds surfaced by the core to its
// callers. Every failure is local to a single call: nothing here is
// retried internally except the bounded rejection-sampling loops in the
// generators, which return ErrUnlucky only once their attempt bound is
// exceeded.
package umskterr

import "errors"

// Sentinel error kinds. Callers compare with errors.Is; concrete errors
// returned by the core wrap one of these with context via fmt.Errorf's
// %w verb.
var (
	// ErrInvalidCharacter is returned when an Installation ID contains a
	// non-digit. Product keys never return this: unrecognized base-24
	// characters are silently skipped on decode (spec §4.2).
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrTooShort is returned when an Installation ID has fewer than 45
	// digits and is not exactly 41 digits long.
	ErrTooShort = errors.New("installation id too short")

	// ErrTooLarge is returned when an Installation ID is longer than any
	// accepted length.
	ErrTooLarge = errors.New("installation id too large")

	// ErrInvalidCheckDigit is returned when a five-digit group of an
	// Installation ID fails its weighted mod-7 check.
	ErrInvalidCheckDigit = errors.New("invalid check digit")

	// ErrUnknownVersion is returned when the decoded Installation ID
	// carries an unexpected version field.
	ErrUnknownVersion = errors.New("unknown installation id version")

	// ErrUnlucky is returned when a bounded rejection-sampling search
	// (BINK2002 signing, the Confirmation ID divisor search) exhausts
	// its attempt budget. Retrying the whole call with a fresh random
	// seed is expected to succeed.
	ErrUnlucky = errors.New("unlucky: exhausted attempt budget")

	// ErrValidationFailed names the case of a key that parses cleanly but
	// whose packed hash does not match the recomputed one. The Validate
	// methods in pkg/pidgen3 report that case as a false result with a
	// nil error; they do not return ErrValidationFailed.
	ErrValidationFailed = errors.New("validation failed")

	// ErrUnknownSku is returned when the registry has no record for the
	// requested product code.
	ErrUnknownSku = errors.New("unknown sku")

	// ErrMissingParameter is returned when a requested algorithm or
	// curve parameter set is absent from a SKU's record.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrNotOnCurve is returned at parameter-load time when a generator
	// or public key point fails the curve membership test.
	ErrNotOnCurve = errors.New("point is not on curve")

	// ErrPointAtInfinity is returned when Affine is asked for the
	// coordinates of the point at infinity.
	ErrPointAtInfinity = errors.New("point at infinity has no affine coordinates")
)
