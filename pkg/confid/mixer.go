package confid

import "crypto/sha1" //nolint:gosec // historical interoperability artifact, spec §1.

// roundHash computes one Feistel round function output: SHA-1 of
// (0x79 prefix, if Office-branded) || half || key, truncated to
// len(half) bytes and realigned when that length isn't a multiple of
// four. The realignment is unusual but must be reproduced exactly or
// round trips break (spec §4.6.4, §9 open questions).
func roundHash(half, key []byte, officeBranded bool) []byte {
	msg := make([]byte, 0, 1+len(half)+len(key))
	if officeBranded {
		msg = append(msg, 0x79)
	}
	msg = append(msg, half...)
	msg = append(msg, key...)

	digest := sha1.Sum(msg)
	out := digest[:]

	n := len(half)
	shift := 4 - (n & 3)
	for i := n &^ 3; i < n; i++ {
		out[i] = out[i+shift]
	}
	return out
}

// Mix scrambles buffer in place with a 4-round Feistel network keyed
// by key (spec §4.6.4). buffer's length need not be even; the trailing
// byte of an odd-length buffer is left untouched by both halves.
func Mix(buffer, key []byte, officeBranded bool) {
	half := len(buffer) / 2
	for round := 0; round < 4; round++ {
		h := roundHash(buffer[half:2*half], key, officeBranded)
		for i := 0; i < half; i++ {
			tmp := buffer[i+half]
			buffer[i+half] = buffer[i] ^ h[i]
			buffer[i] = tmp
		}
	}
}

// Unmix is Mix's inverse under a matching branding flag.
func Unmix(buffer, key []byte, officeBranded bool) {
	half := len(buffer) / 2
	for round := 0; round < 4; round++ {
		h := roundHash(buffer[:half], key, officeBranded)
		for i := 0; i < half; i++ {
			tmp := buffer[i]
			buffer[i] = buffer[i+half] ^ h[i]
			buffer[i+half] = tmp
		}
	}
}
