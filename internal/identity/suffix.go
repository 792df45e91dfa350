package identity

import (
	"crypto/sha256"
	"encoding/binary"
)

// suffixAlphabet is a 32-character uppercase set excluding the visually
// ambiguous letters I, L, O, and U.
const suffixAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ0123456789"

// collisionSuffix derives a fixed-length suffix from the owning pair. The
// same pair always yields the same suffix, so retries after a collision are
// deterministic.
func collisionSuffix(ownerKey string, length int) string {
	sum := sha256.Sum256([]byte(ownerKey))
	value := binary.BigEndian.Uint64(sum[:8])

	buf := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		buf[i] = suffixAlphabet[value%uint64(len(suffixAlphabet))]
		value /= uint64(len(suffixAlphabet))
	}
	return string(buf)
}
