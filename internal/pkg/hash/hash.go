// Package hash provides hashing utilities.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// SHA256 computes the SHA256 hash of data and returns it as a hex string.
func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SHA256String computes the SHA256 hash of a string.
func SHA256String(s string) string {
	return SHA256([]byte(s))
}

// SHA256Short returns the first n characters of a SHA256 hash.
func SHA256Short(data []byte, n int) string {
	h := SHA256(data)
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}

// RecordID computes a deterministic point identifier for a vehicle record
// from its dedup identity (normalized name + model year). Re-indexing the
// same dataset therefore overwrites points instead of duplicating them.
// The result is a name-based UUID because Qdrant point IDs must be
// unsigned integers or UUIDs.
func RecordID(normalizedName string, year int) string {
	key := fmt.Sprintf("%s|%d", normalizedName, year)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
