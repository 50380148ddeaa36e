// Package checksum provides the digest used to store API keys at rest.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumString is a convenience wrapper for string input.
func SumString(s string) string {
	return Sum([]byte(s))
}
