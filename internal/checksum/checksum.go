// Package checksum computes the content fingerprints used for change
// detection at block, section, and document granularity. Digests are plain
// sha256 hex so they stay stable across runs and machines.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Bytes returns the sha256 hex digest of data.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Text returns the sha256 hex digest of the UTF-8 encoding of text.
func Text(text string) string {
	return Bytes([]byte(text))
}
