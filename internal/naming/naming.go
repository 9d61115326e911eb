// Package naming holds the identifier rules shared by the webhook, the CLI
// and configuration loading.
package naming

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 digest over the given byte slices,
// each prefixed by its length so that ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		l := uint64(len(p))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ShortHash returns the first n hex characters of s (clamped to len(s)).
func ShortHash(s string, n int) string {
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
