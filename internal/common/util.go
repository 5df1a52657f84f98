// Package common contains small helpers and sentinel errors shared across
// PhishGuard client components.
package common

import "crypto/rand"

// GenerateRandByteArray returns size cryptographically random bytes.
// A failing system RNG is not recoverable, so errors panic.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the contents of b with zeros. Used to remove
// passphrases and discarded keys from memory after use. A nil slice is a
// no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
