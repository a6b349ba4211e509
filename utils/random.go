// Package utils provides the small CSPRNG, zeroization, and hashing helpers
// shared by the KEM, cipher, and graph packages.
package utils

import (
	"crypto/rand"
	"io"
)

// RandReader is the source of cryptographic randomness. Tests may swap it
// for a deterministic reader.
var RandReader io.Reader = rand.Reader

// SecureRandomBytes generates n cryptographically secure random bytes using
// the operating system's CSPRNG.
func SecureRandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(RandReader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
