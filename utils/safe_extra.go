package utils

import (
	"crypto/subtle"
	"runtime"
)

// ConstantTimeEqual compares two byte slices in constant time, leaking only
// their lengths.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zeroize overwrites b with zeros so sensitive key material does not linger
// in memory after a failure path. runtime.KeepAlive prevents the compiler
// from eliding the stores as dead code.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
