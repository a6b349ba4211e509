package qyra

import (
	"encoding/hex"
	"fmt"

	"github.com/marcofortina/qyra-go/core"
)

// Solution is the fixed-size wire blob produced by Mine and consumed by
// Validate: enc||iv||ciphertext||hash, exactly core.SolutionLen bytes.
type Solution []byte

// String returns the solution's lowercase hexadecimal encoding.
func (s Solution) String() string {
	return hex.EncodeToString(s)
}

// Size returns the number of bytes in the solution.
func (s Solution) Size() int {
	return len(s)
}

// EncMessage returns the AES-256-CBC ciphertext component of the solution.
func (s Solution) EncMessage() []byte {
	return append([]byte(nil), s[:core.EncLen]...)
}

// IV returns the AES-256-CBC initialization vector component.
func (s Solution) IV() []byte {
	return append([]byte(nil), s[core.EncLen:core.EncLen+core.IVLen]...)
}

// Ciphertext returns the Kyber-768 KEM ciphertext component.
func (s Solution) Ciphertext() []byte {
	start := core.EncLen + core.IVLen
	return append([]byte(nil), s[start:start+core.CTLen]...)
}

// PathHash returns the BLAKE3 path-hash component.
func (s Solution) PathHash() []byte {
	return append([]byte(nil), s[core.TotalLen:core.TotalLen+core.HashLen]...)
}

// ParseSolution decodes a hex-encoded solution string and validates its
// length against core.SolutionLen.
func ParseSolution(s string) (Solution, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("qyra: parse solution: %w", err)
	}
	if len(raw) != core.SolutionLen {
		return nil, fmt.Errorf("qyra: parse solution: %w", core.ErrInvalidSolutionSize)
	}
	return Solution(raw), nil
}
