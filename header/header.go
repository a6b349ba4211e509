// Package header builds the 108-byte block header preimage that callers
// feed to Puzzle.SetHeader: a version, three 32-byte hash fields, and two
// 32-bit timestamp/difficulty fields, all little-endian, matching the
// reference miner's block header layout.
package header

import (
	"encoding/binary"

	"github.com/marcofortina/qyra-go/core"
)

// Header holds the block-header fields hashed into the puzzle's preimage
// alongside the nonce.
type Header struct {
	Version        int32
	HashPrevBlock  [32]byte
	HashMerkleRoot [32]byte
	HashReserved   [32]byte
	Timestamp      uint32
	Bits           uint32
}

// Build encodes h as a fixed core.HeaderLen-byte little-endian buffer.
func Build(h Header) [core.HeaderLen]byte {
	var out [core.HeaderLen]byte
	off := 0

	binary.LittleEndian.PutUint32(out[off:], uint32(h.Version))
	off += 4

	copy(out[off:], h.HashPrevBlock[:])
	off += 32

	copy(out[off:], h.HashMerkleRoot[:])
	off += 32

	copy(out[off:], h.HashReserved[:])
	off += 32

	binary.LittleEndian.PutUint32(out[off:], h.Timestamp)
	off += 4

	binary.LittleEndian.PutUint32(out[off:], h.Bits)
	off += 4

	return out
}

// Parse decodes a core.HeaderLen-byte buffer back into a Header.
func Parse(data [core.HeaderLen]byte) Header {
	var h Header
	off := 0

	h.Version = int32(binary.LittleEndian.Uint32(data[off:]))
	off += 4

	copy(h.HashPrevBlock[:], data[off:])
	off += 32

	copy(h.HashMerkleRoot[:], data[off:])
	off += 32

	copy(h.HashReserved[:], data[off:])
	off += 32

	h.Timestamp = binary.LittleEndian.Uint32(data[off:])
	off += 4

	h.Bits = binary.LittleEndian.Uint32(data[off:])
	off += 4

	return h
}
