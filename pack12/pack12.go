// Package pack12 splits an arbitrary byte buffer into 12-bit values, the
// node indices consumed by the graph engine. Every three input bytes carry
// two 12-bit indices, so a buffer padded to a multiple of three bytes
// expands into a matching sequence of node addresses in [0, 4096).
package pack12

import "github.com/marcofortina/qyra-go/utils"

// maxDataLen bounds Pack12's input against runaway allocation on malformed
// callers; it is far larger than any real header||nonce or AES ciphertext
// this package ever packs.
const maxDataLen = 1 << 20

// Pack12 packs data into 12-bit values by grouping every three bytes into a
// 24-bit little-endian word and splitting it into a low and a high 12-bit
// half. data is zero-padded up to a multiple of three bytes first, so the
// output length is always (len(padded)/3)*2.
func Pack12(data []byte) ([]uint16, error) {
	if err := utils.CheckLength(len(data), maxDataLen); err != nil {
		return nil, err
	}

	padLen := (3 - len(data)%3) % 3
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)

	out := make([]uint16, 0, len(padded)/3*2)
	for i := 0; i < len(padded); i += 3 {
		value := uint32(padded[i]) | uint32(padded[i+1])<<8 | uint32(padded[i+2])<<16

		low := uint16(value & 0x0FFF)
		high := uint16((value >> 12) & 0x0FFF)

		out = append(out, low, high)
	}
	return out, nil
}
