// Package bitstream implements the append/cursor-based binary buffer used to
// assemble and parse the puzzle's wire formats: the header||nonce preimage,
// the little-endian node sequence hashed by the path engine, and the final
// solution blob.
package bitstream

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/utils"
)

// Stream is an append-only byte buffer with a separate read cursor. Reads
// past the end of the written data return core.ErrStreamUnderflow instead
// of panicking, mirroring the reference implementation's bounds-checked
// stream.
type Stream struct {
	data []byte
	pos  int
}

// New returns an empty stream ready for writing.
func New() *Stream {
	return &Stream{}
}

// NewFromBytes returns a stream holding a copy of data for reading, with the
// cursor at 0.
func NewFromBytes(data []byte) *Stream {
	return &Stream{data: append([]byte(nil), data...)}
}

// Write appends raw bytes to the stream.
func (s *Stream) Write(p []byte) {
	s.data = append(s.data, p...)
}

// WriteUint16 appends v encoded as little-endian.
func (s *Stream) WriteUint16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	s.data = append(s.data, buf[:]...)
}

// Read consumes and returns the next n bytes from the cursor. It returns
// core.ErrStreamUnderflow if fewer than n bytes remain.
func (s *Stream) Read(n int) ([]byte, error) {
	if err := utils.ValidateSliceAccess(s.data, s.pos, n); err != nil {
		return nil, core.ErrStreamUnderflow
	}
	out := make([]byte, n)
	copy(out, s.data[s.pos:s.pos+n])
	s.pos += n
	return out, nil
}

// ReadUint16 consumes and decodes the next 2 bytes as little-endian.
func (s *Stream) ReadUint16() (uint16, error) {
	b, err := s.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Remaining returns how many unread bytes are left.
func (s *Stream) Remaining() int {
	return len(s.data) - s.pos
}

// Data returns the stream's full underlying buffer, ignoring the read
// cursor.
func (s *Stream) Data() []byte {
	return s.data
}

// Len returns the total number of bytes written to the stream.
func (s *Stream) Len() int {
	return len(s.data)
}

// Hex returns the lowercase hexadecimal encoding of the stream's data.
func (s *Stream) Hex() string {
	return hex.EncodeToString(s.data)
}
