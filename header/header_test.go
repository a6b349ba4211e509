package header

import "testing"

func TestBuildParseRoundTrip(t *testing.T) {
	h := Header{
		Version:        2,
		HashPrevBlock:  [32]byte{1, 2, 3},
		HashMerkleRoot: [32]byte{4, 5, 6},
		HashReserved:   [32]byte{},
		Timestamp:      1735689600,
		Bits:           0x1e1a7099,
	}

	buf := Build(h)
	if len(buf) != 108 {
		t.Fatalf("Build returned %d bytes, want 108", len(buf))
	}

	got := Parse(buf)
	if got != h {
		t.Fatalf("Parse(Build(h)) = %+v, want %+v", got, h)
	}
}
