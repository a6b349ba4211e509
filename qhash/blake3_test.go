package qhash

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSum256Empty(t *testing.T) {
	got := Sum256(nil)
	want, err := hex.DecodeString("af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262")
	if err != nil {
		t.Fatalf("bad test vector: %v", err)
	}
	if !bytes.Equal(got[:], want) {
		t.Fatalf("Sum256(nil) = %x, want %x", got, want)
	}
}

func TestSum256Deterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	a := Sum256(data)
	b := Sum256(data)
	if a != b {
		t.Fatal("Sum256 is not deterministic")
	}
}

func TestSum256Sensitivity(t *testing.T) {
	a := Sum256([]byte("qyra-graph-input"))
	b := Sum256([]byte("qyra-graph-inpuu"))
	if a == b {
		t.Fatal("single byte change did not affect the digest")
	}
}

// TestSum256AcrossChunkBoundary exercises the multi-chunk tree path: 1024
// bytes is exactly one chunk, 1025 forces a two-chunk tree with a single
// parent node.
func TestSum256AcrossChunkBoundary(t *testing.T) {
	oneChunk := bytes.Repeat([]byte{0xAB}, chunkLen)
	twoChunks := bytes.Repeat([]byte{0xAB}, chunkLen+1)

	h1 := Sum256(oneChunk)
	h2 := Sum256(twoChunks)
	if h1 == h2 {
		t.Fatal("expected different digests across the chunk boundary")
	}
}

func TestSum256LargeInputStable(t *testing.T) {
	// 2 MiB, matching the graph adjacency matrix's flattened size.
	data := make([]byte, 2*1024*1024)
	for i := range data {
		data[i] = byte(i)
	}
	a := Sum256(data)
	b := Sum256(data)
	if a != b {
		t.Fatal("Sum256 is not deterministic over a large multi-level tree")
	}
}
