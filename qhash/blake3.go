// Package qhash implements BLAKE3-256 (the 32-byte output mode), used to
// hash the graph's flattened adjacency matrix and the longest path's node
// sequence. It follows BLAKE3's chunk-and-tree construction: the input is
// split into 1024-byte chunks, each chunk is compressed block-by-block into
// a chaining value, and chaining values are combined pairwise up a binary
// tree until a single root chaining value remains.
package qhash

import "encoding/binary"

const (
	chunkLen  = 1024
	blockLen  = 64
	wordsPerBlock = 16

	flagChunkStart = 1
	flagChunkEnd   = 2
	flagParent     = 4
	flagRoot       = 8
)

// iv is BLAKE3's initialization vector, identical to SHA-256's eight
// initial hash values.
var iv = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// msgSchedule is BLAKE3's per-round message word permutation.
var msgSchedule = [7][16]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8},
	{3, 4, 10, 12, 13, 2, 7, 14, 6, 5, 9, 0, 11, 15, 8, 1},
	{10, 7, 12, 9, 14, 3, 13, 15, 4, 0, 11, 2, 5, 8, 1, 6},
	{12, 13, 9, 11, 15, 10, 14, 8, 7, 2, 5, 3, 0, 1, 6, 4},
	{9, 14, 11, 5, 8, 12, 15, 1, 13, 3, 0, 10, 2, 6, 4, 7},
	{11, 15, 5, 0, 1, 9, 8, 6, 14, 10, 2, 12, 3, 4, 7, 13},
}

// g is BLAKE3's quarter-round mixing function.
func g(a, b, c, d, mx, my uint32) (uint32, uint32, uint32, uint32) {
	a += b + mx
	d = rotr32(d^a, 16)
	c += d
	b = rotr32(b^c, 12)
	a += b + my
	d = rotr32(d^a, 8)
	c += d
	b = rotr32(b^c, 7)
	return a, b, c, d
}

func rotr32(x uint32, n uint) uint32 {
	return (x >> n) | (x << (32 - n))
}

// compress runs the 7-round BLAKE3 compression function and returns the
// first eight state words XORed with the second eight, which serves both
// as a 32-byte chaining value and, when flags includes flagRoot, as the
// final digest.
func compress(cv [8]uint32, block [16]uint32, counter uint64, blockLenBytes uint32, flags uint32) [8]uint32 {
	state := [16]uint32{
		cv[0], cv[1], cv[2], cv[3],
		cv[4], cv[5], cv[6], cv[7],
		iv[0], iv[1], iv[2], iv[3],
		uint32(counter), uint32(counter >> 32), blockLenBytes, flags,
	}
	m := block

	for round := 0; round < 7; round++ {
		sched := msgSchedule[round]
		state[0], state[4], state[8], state[12] = g(state[0], state[4], state[8], state[12], m[sched[0]], m[sched[1]])
		state[1], state[5], state[9], state[13] = g(state[1], state[5], state[9], state[13], m[sched[2]], m[sched[3]])
		state[2], state[6], state[10], state[14] = g(state[2], state[6], state[10], state[14], m[sched[4]], m[sched[5]])
		state[3], state[7], state[11], state[15] = g(state[3], state[7], state[11], state[15], m[sched[6]], m[sched[7]])

		state[0], state[5], state[10], state[15] = g(state[0], state[5], state[10], state[15], m[sched[8]], m[sched[9]])
		state[1], state[6], state[11], state[12] = g(state[1], state[6], state[11], state[12], m[sched[10]], m[sched[11]])
		state[2], state[7], state[8], state[13] = g(state[2], state[7], state[8], state[13], m[sched[12]], m[sched[13]])
		state[3], state[4], state[9], state[14] = g(state[3], state[4], state[9], state[14], m[sched[14]], m[sched[15]])
	}

	var out [8]uint32
	for i := 0; i < 8; i++ {
		out[i] = state[i] ^ state[i+8]
	}
	return out
}

func wordsFromBlock(block []byte) [16]uint32 {
	var m [16]uint32
	var padded [64]byte
	copy(padded[:], block)
	for i := 0; i < wordsPerBlock; i++ {
		m[i] = binary.LittleEndian.Uint32(padded[i*4 : i*4+4])
	}
	return m
}

// chunkCV compresses a single chunk (at most 1024 bytes) into its chaining
// value, chaining the per-block state across the chunk's blocks and
// stamping CHUNK_START/CHUNK_END on the first and last block. isRoot is
// set only when this chunk is the entire input.
func chunkCV(data []byte, counter uint64, isRoot bool) [8]uint32 {
	cv := iv
	if len(data) == 0 {
		data = []byte{}
	}

	numBlocks := (len(data) + blockLen - 1) / blockLen
	if numBlocks == 0 {
		numBlocks = 1
	}

	for i := 0; i < numBlocks; i++ {
		start := i * blockLen
		end := start + blockLen
		if end > len(data) {
			end = len(data)
		}
		block := data[start:end]

		flags := uint32(0)
		if i == 0 {
			flags |= flagChunkStart
		}
		if i == numBlocks-1 {
			flags |= flagChunkEnd
			if isRoot {
				flags |= flagRoot
			}
		}

		cv = compress(cv, wordsFromBlock(block), counter, uint32(len(block)), flags)
	}
	return cv
}

// parentCV combines two child chaining values into their parent's chaining
// value.
func parentCV(left, right [8]uint32, isRoot bool) [8]uint32 {
	var block [16]uint32
	copy(block[:8], left[:])
	copy(block[8:], right[:])

	flags := uint32(flagParent)
	if isRoot {
		flags |= flagRoot
	}
	return compress(iv, block, 0, blockLen, flags)
}

// largestPowerOfTwoLeq returns the largest power of two that is <= n.
func largestPowerOfTwoLeq(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// hashSubtree recursively hashes data (a run of whole chunks starting at
// chunk index counter) into a single chaining value, following BLAKE3's
// left-heavy binary tree split.
func hashSubtree(data []byte, counter uint64, isRoot bool) [8]uint32 {
	if len(data) <= chunkLen {
		return chunkCV(data, counter, isRoot)
	}

	fullChunks := (len(data) - 1) / chunkLen
	leftLen := largestPowerOfTwoLeq(fullChunks) * chunkLen

	left := hashSubtree(data[:leftLen], counter, false)
	right := hashSubtree(data[leftLen:], counter+uint64(leftLen/chunkLen), false)
	return parentCV(left, right, isRoot)
}

// Sum256 computes the 32-byte BLAKE3 digest of data.
func Sum256(data []byte) [32]byte {
	cv := hashSubtree(data, 0, true)
	var out [32]byte
	for i, w := range cv {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], w)
	}
	return out
}
