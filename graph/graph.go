// Package graph implements the functional adjacency graph derived from a
// Kyber-768/AES-256-CBC encrypted header||nonce preimage. Each row has at
// most one outgoing edge (out-degree <= 1), assigned on a first-write-wins
// basis as the encrypted bytes are packed into 12-bit node indices and
// walked pairwise.
package graph

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/marcofortina/qyra-go/aescbc"
	"github.com/marcofortina/qyra-go/bitstream"
	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/kem"
	"github.com/marcofortina/qyra-go/pack12"
	"github.com/marcofortina/qyra-go/qhash"
	"github.com/marcofortina/qyra-go/utils"
)

// wordsPerRow holds MaxNodes bits, one per possible destination node.
const wordsPerRow = core.MaxNodes / 64

// row is a fixed-size bitset over the possible destination nodes for a
// single source node.
type row [wordsPerRow]uint64

func (r *row) none() bool {
	for _, w := range r {
		if w != 0 {
			return false
		}
	}
	return true
}

func (r *row) reset() {
	*r = row{}
}

func (r *row) set(bit int) {
	r[bit/64] |= 1 << uint(bit%64)
}

func (r *row) test(bit int) bool {
	return r[bit/64]&(1<<uint(bit%64)) != 0
}

// findFirst returns the lowest set bit index, or ok=false if the row is
// empty.
func (r *row) findFirst() (int, bool) {
	return r.findNext(-1)
}

// findNext returns the lowest set bit index strictly greater than after, or
// ok=false if none remain.
func (r *row) findNext(after int) (int, bool) {
	start := after + 1
	wordIdx := start / 64
	if wordIdx >= wordsPerRow {
		return 0, false
	}

	// Mask off bits at or before `after` in the first word.
	w := r[wordIdx] &^ ((uint64(1) << uint(start%64)) - 1)
	for {
		if w != 0 {
			return wordIdx*64 + bits.TrailingZeros64(w), true
		}
		wordIdx++
		if wordIdx >= wordsPerRow {
			return 0, false
		}
		w = r[wordIdx]
	}
}

// Graph holds the adjacency matrix plus the cryptographic material and
// preimage components needed to derive and validate it.
type Graph struct {
	rows []row

	header []byte
	nonce  []byte

	publicKey []byte
	secretKey []byte

	enc        []byte
	iv         []byte
	ciphertext []byte

	numThreads int
}

// New returns an empty graph with a cleared adjacency matrix and a single
// DFS worker.
func New() *Graph {
	g := &Graph{numThreads: 1}
	g.Clear()
	return g
}

// Clear resets the adjacency matrix to all-empty rows, discarding any
// previously derived edges.
func (g *Graph) Clear() {
	g.rows = make([]row, core.MaxNodes)
}

// Initialize stores the Kyber-768 key pair the graph will encapsulate under
// (Generate) or decapsulate with (Validate).
func (g *Graph) Initialize(publicKey, secretKey []byte) error {
	if len(publicKey) != core.PKLen || len(secretKey) != core.SKLen {
		return core.ErrNullOrMissingKey
	}
	g.publicKey = append([]byte(nil), publicKey...)
	g.secretKey = append([]byte(nil), secretKey...)
	return nil
}

// SetHeader stores the caller-supplied header component of the preimage.
func (g *Graph) SetHeader(vch []byte) {
	g.header = append([]byte(nil), vch...)
}

// SetNonce stores the caller-supplied nonce component of the preimage.
func (g *Graph) SetNonce(vch []byte) {
	g.nonce = append([]byte(nil), vch...)
}

// SetNumThreads configures how many workers the path engine's DFS should
// use when it later walks this graph's View.
func (g *Graph) SetNumThreads(n int) error {
	if n <= 0 {
		return core.ErrNodeOutOfRange
	}
	g.numThreads = n
	return nil
}

// NumThreads returns the configured DFS worker count.
func (g *Graph) NumThreads() int {
	return g.numThreads
}

// AddEdge records from -> to. Once a source node already has an outgoing
// edge, further calls for the same source are a no-op success: the first
// write wins and the row is never overwritten.
func (g *Graph) AddEdge(from, to uint16) error {
	if int(from) >= core.MaxNodes {
		return core.ErrNodeOutOfRange
	}
	if int(to) >= core.MaxNodes {
		return core.ErrNodeOutOfRange
	}

	r := &g.rows[from]
	if !r.none() {
		return nil
	}
	r.reset()
	r.set(int(to))
	return nil
}

// updateGraphFromData clears the matrix and re-derives it from data: data
// is packed into 12-bit node indices, and each consecutive pair (from, to)
// becomes an edge unless it is a self-loop or `to` has already been given
// an outgoing edge (used as a source).
func (g *Graph) updateGraphFromData(data []byte) error {
	g.Clear()

	if len(data) == 0 {
		return core.ErrEmptyInput
	}

	edges, err := pack12.Pack12(data)
	if err != nil {
		return err
	}
	if len(edges) < 2 {
		return core.ErrGraphDerivationFailure
	}

	visited := make(map[uint16]bool, len(edges))
	for i := 0; i < len(edges)-1; i++ {
		from, to := edges[i], edges[i+1]
		if from != to && !visited[to] {
			if err := g.AddEdge(from, to); err != nil {
				return err
			}
			visited[from] = true
		}
	}
	return nil
}

// Generate encapsulates a fresh shared secret under the graph's public key,
// encrypts header||nonce with it, and derives the adjacency matrix from the
// resulting ciphertext.
func (g *Graph) Generate() error {
	if g.publicKey == nil {
		return core.ErrNullOrMissingKey
	}

	s := bitstream.New()
	s.Write(g.header)
	s.Write(g.nonce)

	ct, sharedSecret, err := kem.Encapsulate(g.publicKey)
	if err != nil {
		return err
	}
	defer utils.Zeroize(sharedSecret)

	enc, iv, err := aescbc.Encrypt(sharedSecret, s.Data())
	if err != nil {
		return err
	}

	if err := g.updateGraphFromData(enc); err != nil {
		return err
	}

	g.enc = enc
	g.iv = iv
	g.ciphertext = ct
	return nil
}

// Validate checks that solution's enc||iv||ciphertext component was
// generated from the graph's header and nonce, then re-derives the
// adjacency matrix from it. It does not check the path hash; that is the
// puzzle facade's job.
func (g *Graph) Validate(solution []byte) error {
	if len(solution) != core.TotalLen {
		return core.ErrInvalidSolutionSize
	}
	if g.secretKey == nil {
		return core.ErrNullOrMissingKey
	}

	s := bitstream.NewFromBytes(solution)
	enc, err := s.Read(core.EncLen)
	if err != nil {
		return err
	}
	iv, err := s.Read(core.IVLen)
	if err != nil {
		return err
	}
	ciphertext, err := s.Read(core.CTLen)
	if err != nil {
		return err
	}

	sharedSecret, err := kem.Decapsulate(ciphertext, g.secretKey)
	if err != nil {
		return err
	}
	defer utils.Zeroize(sharedSecret)

	decrypted, err := aescbc.Decrypt(sharedSecret, enc, iv)
	if err != nil {
		return err
	}

	expected := bitstream.New()
	expected.Write(g.header)
	expected.Write(g.nonce)
	if !utils.ConstantTimeEqual(decrypted, expected.Data()) {
		return core.ErrPlaintextMismatch
	}

	if err := g.updateGraphFromData(enc); err != nil {
		return err
	}

	g.enc = enc
	g.iv = iv
	g.ciphertext = ciphertext
	return nil
}

// Hash returns the BLAKE3 digest of the flattened adjacency matrix, one
// MaxNodes/8-byte row at a time.
func (g *Graph) Hash() [32]byte {
	data := make([]byte, 0, core.MaxNodes*(core.MaxNodes/8))
	for i := range g.rows {
		data = append(data, rowBytes(&g.rows[i])...)
	}
	return qhash.Sum256(data)
}

func rowBytes(r *row) []byte {
	out := make([]byte, core.MaxNodes/8)
	if r.none() {
		return out
	}
	for i := 0; i < core.MaxNodes; i++ {
		if r.test(i) {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// EncMessage returns the AES-256-CBC ciphertext of header||nonce.
func (g *Graph) EncMessage() []byte {
	return append([]byte(nil), g.enc...)
}

// IV returns the AES-256-CBC initialization vector used to produce
// EncMessage.
func (g *Graph) IV() []byte {
	return append([]byte(nil), g.iv...)
}

// Ciphertext returns the Kyber-768 KEM ciphertext.
func (g *Graph) Ciphertext() []byte {
	return append([]byte(nil), g.ciphertext...)
}

// Size returns the total number of entries in the adjacency matrix
// (MaxNodes * MaxNodes), matching the reference miner's CGraph::Size.
func (g *Graph) Size() int {
	return core.MaxNodes * core.MaxNodes
}

// DumpMatrix writes one "from -> to" line per node that has an outgoing
// edge, in ascending node order. It is a diagnostic aid for cmd/qyra-bench
// and cmd/qyra-keygen, standing in for the reference miner's
// SaveAdjacencyMatrixToFile; it is opt-in and never called from Generate or
// Validate.
func (g *Graph) DumpMatrix(w io.Writer) error {
	for from := range g.rows {
		to, ok := g.rows[from].findFirst()
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d -> %d\n", from, to); err != nil {
			return err
		}
	}
	return nil
}

// View returns a read-only handle onto the graph's adjacency matrix, the
// only access the path engine is given. This replaces the reference
// implementation's `friend class CPath` with an explicit, minimal
// interface.
func (g *Graph) View() View {
	return View{g: g}
}

// View is an immutable, concurrency-safe read view over a Graph's
// adjacency matrix. Multiple DFS workers may hold and use the same View
// concurrently since it never mutates the underlying rows.
type View struct {
	g *Graph
}

// NumNodes returns the fixed adjacency matrix dimension.
func (v View) NumNodes() int {
	return core.MaxNodes
}

// IsEmpty reports whether node has no outgoing edge.
func (v View) IsEmpty(node int) bool {
	return v.g.rows[node].none()
}

// FindFirst returns the lowest destination node reachable from node, if
// any.
func (v View) FindFirst(node int) (int, bool) {
	return v.g.rows[node].findFirst()
}

// FindNext returns the lowest destination node reachable from node that is
// strictly greater than after. Since every row has at most one bit set,
// this is only ever meaningful as "is there another edge after the one
// found by FindFirst", which for a functional graph is always false; it is
// kept for parity with the reference bitset API used by the path engine's
// DFS loop.
func (v View) FindNext(node, after int) (int, bool) {
	return v.g.rows[node].findNext(after)
}
