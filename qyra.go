// Package qyra implements the QYRA proof-of-work puzzle: a post-quantum
// KEM-derived encrypted preimage is packed into a deterministic functional
// graph, and a parallel longest-path search over that graph produces the
// work that Mine and Validate exchange.
//
// The public surface is the Puzzle type: Initialize with a Kyber-768 key
// pair, set a header and nonce, then either Mine a solution or Validate one
// received from a peer.
package qyra

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/marcofortina/qyra-go/bitstream"
	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/graph"
	"github.com/marcofortina/qyra-go/path"
)

// Version identifies this module's implementation of the QYRA wire format.
const Version = "1.0.0"

// Puzzle owns a graph and a path engine and drives them through the
// mine/validate lifecycle. A Puzzle is not safe for concurrent use by
// multiple goroutines; the parallelism lives inside a single Mine or
// Validate call.
type Puzzle struct {
	graph *graph.Graph
	path  *path.Path

	// debug gates the diagnostic sink Mine/Validate log their failure kind
	// to. It is off by default, matching the reference miner's silent
	// library calls; cmd/qyra-bench and cmd/qyra-keygen turn it on with
	// SetDebug when their own -verbose flag is set.
	debug bool
}

// New returns a Puzzle with an empty graph and path, defaulting to a
// single-threaded DFS until EnableParallelDFS is called.
func New() *Puzzle {
	return &Puzzle{
		graph: graph.New(),
		path:  path.New(),
	}
}

// Initialize stores the Kyber-768 key pair this puzzle mines or validates
// against. publicKey must be core.PKLen bytes, secretKey core.SKLen bytes.
func (p *Puzzle) Initialize(publicKey, secretKey []byte) error {
	return p.graph.Initialize(publicKey, secretKey)
}

// SetDebug enables or disables logging of failure kinds to stderr from Mine
// and Validate, per the diagnostic-sink requirement. It never affects
// mining or validation results, only whether they are narrated.
func (p *Puzzle) SetDebug(debug bool) {
	p.debug = debug
}

func (p *Puzzle) logf(format string, args ...any) {
	if p.debug {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// SetNumThreads configures how many workers the path engine's DFS uses,
// validating the count through core.Params/core.Validate before it reaches
// the graph.
func (p *Puzzle) SetNumThreads(n int) error {
	params := core.Params{NumThreads: n}
	if err := core.Validate(params); err != nil {
		p.logf("qyra: invalid thread count %d: %v\n", n, err)
		return err
	}
	return p.graph.SetNumThreads(params.NumThreads)
}

// EnableParallelDFS configures the path engine to use one worker per
// logical CPU, mirroring the reference miner's hardware_concurrency() call.
func (p *Puzzle) EnableParallelDFS() error {
	return p.SetNumThreads(runtime.NumCPU())
}

// DumpMatrix writes the current graph's adjacency matrix in human-readable
// form to w. It is a diagnostic aid only, never called from Mine/Validate.
func (p *Puzzle) DumpMatrix(w io.Writer) error {
	return p.graph.DumpMatrix(w)
}

// DumpNodes writes the current path's node sequence to w. It is a
// diagnostic aid only, never called from Mine/Validate.
func (p *Puzzle) DumpNodes(w io.Writer) error {
	return p.path.DumpNodes(w)
}

// SetHeader stores the caller-supplied header component of the preimage.
func (p *Puzzle) SetHeader(vch []byte) {
	p.graph.SetHeader(vch)
}

// SetNonce stores the caller-supplied nonce component of the preimage.
func (p *Puzzle) SetNonce(vch []byte) {
	p.graph.SetNonce(vch)
}

// Mine derives a fresh graph from the current header and nonce, searches it
// for the longest path, and assembles the two into a Solution. It fails if
// the KEM, cipher, graph derivation, or path search produce anything the
// puzzle cannot later validate.
func (p *Puzzle) Mine() (Solution, error) {
	if err := p.graph.Generate(); err != nil {
		p.logf("qyra: mine: graph generation failed: %v\n", err)
		return nil, fmt.Errorf("qyra: mine: %w", err)
	}
	if p.graph.Size() == 0 {
		p.logf("qyra: mine: %v\n", core.ErrGraphDerivationFailure)
		return nil, fmt.Errorf("qyra: mine: %w", core.ErrGraphDerivationFailure)
	}

	view := p.graph.View()
	p.path.FindDFS(view, p.graph.NumThreads())
	if p.path.Size() == 0 {
		p.logf("qyra: mine: no path found in the derived graph\n")
		return nil, fmt.Errorf("qyra: mine: no path found in the derived graph")
	}
	if !p.path.IsValid(view) {
		p.logf("qyra: mine: %v\n", core.ErrPathMismatch)
		return nil, fmt.Errorf("qyra: mine: %w", core.ErrPathMismatch)
	}

	enc := p.graph.EncMessage()
	iv := p.graph.IV()
	ciphertext := p.graph.Ciphertext()
	hash := p.path.Hash()

	if len(enc) == 0 || len(iv) == 0 || len(ciphertext) == 0 {
		p.logf("qyra: mine: %v\n", core.ErrEmptyInput)
		return nil, fmt.Errorf("qyra: mine: %w", core.ErrEmptyInput)
	}

	s := bitstream.New()
	s.Write(enc)
	s.Write(iv)
	s.Write(ciphertext)
	s.Write(hash[:])

	solution := Solution(s.Data())
	if len(solution) != core.SolutionLen {
		p.logf("qyra: mine: %v\n", core.ErrInvalidSolutionSize)
		return nil, fmt.Errorf("qyra: mine: %w", core.ErrInvalidSolutionSize)
	}
	return solution, nil
}

// Validate checks that vch decodes to a solution consistent with the
// puzzle's current header, nonce, and secret key: the graph component must
// decrypt to header||nonce, and the path hash must match a fresh
// longest-path search over the re-derived graph.
func (p *Puzzle) Validate(vch []byte) error {
	if len(vch) < core.SolutionLen {
		p.logf("qyra: validate: %v\n", core.ErrInvalidSolutionSize)
		return fmt.Errorf("qyra: validate: %w", core.ErrInvalidSolutionSize)
	}

	s := bitstream.NewFromBytes(vch)
	graphData, err := s.Read(core.TotalLen)
	if err != nil {
		p.logf("qyra: validate: %v\n", err)
		return fmt.Errorf("qyra: validate: %w", err)
	}
	pathHash, err := s.Read(core.HashLen)
	if err != nil {
		p.logf("qyra: validate: %v\n", err)
		return fmt.Errorf("qyra: validate: %w", err)
	}

	if err := p.graph.Validate(graphData); err != nil {
		p.logf("qyra: validate: graph: %v\n", err)
		return fmt.Errorf("qyra: validate: graph: %w", err)
	}

	var hash [32]byte
	copy(hash[:], pathHash)
	if !p.path.Validate(hash, p.graph.View(), p.graph.NumThreads()) {
		p.logf("qyra: validate: %v\n", core.ErrPathMismatch)
		return fmt.Errorf("qyra: validate: %w", core.ErrPathMismatch)
	}
	return nil
}

// IsValid reports whether the puzzle's current path is consistent with its
// current graph, without re-running the DFS search.
func (p *Puzzle) IsValid() bool {
	return p.path.IsValid(p.graph.View())
}
