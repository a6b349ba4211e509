// Package path implements the longest-path engine: a parallel depth-first
// search over the graph's functional adjacency matrix that finds the
// deepest node chain reachable from any starting node, then hashes that
// chain as the puzzle's proof of work.
package path

import (
	"fmt"
	"io"
	"sync"

	"github.com/marcofortina/qyra-go/bitstream"
	"github.com/marcofortina/qyra-go/graph"
	"github.com/marcofortina/qyra-go/qhash"
)

// Path holds the longest node chain found by the most recent FindDFS call.
type Path struct {
	nodes []uint16
}

// New returns an empty path.
func New() *Path {
	return &Path{}
}

// Nodes returns the path's node sequence.
func (p *Path) Nodes() []uint16 {
	return append([]uint16(nil), p.nodes...)
}

// Clear discards the current node sequence.
func (p *Path) Clear() {
	p.nodes = nil
}

// Size returns the number of nodes in the path.
func (p *Path) Size() int {
	return len(p.nodes)
}

// Hash returns the BLAKE3 digest of the path's nodes, each encoded as a
// little-endian uint16, matching the graph's byte-oriented hashing.
func (p *Path) Hash() [32]byte {
	s := bitstream.New()
	for _, n := range p.nodes {
		s.WriteUint16(n)
	}
	return qhash.Sum256(s.Data())
}

// IsValid checks that every consecutive pair of nodes in the path is a real
// edge in view's adjacency matrix.
func (p *Path) IsValid(view graph.View) bool {
	if len(p.nodes) == 0 {
		return false
	}
	for i := 0; i < len(p.nodes)-1; i++ {
		from, to := int(p.nodes[i]), int(p.nodes[i+1])
		if from >= view.NumNodes() || to >= view.NumNodes() {
			return false
		}
		if !hasEdge(view, from, to) {
			return false
		}
	}
	return true
}

func hasEdge(view graph.View, from, to int) bool {
	first, ok := view.FindFirst(from)
	return ok && first == to
}

// DumpNodes writes the path's node sequence, one index per line, standing
// in for the reference miner's SaveNodesToFile. It is a diagnostic aid for
// cmd/qyra-bench and cmd/qyra-keygen; it is opt-in and never called from
// FindDFS or Validate.
func (p *Path) DumpNodes(w io.Writer) error {
	for _, n := range p.nodes {
		if _, err := fmt.Fprintf(w, "%d\n", n); err != nil {
			return err
		}
	}
	return nil
}

// dfsState is the per-worker mutable state for one DFS traversal.
type dfsState struct {
	view    graph.View
	visited []bool
	current []uint16

	mu      *sync.Mutex
	longest *[]uint16
}

func (s *dfsState) walk(node int) {
	s.visited[node] = true
	s.current = append(s.current, uint16(node))

	neighbor, hasNeighbor := s.view.FindFirst(node)
	if hasNeighbor && !s.visited[neighbor] {
		s.walk(neighbor)
	}

	if !hasNeighbor {
		s.mu.Lock()
		if len(s.current) > len(*s.longest) {
			*s.longest = append([]uint16(nil), s.current...)
		}
		s.mu.Unlock()
	}

	s.current = s.current[:len(s.current)-1]
	s.visited[node] = false
}

// FindDFS runs the longest-path search over view using numThreads workers,
// each covering a contiguous, disjoint range of starting nodes. It stores
// and returns the longest node chain found by any worker; ties are broken
// by whichever worker's leaf write reaches the shared result first.
func FindDFS(view graph.View, numThreads int) []uint16 {
	if numThreads <= 0 {
		numThreads = 1
	}

	totalNodes := view.NumNodes()
	nodesPerThread := totalNodes / numThreads

	var mu sync.Mutex
	var longest []uint16
	var wg sync.WaitGroup

	for threadIndex := 0; threadIndex < numThreads; threadIndex++ {
		start := threadIndex * nodesPerThread
		end := start + nodesPerThread
		if threadIndex == numThreads-1 {
			end = totalNodes
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			visited := make([]bool, totalNodes)
			state := &dfsState{
				view:    view,
				visited: visited,
				mu:      &mu,
				longest: &longest,
			}

			for node := start; node < end; node++ {
				if view.IsEmpty(node) {
					continue
				}
				state.walk(node)
			}
		}(start, end)
	}

	wg.Wait()
	return longest
}

// FindDFS runs FindDFS over view and stores the result on p.
func (p *Path) FindDFS(view graph.View, numThreads int) []uint16 {
	p.Clear()
	p.nodes = FindDFS(view, numThreads)
	return p.nodes
}

// Validate re-runs the longest-path search over view and reports whether
// its hash matches hash, per core.ErrPathMismatch's semantics at the
// facade layer.
func (p *Path) Validate(hash [32]byte, view graph.View, numThreads int) bool {
	p.FindDFS(view, numThreads)
	return p.Hash() == hash
}
