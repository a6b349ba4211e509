package path

import (
	"testing"

	"github.com/marcofortina/qyra-go/graph"
)

// chainGraph builds a graph with a single deterministic chain
// 0 -> 1 -> 2 -> ... -> n-1 (a leaf), so the longest path is known exactly.
func chainGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i := 0; i < n-1; i++ {
		if err := g.AddEdge(uint16(i), uint16(i+1)); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}
	return g
}

func TestFindDFSFindsKnownChain(t *testing.T) {
	g := chainGraph(t, 10)
	nodes := FindDFS(g.View(), 1)
	if len(nodes) != 10 {
		t.Fatalf("path length = %d, want 10", len(nodes))
	}
	for i, n := range nodes {
		if int(n) != i {
			t.Fatalf("nodes[%d] = %d, want %d", i, n, i)
		}
	}
}

func TestFindDFSParallelMatchesSingleThreaded(t *testing.T) {
	g := chainGraph(t, 40)
	single := FindDFS(g.View(), 1)
	parallel := FindDFS(g.View(), 4)
	if len(single) != len(parallel) {
		t.Fatalf("single-threaded length %d != parallel length %d", len(single), len(parallel))
	}
}

func TestPathIsValid(t *testing.T) {
	g := chainGraph(t, 5)
	p := New()
	p.FindDFS(g.View(), 1)
	if !p.IsValid(g.View()) {
		t.Fatal("expected the found path to be valid against its own graph")
	}
}

func TestPathIsValidRejectsBrokenChain(t *testing.T) {
	g := chainGraph(t, 5)
	p := New()
	p.FindDFS(g.View(), 1)
	nodes := p.Nodes()
	nodes[1] = 999 // break the chain
	p.nodes = nodes
	if p.IsValid(g.View()) {
		t.Fatal("expected an invalid path to be rejected")
	}
}

func TestPathIsValidRejectsEmpty(t *testing.T) {
	p := New()
	g := chainGraph(t, 3)
	if p.IsValid(g.View()) {
		t.Fatal("expected an empty path to be invalid")
	}
}

func TestHashDeterministicForSamePath(t *testing.T) {
	g := chainGraph(t, 6)
	p1 := New()
	p1.FindDFS(g.View(), 1)
	p2 := New()
	p2.FindDFS(g.View(), 1)
	if p1.Hash() != p2.Hash() {
		t.Fatal("expected identical paths to hash identically")
	}
}

func TestValidateAcceptsMatchingHash(t *testing.T) {
	g := chainGraph(t, 6)
	p := New()
	p.FindDFS(g.View(), 1)
	hash := p.Hash()

	p2 := New()
	if !p2.Validate(hash, g.View(), 1) {
		t.Fatal("expected Validate to accept a re-derived matching path")
	}
}

func TestValidateRejectsWrongHash(t *testing.T) {
	g := chainGraph(t, 6)
	p := New()
	var wrongHash [32]byte
	if p.Validate(wrongHash, g.View(), 1) {
		t.Fatal("expected Validate to reject a mismatched hash")
	}
}

func TestFindDFSHandlesCycle(t *testing.T) {
	g := graph.New()
	if err := g.AddEdge(0, 1); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	if err := g.AddEdge(1, 0); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	nodes := FindDFS(g.View(), 1)
	if len(nodes) != 0 {
		t.Fatalf("a pure 2-cycle has no leaf, expected an empty longest path, got %v", nodes)
	}
}
