package graph

import (
	"testing"

	"github.com/marcofortina/qyra-go/core"
	"github.com/marcofortina/qyra-go/kem"
)

func newInitializedGraph(t *testing.T) (*Graph, *kem.KeyPair) {
	t.Helper()
	kp, err := kem.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	g := New()
	if err := g.Initialize(kp.PublicKey, kp.SecretKey); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	g.SetHeader([]byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789ab"))
	g.SetNonce([]byte("0123456789abcdef0123456789abcdef"))
	return g, kp
}

func TestAddEdgeFirstWriteWins(t *testing.T) {
	g := New()
	if err := g.AddEdge(1, 2); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	if err := g.AddEdge(1, 3); err != nil {
		t.Fatalf("second AddEdge on the same source should succeed as a no-op: %v", err)
	}
	view := g.View()
	to, ok := view.FindFirst(1)
	if !ok || to != 2 {
		t.Fatalf("node 1's edge = (%d, %v), want (2, true) since the first write wins", to, ok)
	}
}

func TestAddEdgeRejectsOutOfRange(t *testing.T) {
	g := New()
	if err := g.AddEdge(core.MaxNodes, 0); err != core.ErrNodeOutOfRange {
		t.Fatalf("expected ErrNodeOutOfRange for from, got %v", err)
	}
	if err := g.AddEdge(0, core.MaxNodes); err != core.ErrNodeOutOfRange {
		t.Fatalf("expected ErrNodeOutOfRange for to, got %v", err)
	}
}

func TestGenerateThenValidateRoundTrip(t *testing.T) {
	g, _ := newInitializedGraph(t)
	if err := g.Generate(); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	solution := append(append([]byte(nil), g.EncMessage()...), g.IV()...)
	solution = append(solution, g.Ciphertext()...)
	if len(solution) != core.TotalLen {
		t.Fatalf("solution length = %d, want %d", len(solution), core.TotalLen)
	}

	generatedHash := g.Hash()

	g2, _ := newInitializedGraphFromExisting(t, g)
	if err := g2.Validate(solution); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if g2.Hash() != generatedHash {
		t.Fatal("validated graph's hash does not match the generated graph's hash")
	}
}

// newInitializedGraphFromExisting builds a second Graph sharing g's keys,
// header, and nonce, simulating a validator that received the same puzzle
// parameters as the miner.
func newInitializedGraphFromExisting(t *testing.T, g *Graph) (*Graph, *kem.KeyPair) {
	t.Helper()
	g2 := New()
	if err := g2.Initialize(g.publicKey, g.secretKey); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	g2.SetHeader(g.header)
	g2.SetNonce(g.nonce)
	return g2, nil
}

func TestValidateRejectsWrongSize(t *testing.T) {
	g, _ := newInitializedGraph(t)
	if err := g.Validate(make([]byte, core.TotalLen-1)); err != core.ErrInvalidSolutionSize {
		t.Fatalf("expected ErrInvalidSolutionSize, got %v", err)
	}
}

func TestValidateRejectsTamperedSolution(t *testing.T) {
	g, _ := newInitializedGraph(t)
	if err := g.Generate(); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	solution := append(append([]byte(nil), g.EncMessage()...), g.IV()...)
	solution = append(solution, g.Ciphertext()...)
	solution[0] ^= 0xFF

	g2, _ := newInitializedGraphFromExisting(t, g)
	if err := g2.Validate(solution); err == nil {
		t.Fatal("expected an error validating a tampered solution")
	}
}

func TestHashDeterministic(t *testing.T) {
	g, _ := newInitializedGraph(t)
	if err := g.Generate(); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	h1 := g.Hash()
	h2 := g.Hash()
	if h1 != h2 {
		t.Fatal("Hash is not deterministic for an unchanged graph")
	}
}
