package core

import "testing"

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.NumThreads != 1 {
		t.Fatalf("DefaultParams().NumThreads = %d, want 1", p.NumThreads)
	}
	if err := Validate(p); err != nil {
		t.Fatalf("Validate(DefaultParams()) = %v, want nil", err)
	}
}

func TestValidateRejectsNonPositiveThreads(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		if err := Validate(Params{NumThreads: n}); err == nil {
			t.Errorf("Validate(Params{NumThreads: %d}) = nil, want error", n)
		}
	}
}

func TestValidateRejectsThreadsBeyondMaxNodes(t *testing.T) {
	if err := Validate(Params{NumThreads: MaxNodes + 1}); err == nil {
		t.Fatal("Validate(NumThreads > MaxNodes) = nil, want error")
	}
}

func TestValidateAcceptsBoundaryThreadCounts(t *testing.T) {
	for _, n := range []int{1, MaxNodes} {
		if err := Validate(Params{NumThreads: n}); err != nil {
			t.Errorf("Validate(Params{NumThreads: %d}) = %v, want nil", n, err)
		}
	}
}
