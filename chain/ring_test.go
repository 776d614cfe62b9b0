package chain

import (
	"testing"

	"github.com/retrofx/slangchain/texture"
)

func TestHistoryRingAtAndAdvance(t *testing.T) {
	r := newHistoryRing([]texture.Handle{1, 2, 3})

	if got := r.current(); got != 1 {
		t.Fatalf("current = %v, want 1", got)
	}
	if got := r.at(0); got != 1 {
		t.Errorf("at(0) = %v, want 1", got)
	}
	if got := r.at(1); got != 3 {
		t.Errorf("at(1) = %v, want 3 (wraps backward)", got)
	}
	if got := r.at(2); got != 2 {
		t.Errorf("at(2) = %v, want 2", got)
	}

	next := r.advance()
	if next != 2 {
		t.Fatalf("advance returned %v, want 2", next)
	}
	if got := r.current(); got != 2 {
		t.Errorf("current after advance = %v, want 2", got)
	}
	if got := r.at(1); got != 1 {
		t.Errorf("at(1) after advance = %v, want 1", got)
	}
}
