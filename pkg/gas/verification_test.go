package gas

import "testing"

// TestMaxOrOne_ZeroBecomesOne calls maxOrOne with zero, guarding the search's first division
// before any failure bound has been observed. Expects 1.
func TestMaxOrOne_ZeroBecomesOne(t *testing.T) {
	if got := maxOrOne(0); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

// TestMaxOrOne_PassesNonZeroThrough calls maxOrOne with a non-zero value. Expects it unchanged.
func TestMaxOrOne_PassesNonZeroThrough(t *testing.T) {
	if got := maxOrOne(42); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}
