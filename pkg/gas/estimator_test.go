package gas

import (
	"math/big"
	"testing"
)

// TestApplyBuffer_MatchesHappyPathScenario calls applyBuffer with the raw verification gas from
// the documented end-to-end happy-path scenario (30,000). Expects the buffered value (33,000).
func TestApplyBuffer_MatchesHappyPathScenario(t *testing.T) {
	got := applyBuffer(big.NewInt(30_000), VerificationGasBufferPercent)
	want := big.NewInt(33_000)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestClamp_CallGasFloorsAtMinCallGasLimit calls clamp with a raw call-gas search result below
// MinCallGasLimit. Expects it floored rather than passed through.
func TestClamp_CallGasFloorsAtMinCallGasLimit(t *testing.T) {
	got := clamp(big.NewInt(1_000), MinCallGasLimit, 10_000_000)
	if got.Cmp(new(big.Int).SetUint64(MinCallGasLimit)) != 0 {
		t.Fatalf("got %v, want %d", got, MinCallGasLimit)
	}
}

// TestClamp_CallGasPassesThroughWithinBounds calls clamp with a raw call-gas search result
// matching the documented happy-path scenario (10,000, above MinCallGasLimit). Expects it
// unchanged.
func TestClamp_CallGasPassesThroughWithinBounds(t *testing.T) {
	got := clamp(big.NewInt(10_000), MinCallGasLimit, 10_000_000)
	want := big.NewInt(10_000)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %v, want %v", got, want)
	}
}
