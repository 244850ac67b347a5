package gas

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AO-Metaplayer/gasestimator/pkg/userop"
)

func maxFilledV06(t *testing.T) userop.Operation {
	t.Helper()
	og := &userop.OptionalGasV06{}
	return og.MaxFill(big.NewInt(10_000_000), big.NewInt(10_000_000))
}

// TestStaticGas_NoFactory_OmitsDeployOverhead calls staticGas on an operation with empty initCode.
// Expects the result to exclude PerUserOpDeployOverheadGas. The 21-byte initCode of the factory
// operation also adds its own calldata cost: one extra content word (31 zero bytes, one non-zero)
// and one length byte turned non-zero, i.e. 30*4 + 2*16 = 152 calldata gas plus 4 per-word gas.
func TestStaticGas_NoFactory_OmitsDeployOverhead(t *testing.T) {
	cfg := DefaultMainnetChainConfig(1)
	op := maxFilledV06(t)

	withFactory := &userop.OptionalGasV06{InitCode_: append(make([]byte, 20), 0x01)}
	withFactoryOp := withFactory.MaxFill(big.NewInt(10_000_000), big.NewInt(10_000_000))

	without := staticGas(op, cfg)
	with := staticGas(withFactoryOp, cfg)

	diff := new(big.Int).Sub(with, without)
	wantDiff := cfg.PerUserOpDeployOverheadGas + 156
	if diff.Cmp(new(big.Int).SetUint64(wantDiff)) != 0 {
		t.Fatalf("got deploy overhead delta %v, want %d", diff, wantDiff)
	}
}

// TestStaticGas_IncludesIntrinsicAndV06Overhead calls staticGas on the smallest possible operation.
// Expects the floor to be at least TransactionIntrinsicGas + PerUserOpV06Gas.
func TestStaticGas_IncludesIntrinsicAndV06Overhead(t *testing.T) {
	cfg := DefaultMainnetChainConfig(1)
	og := &userop.OptionalGasV06{}
	op := og.MaxFill(big.NewInt(0), big.NewInt(0))

	got := staticGas(op, cfg)
	floor := cfg.TransactionIntrinsicGas + cfg.PerUserOpV06Gas
	if got.Cmp(new(big.Int).SetUint64(floor)) < 0 {
		t.Fatalf("got %v, want at least %d", got, floor)
	}
}

// TestStaticGas_MatchesHappyPathScenario calls staticGas on a max-filled operation whose
// non-zero/zero calldata-byte mix reproduces the documented end-to-end happy-path pre-verification
// gas value on mainnet (no L1 surcharge, no factory).
func TestStaticGas_MatchesHappyPathScenario(t *testing.T) {
	cfg := DefaultMainnetChainConfig(1)
	opt := &userop.OptionalGasV06{
		Sender_:           common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Nonce_:            big.NewInt(258),
		PaymasterAndData_: make([]byte, 32),
		Signature_:        make([]byte, 32),
	}
	op := opt.MaxFill(big.NewInt(10_000_000), big.NewInt(10_000_000))

	got := staticGas(op, cfg)
	want := big.NewInt(43_656)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestApplyBuffer_AddsPercentAndRoundsDown calls applyBuffer with a value that doesn't divide evenly.
// Expects the 10% buffer rounded down to the nearest integer.
func TestApplyBuffer_AddsPercentAndRoundsDown(t *testing.T) {
	got := applyBuffer(big.NewInt(999), 10)
	// 999 * 110 / 100 = 1098.9 -> 1098
	want := big.NewInt(1098)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestClamp_ClampsToBounds calls clamp with values above, below, and within [min, max].
// Expects each to settle at the nearest bound or pass through unchanged.
func TestClamp_ClampsToBounds(t *testing.T) {
	cases := []struct {
		v, min, max, want uint64
	}{
		{v: 5, min: 10, max: 100, want: 10},
		{v: 500, min: 10, max: 100, want: 100},
		{v: 50, min: 10, max: 100, want: 50},
	}
	for _, c := range cases {
		got := clamp(new(big.Int).SetUint64(c.v), c.min, c.max)
		if got.Cmp(new(big.Int).SetUint64(c.want)) != 0 {
			t.Fatalf("clamp(%d, %d, %d) = %v, want %d", c.v, c.min, c.max, got, c.want)
		}
	}
}
