package userop

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

// Fixtures below are taken verbatim from the on-chain EntryPoint v0.6 getUserOpHash() output at
// entry point 0x66a15edcc3b50a663e72f1457ffd49b9ae284ddc, chain ID 1337.

func TestV06Hash_Zeroed(t *testing.T) {
	op := NewV06(
		common.Address{},
		big.NewInt(0),
		nil, nil,
		big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0),
		nil, nil,
	)
	entryPoint := common.HexToAddress("0x66a15edcc3b50a663e72f1457ffd49b9ae284ddc")
	got := op.Hash(entryPoint, 1337)
	want := common.HexToHash("0xdca97c3b49558ab360659f6ead939773be8bf26631e61bb17045bb70dc983b2d")
	if got != want {
		t.Errorf("Hash() = %s, want %s", got, want)
	}
}

func TestV06Hash_Populated(t *testing.T) {
	op := NewV06(
		common.HexToAddress("0x1306b01bc3e4ad202612d3843387e94737673f53"),
		big.NewInt(8942),
		common.FromHex("0x6942069420694206942069420694206942069420"),
		common.FromHex("0x0000000000000000000000000000000000000000080085"),
		big.NewInt(10_000), big.NewInt(100_000), big.NewInt(100), big.NewInt(99_999), big.NewInt(9_999_999),
		common.FromHex("0x0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		common.FromHex("0xda0929f527cded8d0a1eaf2e8861d7f7e2d8160b7b13942f99dd367df4473a"),
	)
	entryPoint := common.HexToAddress("0x66a15edcc3b50a663e72f1457ffd49b9ae284ddc")
	got := op.Hash(entryPoint, 1337)
	want := common.HexToHash("0x484add9e4d8c3172d11b5feb6a3cc712280e176d278027cfa02ee396eb28afa1")
	if got != want {
		t.Errorf("Hash() = %s, want %s", got, want)
	}
}

func populatedV06() Operation {
	return NewV06(
		common.HexToAddress("0x1306b01bc3e4ad202612d3843387e94737673f53"),
		big.NewInt(8942),
		common.FromHex("0x6942069420694206942069420694206942069420"),
		common.FromHex("0x0000000000000000000000000000000000000000080085"),
		big.NewInt(10_000), big.NewInt(100_000), big.NewInt(100), big.NewInt(99_999), big.NewInt(9_999_999),
		common.FromHex("0x0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		common.FromHex("0xda0929f527cded8d0a1eaf2e8861d7f7e2d8160b7b13942f99dd367df4473a"),
	)
}

func TestV06ABIEncodedSize_MatchesPack(t *testing.T) {
	op := populatedV06()
	if got, want := op.ABIEncodedSize(), len(op.Pack()); got != want {
		t.Errorf("ABIEncodedSize() = %d, len(Pack()) = %d", got, want)
	}
}

func TestV06Paymaster_ExtractsLeadingAddress(t *testing.T) {
	op := populatedV06()
	addr, ok := op.Paymaster()
	if !ok {
		t.Fatal("Paymaster() ok = false, want true")
	}
	want := common.HexToAddress("0x0123456789abcdef0123456789abcdef01234567")
	if addr != want {
		t.Errorf("Paymaster() = %s, want %s", addr, want)
	}
}

func TestV06Factory_AbsentWhenInitCodeEmpty(t *testing.T) {
	op := NewV06(common.Address{}, big.NewInt(0), nil, nil,
		big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), nil, nil)
	if _, ok := op.Factory(); ok {
		t.Error("Factory() ok = true for empty initCode, want false")
	}
}

func TestOptionalGasV06_IntoFull_FillsUnsetGasWithCaps(t *testing.T) {
	opt := &OptionalGasV06{
		Sender_:  common.HexToAddress("0xabc"),
		Nonce_:   big.NewInt(1),
		InitCode_: nil,
		CallData_: []byte{0x01},
	}
	maxCallGas, maxVerificationGas := big.NewInt(1_000_000), big.NewInt(2_000_000)
	full := opt.IntoFull(maxCallGas, maxVerificationGas)

	if full.CallGasLimit().Cmp(maxCallGas) != 0 {
		t.Errorf("CallGasLimit() = %s, want %s", full.CallGasLimit(), maxCallGas)
	}
	if full.VerificationGasLimit().Cmp(maxVerificationGas) != 0 {
		t.Errorf("VerificationGasLimit() = %s, want %s", full.VerificationGasLimit(), maxVerificationGas)
	}
	if full.MaxFeePerGas().Sign() != 0 {
		t.Errorf("MaxFeePerGas() = %s, want 0", full.MaxFeePerGas())
	}
}

func TestOptionalGasV06_MaxFill_PreservesByteLengths(t *testing.T) {
	opt := &OptionalGasV06{
		InitCode_:         make([]byte, 20),
		CallData_:         make([]byte, 68),
		PaymasterAndData_: make([]byte, 52),
		Signature_:        make([]byte, 65),
	}
	full := opt.MaxFill(big.NewInt(1), big.NewInt(1))
	if len(full.InitCode()) != 20 || len(full.CallData()) != 68 ||
		len(full.PaymasterAndData()) != 52 || len(full.Signature()) != 65 {
		t.Error("MaxFill() changed a dummy field's length")
	}
	for _, b := range full.Signature() {
		if b != 0xff {
			t.Fatal("MaxFill() signature byte != 0xff")
		}
	}
}
