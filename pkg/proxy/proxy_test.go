package proxy

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestValidateSentinelOffset(t *testing.T) {
	if err := ValidateSentinelOffset(); err != nil {
		t.Fatalf("ValidateSentinelOffset() = %v, want nil", err)
	}
}

func TestBytecodeWithTarget_SplicesExactlyAtOffset(t *testing.T) {
	target := common.HexToAddress("0x1111111111111111111111111111111111111111")
	relocated := BytecodeWithTarget(target)

	if len(relocated) != len(DeployedBytecode) {
		t.Fatalf("len(relocated) = %d, want %d", len(relocated), len(DeployedBytecode))
	}
	got := common.BytesToAddress(relocated[TargetOffset : TargetOffset+common.AddressLength])
	if got != target {
		t.Errorf("spliced address = %s, want %s", got, target)
	}
	// Everything outside the spliced window must be untouched.
	for i := range relocated {
		if i >= TargetOffset && i < TargetOffset+common.AddressLength {
			continue
		}
		if relocated[i] != DeployedBytecode[i] {
			t.Fatalf("byte %d changed outside the splice window", i)
		}
	}
}

func TestEstimateCallGasCalldata_Decodable(t *testing.T) {
	args := EstimateCallGasArgs{
		Sender:         common.HexToAddress("0xabc"),
		CallData:       []byte{0x01, 0x02, 0x03},
		MinGas:         big.NewInt(0),
		MaxGas:         big.NewInt(1_000_000),
		Rounding:       big.NewInt(4096),
		IsContinuation: false,
	}
	calldata, err := EstimateCallGasCalldata(args)
	if err != nil {
		t.Fatalf("EstimateCallGasCalldata() error = %v", err)
	}
	if len(calldata) < 4 {
		t.Fatal("calldata too short to contain a selector")
	}
}

func withSelector(selector [4]byte, body []byte) []byte {
	return append(append([]byte{}, selector[:]...), body...)
}

func TestDecodeEstimateCallGasResult(t *testing.T) {
	packed, err := resultArgs.Pack(big.NewInt(55_000), big.NewInt(12))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	result, err := DecodeEstimateCallGasResult(withSelector(resultSelector, packed))
	if err != nil {
		t.Fatalf("DecodeEstimateCallGasResult() error = %v", err)
	}
	if result.GasEstimate.Cmp(big.NewInt(55_000)) != 0 {
		t.Errorf("GasEstimate = %s, want 55000", result.GasEstimate)
	}
	if result.NumRounds.Cmp(big.NewInt(12)) != 0 {
		t.Errorf("NumRounds = %s, want 12", result.NumRounds)
	}
}

func TestDecodeEstimateCallGasContinuation(t *testing.T) {
	packed, err := continuationArgs.Pack(big.NewInt(1000), big.NewInt(2000), big.NewInt(3))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	cont, err := DecodeEstimateCallGasContinuation(withSelector(continuationSelector, packed))
	if err != nil {
		t.Fatalf("DecodeEstimateCallGasContinuation() error = %v", err)
	}
	if cont.MinGas.Cmp(big.NewInt(1000)) != 0 || cont.MaxGas.Cmp(big.NewInt(2000)) != 0 {
		t.Errorf("MinGas/MaxGas = %s/%s, want 1000/2000", cont.MinGas, cont.MaxGas)
	}
}

// TestDecodeEstimateCallGasResult_RejectsContinuationShape calls DecodeEstimateCallGasResult on a
// continuation payload (three words, not two). Expects an error: a caller trying decode functions
// in sequence must be able to tell the shapes apart without an accompanying success flag to gate
// on, and a bare word-count difference isn't enough since go-ethereum's ABI decoder doesn't reject
// a static-typed Unpack call just because trailing words are left over.
func TestDecodeEstimateCallGasResult_RejectsContinuationShape(t *testing.T) {
	packed, err := continuationArgs.Pack(big.NewInt(1000), big.NewInt(2000), big.NewInt(3))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if _, err := DecodeEstimateCallGasResult(withSelector(continuationSelector, packed)); err == nil {
		t.Fatal("DecodeEstimateCallGasResult() error = nil, want non-nil for a continuation payload")
	}
}

// TestDecodeEstimateCallGasContinuation_RejectsResultShape calls DecodeEstimateCallGasContinuation
// on a converged-result payload (two words, not three). Expects an error, confirming the reverse
// direction of the same shape ambiguity the selector check resolves.
func TestDecodeEstimateCallGasContinuation_RejectsResultShape(t *testing.T) {
	packed, err := resultArgs.Pack(big.NewInt(55_000), big.NewInt(12))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if _, err := DecodeEstimateCallGasContinuation(withSelector(resultSelector, packed)); err == nil {
		t.Fatal("DecodeEstimateCallGasContinuation() error = nil, want non-nil for a result payload")
	}
}

func TestDecodeEstimateCallGasRevertAtMax(t *testing.T) {
	packed, err := revertAtMaxArgs.Pack([]byte("execution reverted: insufficient balance"))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	revert, err := DecodeEstimateCallGasRevertAtMax(withSelector(revertAtMaxSelector, packed))
	if err != nil {
		t.Fatalf("DecodeEstimateCallGasRevertAtMax() error = %v", err)
	}
	if string(revert.RevertData) != "execution reverted: insufficient balance" {
		t.Errorf("RevertData = %q", revert.RevertData)
	}
}
