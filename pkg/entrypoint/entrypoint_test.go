package entrypoint

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AO-Metaplayer/gasestimator/pkg/userop"
)

func TestAddressFor(t *testing.T) {
	if got := AddressFor(userop.V06); got != V06Address {
		t.Errorf("AddressFor(V06) = %s, want %s", got, V06Address)
	}
	if got := AddressFor(userop.V07); got != V07Address {
		t.Errorf("AddressFor(V07) = %s, want %s", got, V07Address)
	}
}

func encodeExecutionResult(t *testing.T, r ExecutionResult) []byte {
	t.Helper()
	packed, err := executionResultArgs.Pack(r.PreOpGas, r.Paid, r.ValidAfter, r.ValidUntil, r.TargetSuccess, r.TargetResult)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	return append(append([]byte{}, executionResultSelector[:]...), packed...)
}

func encodeFailedOp(t *testing.T, opIndex int64, reason string) []byte {
	t.Helper()
	packed, err := failedOpArgs.Pack(big.NewInt(opIndex), reason)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	return append(append([]byte{}, failedOpSelector[:]...), packed...)
}

func TestDecodeSimulateHandleOpsRevert_Success(t *testing.T) {
	raw := encodeExecutionResult(t, ExecutionResult{
		PreOpGas: big.NewInt(10_000), Paid: big.NewInt(100_000),
		ValidAfter: 1, ValidUntil: 2, TargetSuccess: true, TargetResult: []byte{0xaa},
	})
	result, err := DecodeSimulateHandleOpsRevert(raw)
	if err != nil {
		t.Fatalf("DecodeSimulateHandleOpsRevert() error = %v", err)
	}
	if result.PreOpGas.Cmp(big.NewInt(10_000)) != 0 {
		t.Errorf("PreOpGas = %s, want 10000", result.PreOpGas)
	}
	if !result.TargetSuccess {
		t.Error("TargetSuccess = false, want true")
	}
}

func TestDecodeSimulateHandleOpsRevert_FailedOp(t *testing.T) {
	raw := encodeFailedOp(t, 0, "AA21 didn't pay prefund")
	_, err := DecodeSimulateHandleOpsRevert(raw)
	if err == nil {
		t.Fatal("DecodeSimulateHandleOpsRevert() error = nil, want a validation rejection")
	}
	if got := err.Error(); got != "AA21 didn't pay prefund" {
		t.Errorf("error = %q, want the decoded reason verbatim", got)
	}
}

func TestSimulateHandleOpCallData_BuildsNonEmptyCalldata(t *testing.T) {
	op := userop.NewV06(common.Address{}, big.NewInt(0), nil, nil,
		big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), nil, nil)
	calldata, err := SimulateHandleOpCallData(op, common.Address{}, nil)
	if err != nil {
		t.Fatalf("SimulateHandleOpCallData() error = %v", err)
	}
	if len(calldata) < 4 {
		t.Fatal("calldata too short to contain a selector")
	}
}
