// Package entrypoint models the handful of EntryPoint ABI calls the estimator depends on:
// building simulateHandleOp calldata and decoding the ExecutionResult/FailedOp it always reverts
// with. It never sends a real transaction.
package entrypoint

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/AO-Metaplayer/gasestimator/pkg/evmprovider"
	"github.com/AO-Metaplayer/gasestimator/pkg/rpcerr"
	"github.com/AO-Metaplayer/gasestimator/pkg/state"
	"github.com/AO-Metaplayer/gasestimator/pkg/userop"
)

// V06Address and V07Address are the canonical, chain-independent deployment addresses published
// by the EntryPoint releases this estimator targets.
var (
	V06Address = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	V07Address = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")
)

// AddressFor returns the canonical EntryPoint address for the given UserOperation version.
func AddressFor(v userop.Version) common.Address {
	if v == userop.V07 {
		return V07Address
	}
	return V06Address
}

// ExecutionResult is the revert payload simulateHandleOp always produces on a successful
// validation pass: a report of gas used and the call phase's outcome, never an actual state
// change.
type ExecutionResult struct {
	PreOpGas      *big.Int
	Paid          *big.Int
	ValidAfter    uint64
	ValidUntil    uint64
	TargetSuccess bool
	TargetResult  []byte
}

// FailedOp is the revert payload produced when validation itself fails.
type FailedOp struct {
	OpIndex *big.Int
	Reason  string
}

var (
	tupleV06, _ = abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "sender", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "initCode", Type: "bytes"},
		{Name: "callData", Type: "bytes"},
		{Name: "callGasLimit", Type: "uint256"},
		{Name: "verificationGasLimit", Type: "uint256"},
		{Name: "preVerificationGas", Type: "uint256"},
		{Name: "maxFeePerGas", Type: "uint256"},
		{Name: "maxPriorityFeePerGas", Type: "uint256"},
		{Name: "paymasterAndData", Type: "bytes"},
		{Name: "signature", Type: "bytes"},
	})

	simulateHandleOpMethod = abi.NewMethod(
		"simulateHandleOp", "simulateHandleOp", abi.Function, "", false, false,
		abi.Arguments{
			{Name: "op", Type: tupleV06},
			{Name: "target", Type: mustType("address")},
			{Name: "targetCallData", Type: mustType("bytes")},
		},
		nil,
	)

	executionResultArgs = abi.Arguments{
		{Name: "preOpGas", Type: mustType("uint256")},
		{Name: "paid", Type: mustType("uint256")},
		{Name: "validAfter", Type: mustType("uint48")},
		{Name: "validUntil", Type: mustType("uint48")},
		{Name: "targetSuccess", Type: mustType("bool")},
		{Name: "targetResult", Type: mustType("bytes")},
	}
	executionResultSelector = selectorOf("ExecutionResult(uint256,uint256,uint48,uint48,bool,bytes)")

	failedOpArgs = abi.Arguments{
		{Name: "opIndex", Type: mustType("uint256")},
		{Name: "reason", Type: mustType("string")},
	}
	failedOpSelector = selectorOf("FailedOp(uint256,string)")
)

// selectorOf returns the leading 4 bytes of keccak256(signature), the same derivation Solidity
// uses for both function and custom-error selectors.
func selectorOf(signature string) [4]byte {
	hash := crypto.Keccak256([]byte(signature))
	var sel [4]byte
	copy(sel[:], hash[:4])
	return sel
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// SimulateHandleOpCallData builds the calldata for a simulateHandleOp(op, target, targetCallData)
// call. target/targetCallData let the call-gas estimation proxy (pkg/proxy) run inside the same
// validation+call simulation EntryPoint already performs.
func SimulateHandleOpCallData(op userop.Operation, target common.Address, targetCallData []byte) ([]byte, error) {
	packed, err := simulateHandleOpMethod.Inputs.Pack(v06TupleValue(op), target, targetCallData)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, simulateHandleOpMethod.ID...), packed...), nil
}

// v06TupleValue adapts any userop.Operation (v0.6 or v0.7) to the tuple shape simulateHandleOp
// expects. EntryPoint v0.7's own simulateHandleOp ABI differs (packed gas words); callers targeting
// v0.7 still simulate against the v0.6 tuple shape, which is what the v0.6 EntryPoint accepts.
func v06TupleValue(op userop.Operation) any {
	return struct {
		Sender               common.Address
		Nonce                *big.Int
		InitCode             []byte
		CallData             []byte
		CallGasLimit         *big.Int
		VerificationGasLimit *big.Int
		PreVerificationGas   *big.Int
		MaxFeePerGas         *big.Int
		MaxPriorityFeePerGas *big.Int
		PaymasterAndData     []byte
		Signature            []byte
	}{
		op.Sender(), op.Nonce(), op.InitCode(), op.CallData(),
		op.CallGasLimit(), op.VerificationGasLimit(), op.PreVerificationGas(),
		op.MaxFeePerGas(), op.MaxPriorityFeePerGas(),
		op.PaymasterAndData(), op.Signature(),
	}
}

// DecodeExecutionResult decodes a raw ExecutionResult revert payload (the four-byte selector plus
// its ABI-encoded fields).
func DecodeExecutionResult(revertData []byte) (*ExecutionResult, error) {
	if !hasSelector(revertData, executionResultSelector) {
		return nil, rpcerr.Internalf("revert data is not an ExecutionResult")
	}
	values, err := executionResultArgs.Unpack(revertData[4:])
	if err != nil {
		return nil, err
	}
	return &ExecutionResult{
		PreOpGas:      values[0].(*big.Int),
		Paid:          values[1].(*big.Int),
		ValidAfter:    values[2].(uint64),
		ValidUntil:    values[3].(uint64),
		TargetSuccess: values[4].(bool),
		TargetResult:  values[5].([]byte),
	}, nil
}

// DecodeFailedOp decodes a raw FailedOp revert payload.
func DecodeFailedOp(revertData []byte) (*FailedOp, error) {
	if len(revertData) < 4 {
		return nil, rpcerr.Internalf("revert data too short to contain a selector")
	}
	values, err := failedOpArgs.Unpack(revertData[4:])
	if err != nil {
		return nil, err
	}
	return &FailedOp{OpIndex: values[0].(*big.Int), Reason: values[1].(string)}, nil
}

// hasSelector reports whether revertData begins with the given 4-byte selector.
func hasSelector(revertData []byte, selector [4]byte) bool {
	return len(revertData) >= 4 && [4]byte(revertData[:4]) == selector
}

// DecodeSimulateHandleOpsRevert classifies a simulateHandleOp revert: success (an ExecutionResult)
// or a validation-phase rejection (a FailedOp, turned into an *rpcerr.Error). Any other shape is
// reported as an internal error: simulateHandleOp must always revert with one of these two.
func DecodeSimulateHandleOpsRevert(revertData []byte) (*ExecutionResult, error) {
	if hasSelector(revertData, failedOpSelector) {
		fo, err := DecodeFailedOp(revertData)
		if err != nil {
			return nil, err
		}
		return nil, rpcerr.RevertInValidation(fo.Reason)
	}
	result, err := DecodeExecutionResult(revertData)
	if err != nil {
		return nil, rpcerr.Internalf("simulateHandleOp reverted with neither ExecutionResult nor FailedOp: %v", err)
	}
	return result, nil
}

// Client ties an EVM provider to one EntryPoint address and runs the always-reverting
// simulateHandleOp call with caller-supplied state overrides layered on top.
type Client struct {
	provider *evmprovider.Provider
	address  common.Address
}

// New builds a Client for a specific EntryPoint deployment.
func New(provider *evmprovider.Provider, address common.Address) *Client {
	return &Client{provider: provider, address: address}
}

func (c *Client) Address() common.Address { return c.address }

// SimulateHandleOp calls simulateHandleOp(op, target, targetCallData) with overrides layered on
// top of whatever state the node already has, and classifies the always-present revert.
func (c *Client) SimulateHandleOp(
	ctx context.Context,
	op userop.Operation,
	target common.Address,
	targetCallData []byte,
	overrides state.Override,
	gasLimit uint64,
) (*ExecutionResult, error) {
	calldata, err := SimulateHandleOpCallData(op, target, targetCallData)
	if err != nil {
		return nil, err
	}
	msg := ethereum.CallMsg{To: &c.address, Data: calldata, Gas: gasLimit}
	_, callErr := c.provider.Call(ctx, msg, overrides)
	if callErr == nil {
		return nil, rpcerr.Internalf("simulateHandleOp succeeded, but should always revert")
	}
	revertData, ok := RevertData(callErr)
	if !ok {
		return nil, rpcerr.Wrap(callErr)
	}
	return DecodeSimulateHandleOpsRevert(revertData)
}
