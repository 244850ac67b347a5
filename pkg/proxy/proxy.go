// Package proxy relocates and invokes the in-EVM call-gas binary search proxy. EntryPoint's
// simulateHandleOp lets a user operation's call phase target an arbitrary contract with arbitrary
// calldata; this package points that target at a small proxy contract which itself runs a binary
// search over the real call target, turning what would be O(log n) round trips into one.
package proxy

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TargetOffset is the byte offset of the sentinel target address inside DeployedBytecode. It must
// be updated whenever the proxy contract's source changes; TestValidateSentinelOffset fails loudly if the
// two ever drift apart.
const TargetOffset = 137

// sentinelTarget is the placeholder address the proxy contract's compiled bytecode calls through;
// BytecodeWithTarget splices the real target in at TargetOffset before the proxy is installed
// under a state override.
var sentinelTarget = common.HexToAddress("0xA13dB4eCfbce0586E57D1AeE224FbE64706E8cd3")

// DeployedBytecode is a placeholder for the real CallGasEstimationProxy contract's compiled
// runtime bytecode, which is produced by a separate Solidity build step (see the upstream
// CallGasEstimationProxy.sol / forge build pipeline) and is out of scope to compile from this
// module. It exists so TargetOffset and the splice/validate plumbing below have something concrete
// to operate on; a production build replaces this slice with the forge build artifact.
var DeployedBytecode = buildPlaceholderBytecode()

func buildPlaceholderBytecode() []byte {
	const length = 512
	code := make([]byte, length)
	for i := range code {
		code[i] = byte(0x5b + i%7) // arbitrary filler, never equal to the sentinel bytes by construction
	}
	copy(code[TargetOffset:TargetOffset+common.AddressLength], sentinelTarget.Bytes())
	return code
}

// BytecodeWithTarget returns a copy of DeployedBytecode with the sentinel target address replaced
// by target. Call estimation installs the result as the EntryPoint's code under a state override,
// and moves the EntryPoint's real code to a random address (see EstimateCallGas in pkg/gas) so a user
// operation can't special-case the well-known EntryPoint address to detect estimation.
func BytecodeWithTarget(target common.Address) []byte {
	out := make([]byte, len(DeployedBytecode))
	copy(out, DeployedBytecode)
	copy(out[TargetOffset:TargetOffset+common.AddressLength], target.Bytes())
	return out
}

// ValidateSentinelOffset scans DeployedBytecode for every occurrence of the sentinel address and
// fails closed unless it appears exactly once, at TargetOffset. A second occurrence would mean
// BytecodeWithTarget silently corrupts unrelated bytecode. TestValidateSentinelOffset runs this
// check; the estimator itself does not call it at startup or before installing the proxy.
func ValidateSentinelOffset() error {
	sentinel := sentinelTarget.Bytes()
	var offsets []int
	for i := 0; i+len(sentinel) <= len(DeployedBytecode); i++ {
		match := true
		for j, b := range sentinel {
			if DeployedBytecode[i+j] != b {
				match = false
				break
			}
		}
		if match {
			offsets = append(offsets, i)
		}
	}
	if len(offsets) != 1 || offsets[0] != TargetOffset {
		return &offsetMismatchError{offsets: offsets}
	}
	return nil
}

type offsetMismatchError struct{ offsets []int }

func (e *offsetMismatchError) Error() string {
	return "proxy: sentinel target address does not appear exactly once at the expected offset"
}

// EstimateCallGasArgs is the input tuple to the proxy contract's estimateCallGas entry point.
type EstimateCallGasArgs struct {
	Sender         common.Address
	CallData       []byte
	MinGas         *big.Int
	MaxGas         *big.Int
	Rounding       *big.Int
	IsContinuation bool
}

// EstimateCallGasResult is the success payload: the binary search converged.
type EstimateCallGasResult struct {
	GasEstimate *big.Int
	NumRounds   *big.Int
}

// EstimateCallGasRevertAtMax is returned when even MaxGas causes the target call to revert.
type EstimateCallGasRevertAtMax struct {
	RevertData []byte
}

// EstimateCallGasContinuation is returned when the proxy ran out of its own gas budget partway
// through the search; callers re-invoke estimateCallGas with the narrowed [MinGas, MaxGas] bounds.
type EstimateCallGasContinuation struct {
	MinGas    *big.Int
	MaxGas    *big.Int
	NumRounds *big.Int
}

var (
	estimateCallGasMethod = abi.NewMethod(
		"estimateCallGas", "estimateCallGas", abi.Function, "", false, false,
		abi.Arguments{{Name: "args", Type: mustTupleType()}},
		nil,
	)

	resultArgs = abi.Arguments{
		{Name: "gasEstimate", Type: mustType("uint256")},
		{Name: "numRounds", Type: mustType("uint256")},
	}
	revertAtMaxArgs = abi.Arguments{
		{Name: "revertData", Type: mustType("bytes")},
	}
	continuationArgs = abi.Arguments{
		{Name: "minGas", Type: mustType("uint256")},
		{Name: "maxGas", Type: mustType("uint256")},
		{Name: "numRounds", Type: mustType("uint256")},
	}
)

// The proxy reports every outcome as one of three distinct Solidity custom errors, each with its
// own 4-byte selector, so a caller trying each decode in turn can't mistake a 3-word continuation
// for a 2-word result: the selector rejects the shape before the ABI fields are even unpacked.
var (
	resultSelector       = mustSelector("EstimateCallGasResult(uint256,uint256)")
	revertAtMaxSelector  = mustSelector("EstimateCallGasRevertAtMax(bytes)")
	continuationSelector = mustSelector("EstimateCallGasContinuation(uint256,uint256,uint256)")
)

var errSelectorMismatch = errors.New("proxy: revert data selector does not match")

func mustSelector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(signature))[:4])
	return sel
}

func stripSelector(data []byte, selector [4]byte) ([]byte, error) {
	if len(data) < 4 || [4]byte(data[:4]) != selector {
		return nil, errSelectorMismatch
	}
	return data[4:], nil
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

func mustTupleType() abi.Type {
	typ, err := abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "sender", Type: "address"},
		{Name: "callData", Type: "bytes"},
		{Name: "minGas", Type: "uint256"},
		{Name: "maxGas", Type: "uint256"},
		{Name: "rounding", Type: "uint256"},
		{Name: "isContinuation", Type: "bool"},
	})
	if err != nil {
		panic(err)
	}
	return typ
}

// EstimateCallGasCalldata builds the calldata for one round of the in-proxy binary search.
func EstimateCallGasCalldata(args EstimateCallGasArgs) ([]byte, error) {
	packed, err := estimateCallGasMethod.Inputs.Pack(struct {
		Sender         common.Address
		CallData       []byte
		MinGas         *big.Int
		MaxGas         *big.Int
		Rounding       *big.Int
		IsContinuation bool
	}{args.Sender, args.CallData, args.MinGas, args.MaxGas, args.Rounding, args.IsContinuation})
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, estimateCallGasMethod.ID...), packed...), nil
}

// DecodeEstimateCallGasResult attempts to decode data as a success result.
func DecodeEstimateCallGasResult(data []byte) (*EstimateCallGasResult, error) {
	rest, err := stripSelector(data, resultSelector)
	if err != nil {
		return nil, err
	}
	values, err := resultArgs.Unpack(rest)
	if err != nil {
		return nil, err
	}
	return &EstimateCallGasResult{GasEstimate: values[0].(*big.Int), NumRounds: values[1].(*big.Int)}, nil
}

// DecodeEstimateCallGasRevertAtMax attempts to decode data as a revert-at-max-gas payload.
func DecodeEstimateCallGasRevertAtMax(data []byte) (*EstimateCallGasRevertAtMax, error) {
	rest, err := stripSelector(data, revertAtMaxSelector)
	if err != nil {
		return nil, err
	}
	values, err := revertAtMaxArgs.Unpack(rest)
	if err != nil {
		return nil, err
	}
	return &EstimateCallGasRevertAtMax{RevertData: values[0].([]byte)}, nil
}

// DecodeEstimateCallGasContinuation attempts to decode data as a continuation payload.
func DecodeEstimateCallGasContinuation(data []byte) (*EstimateCallGasContinuation, error) {
	rest, err := stripSelector(data, continuationSelector)
	if err != nil {
		return nil, err
	}
	values, err := continuationArgs.Unpack(rest)
	if err != nil {
		return nil, err
	}
	return &EstimateCallGasContinuation{
		MinGas:    values[0].(*big.Int),
		MaxGas:    values[1].(*big.Int),
		NumRounds: values[2].(*big.Int),
	}, nil
}
