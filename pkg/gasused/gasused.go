// Package gasused models the single-purpose "GetGasUsed" helper contract the verification-gas
// search installs to take its initial feasibility probe: one eth_call that itself performs a
// sub-call and reports whether it succeeded and how much gas it burned, without relying on a
// revert to carry the answer back.
package gasused

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AO-Metaplayer/gasestimator/pkg/evmprovider"
	"github.com/AO-Metaplayer/gasestimator/pkg/state"
)

// HelperAddress is the scratch address the helper contract is installed at for the duration of a
// single probe call. It carries no meaning beyond "somewhere unused"; a fresh random address is
// not required here because, unlike the call-gas proxy, nothing about this address is observable
// by the user operation being probed.
var HelperAddress = common.HexToAddress("0x000000000000000000000000000000006e75E6")

// DeployedBytecode is a placeholder for the real GetGasUsed.sol runtime bytecode (compiled
// separately; see pkg/proxy for the analogous note on the call-gas estimation proxy).
var DeployedBytecode = []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x34, 0x80, 0x15}

// Result is the decoded return value of one GetGasUsed probe call.
type Result struct {
	GasUsed *big.Int
	Success bool
	Data    []byte
}

var (
	getGasUsedMethod = abi.NewMethod(
		"getGasUsed", "getGasUsed", abi.Function, "", false, false,
		abi.Arguments{
			{Name: "target", Type: mustType("address")},
			{Name: "value", Type: mustType("uint256")},
			{Name: "data", Type: mustType("bytes")},
		},
		abi.Arguments{
			{Name: "gasUsed", Type: mustType("uint256")},
			{Name: "success", Type: mustType("bool")},
			{Name: "result", Type: mustType("bytes")},
		},
	)
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// Probe installs the helper at HelperAddress (merged with any caller-supplied overrides) and
// calls getGasUsed(target, 0, data), reporting how much gas the sub-call to target consumed and
// whether it succeeded.
func Probe(ctx context.Context, provider *evmprovider.Provider, target common.Address, data []byte, overrides state.Override) (*Result, error) {
	packedArgs, err := getGasUsedMethod.Inputs.Pack(target, big.NewInt(0), data)
	if err != nil {
		return nil, err
	}
	calldata := append(append([]byte{}, getGasUsedMethod.ID...), packedArgs...)

	withHelper := overrides.WithCode(HelperAddress, DeployedBytecode)
	msg := ethereum.CallMsg{To: &HelperAddress, Data: calldata}
	raw, err := provider.Call(ctx, msg, withHelper)
	if err != nil {
		return nil, err
	}
	values, err := getGasUsedMethod.Outputs.Unpack(raw)
	if err != nil {
		return nil, err
	}
	return &Result{
		GasUsed: values[0].(*big.Int),
		Success: values[1].(bool),
		Data:    values[2].([]byte),
	}, nil
}
