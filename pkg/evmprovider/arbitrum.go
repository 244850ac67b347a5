package evmprovider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mitchellh/mapstructure"
)

// ArbitrumNodeInterface is the fixed precompile address Arbitrum chains expose for
// otherwise-unavailable L1/L2 gas accounting queries.
// https://medium.com/offchainlabs/understanding-arbitrum-2-dimensional-fees-fd1d582596c9
var ArbitrumNodeInterface = common.BigToAddress(big.NewInt(0xC8))

var gasEstimateL1ComponentMethod = mustNewMethod(
	"gasEstimateL1Component",
	abi.Arguments{
		{Name: "to", Type: mustType("address")},
		{Name: "contractCreation", Type: mustType("bool")},
		{Name: "data", Type: mustType("bytes")},
	},
	abi.Arguments{
		{Name: "gasEstimateForL1", Type: mustType("uint64")},
		{Name: "baseFee", Type: mustType("uint256")},
		{Name: "l1BaseFeeEstimate", Type: mustType("uint256")},
	},
)

type gasEstimateL1ComponentOutput struct {
	GasEstimateForL1  uint64
	BaseFee           *big.Int
	L1BaseFeeEstimate *big.Int
}

// L1DataGasArbitrum returns the L1 calldata-gas component NodeInterface attributes to submitting
// handleOpsCalldata against entryPoint, per the Arbitrum two-dimensional fee model.
func (p *Provider) L1DataGasArbitrum(ctx context.Context, entryPoint common.Address, handleOpsCalldata []byte, isContractCreation bool) (uint64, error) {
	packedArgs, err := gasEstimateL1ComponentMethod.Inputs.Pack(entryPoint, isContractCreation, handleOpsCalldata)
	if err != nil {
		return 0, err
	}
	calldata := append(append([]byte{}, gasEstimateL1ComponentMethod.ID...), packedArgs...)

	req := map[string]any{
		"to":   ArbitrumNodeInterface,
		"data": hexutil.Encode(calldata),
	}
	var rawResult hexutil.Bytes
	if err := p.rpc.CallContext(ctx, &rawResult, "eth_call", req, "latest"); err != nil {
		return 0, err
	}

	values, err := gasEstimateL1ComponentMethod.Outputs.UnpackValues(rawResult)
	if err != nil {
		return 0, err
	}
	asMap := make(map[string]any, len(values))
	for i, arg := range gasEstimateL1ComponentMethod.Outputs {
		asMap[arg.Name] = values[i]
	}

	var out gasEstimateL1ComponentOutput
	if err := mapstructure.Decode(asMap, &out); err != nil {
		return 0, err
	}
	return out.GasEstimateForL1, nil
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

func mustNewMethod(name string, inputs, outputs abi.Arguments) abi.Method {
	return abi.NewMethod(name, name, abi.Function, "", false, false, inputs, outputs)
}
