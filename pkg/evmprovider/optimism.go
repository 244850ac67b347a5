package evmprovider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mitchellh/mapstructure"
)

// OptimismGasPriceOracle is the predeploy address the OP Stack uses for L1 data-fee accounting.
var OptimismGasPriceOracle = common.HexToAddress("0x420000000000000000000000000000000000000F")

var getL1FeeMethod = mustNewMethod(
	"getL1Fee",
	abi.Arguments{{Name: "_data", Type: mustType("bytes")}},
	abi.Arguments{{Name: "fee", Type: mustType("uint256")}},
)

type getL1FeeOutput struct {
	Fee *big.Int
}

// L1DataGasOptimism returns the L1 data fee, denominated in wei, the GasPriceOracle predeploy
// attributes to submitting rawTx. Callers convert this to a gas-unit surcharge by dividing by the
// L2 price the user operation is willing to pay, per estimation.rs's estimate().
func (p *Provider) L1DataGasOptimism(ctx context.Context, rawTx []byte) (*big.Int, error) {
	packedArgs, err := getL1FeeMethod.Inputs.Pack(rawTx)
	if err != nil {
		return nil, err
	}
	calldata := append(append([]byte{}, getL1FeeMethod.ID...), packedArgs...)

	req := map[string]any{
		"to":   OptimismGasPriceOracle,
		"data": hexutil.Encode(calldata),
	}
	var rawResult hexutil.Bytes
	if err := p.rpc.CallContext(ctx, &rawResult, "eth_call", req, "latest"); err != nil {
		return nil, err
	}

	values, err := getL1FeeMethod.Outputs.UnpackValues(rawResult)
	if err != nil {
		return nil, err
	}
	asMap := map[string]any{"fee": values[0]}

	var out getL1FeeOutput
	if err := mapstructure.Decode(asMap, &out); err != nil {
		return nil, err
	}
	return out.Fee, nil
}
