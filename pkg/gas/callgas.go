package gas

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AO-Metaplayer/gasestimator/pkg/entrypoint"
	"github.com/AO-Metaplayer/gasestimator/pkg/evmprovider"
	"github.com/AO-Metaplayer/gasestimator/pkg/proxy"
	"github.com/AO-Metaplayer/gasestimator/pkg/rpcerr"
	"github.com/AO-Metaplayer/gasestimator/pkg/state"
	"github.com/AO-Metaplayer/gasestimator/pkg/userop"
)

// errorStringArgs decodes the single string parameter of Solidity's standard Error(string) revert.
var errorStringArgs = abi.Arguments{{Name: "message", Type: mustStringType()}}

func mustStringType() abi.Type {
	typ, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// EstimateCallGas implements C6: install the call-gas estimation proxy over the entry-point
// address and run its in-EVM binary search, collapsing what would be O(log n) round trips to
// (typically) one.
func EstimateCallGas(
	ctx context.Context,
	provider *evmprovider.Provider,
	ep *entrypoint.Client,
	op userop.Operation,
	settings Settings,
) (*big.Int, int64, error) {
	entryPointCode, err := provider.GetCode(ctx, ep.Address())
	if err != nil {
		return nil, 0, err
	}

	movedEntryPoint, err := randomAddress()
	if err != nil {
		return nil, 0, err
	}

	overrides := state.New().
		WithCode(movedEntryPoint, entryPointCode).
		WithCode(ep.Address(), proxy.BytecodeWithTarget(movedEntryPoint))

	callessOp := op.WithCallGasLimit(big.NewInt(0))

	minGas := big.NewInt(0)
	maxGas := new(big.Int).SetUint64(settings.MaxCallGas)
	isContinuation := false
	numRounds := big.NewInt(0)

	for {
		targetCallData, err := proxy.EstimateCallGasCalldata(proxy.EstimateCallGasArgs{
			Sender:         op.Sender(),
			CallData:       op.CallData(),
			MinGas:         minGas,
			MaxGas:         maxGas,
			Rounding:       new(big.Int).SetUint64(GasRounding),
			IsContinuation: isContinuation,
		})
		if err != nil {
			return nil, 0, err
		}

		result, err := ep.SimulateHandleOp(ctx, callessOp, ep.Address(), targetCallData, overrides, settings.MaxSimulateHandleOpsGas)
		if err != nil {
			return nil, 0, err
		}

		// The proxy always delivers its outcome via revert, so targetSuccess is never true here;
		// target_result is decoded by tag (Result, RevertAtMax, or Continuation) regardless.
		if estimate, decErr := proxy.DecodeEstimateCallGasResult(result.TargetResult); decErr == nil {
			numRounds = new(big.Int).Add(numRounds, estimate.NumRounds)
			return estimate.GasEstimate, numRounds.Int64(), nil
		}
		if revertAtMax, decErr := proxy.DecodeEstimateCallGasRevertAtMax(result.TargetResult); decErr == nil {
			return nil, 0, classifyCallRevert(revertAtMax.RevertData)
		}
		continuation, decErr := proxy.DecodeEstimateCallGasContinuation(result.TargetResult)
		if decErr != nil {
			return nil, 0, rpcerr.Internalf("estimateCallGas revert should be a Result, RevertAtMax, or Continuation")
		}
		if isContinuation && continuation.MinGas.Cmp(minGas) <= 0 && continuation.MaxGas.Cmp(maxGas) >= 0 {
			return nil, 0, rpcerr.Internalf("estimateCallGas should make progress each time it is called")
		}
		isContinuation = true
		if continuation.MinGas.Cmp(minGas) > 0 {
			minGas = continuation.MinGas
		}
		if continuation.MaxGas.Cmp(maxGas) < 0 {
			maxGas = continuation.MaxGas
		}
		numRounds = new(big.Int).Add(numRounds, continuation.NumRounds)
	}
}

// classifyCallRevert decides between a standard Error(string) revert and an opaque byte payload,
// matching the RevertInCallWithMessage/RevertInCallWithBytes split in the error taxonomy.
func classifyCallRevert(raw []byte) error {
	if msg, ok := parseStandardRevertMessage(raw); ok {
		return rpcerr.RevertInCallWithMessage(msg)
	}
	return rpcerr.RevertInCallWithBytes(raw)
}

// errorStringSelector is the 4-byte selector of Solidity's standard Error(string) revert type.
var errorStringSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0}

func parseStandardRevertMessage(raw []byte) (string, bool) {
	if len(raw) < 4 || [4]byte(raw[:4]) != errorStringSelector {
		return "", false
	}
	values, err := errorStringArgs.Unpack(raw[4:])
	if err != nil || len(values) != 1 {
		return "", false
	}
	msg, ok := values[0].(string)
	return msg, ok
}

func randomAddress() (common.Address, error) {
	var addr common.Address
	if _, err := rand.Read(addr[:]); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}
