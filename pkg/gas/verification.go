package gas

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AO-Metaplayer/gasestimator/pkg/entrypoint"
	"github.com/AO-Metaplayer/gasestimator/pkg/evmprovider"
	"github.com/AO-Metaplayer/gasestimator/pkg/gasused"
	"github.com/AO-Metaplayer/gasestimator/pkg/rpcerr"
	"github.com/AO-Metaplayer/gasestimator/pkg/state"
	"github.com/AO-Metaplayer/gasestimator/pkg/userop"
)

// BinarySearchVerificationGas implements C5: find the smallest verificationGasLimit for which
// simulateHandleOp succeeds, via external binary search against repeated simulateHandleOp calls.
func BinarySearchVerificationGas(
	ctx context.Context,
	provider *evmprovider.Provider,
	ep *entrypoint.Client,
	op userop.Operation,
	settings Settings,
) (*big.Int, int64, error) {
	probeOp := op.WithGas(
		big.NewInt(0), new(big.Int).SetUint64(settings.MaxSimulateHandleOpsGas),
		op.PreVerificationGas(), op.MaxFeePerGas(), op.MaxPriorityFeePerGas(),
	)
	calldata, err := entrypoint.SimulateHandleOpCallData(probeOp, common.Address{}, nil)
	if err != nil {
		return nil, 0, err
	}
	probe, err := gasused.Probe(ctx, provider, ep.Address(), calldata, state.New())
	if err != nil {
		return nil, 0, rpcerr.Wrap(err)
	}
	if probe.Success {
		return nil, 0, rpcerr.Internalf("simulateHandleOp succeeded, but should always revert")
	}
	if _, err := entrypoint.DecodeSimulateHandleOpsRevert(probe.Data); err != nil {
		return nil, 0, err
	}

	maxFailureGas := uint64(0)
	minSuccessGas := settings.MaxVerificationGas
	guess := probe.GasUsed.Uint64() * 2
	if guess == 0 {
		guess = 1
	}

	runAttempt := func(gas uint64) (bool, error) {
		attempt := op.WithGas(
			big.NewInt(0), new(big.Int).SetUint64(gas),
			op.PreVerificationGas(), op.MaxFeePerGas(), op.MaxPriorityFeePerGas(),
		)
		result, err := ep.SimulateHandleOp(ctx, attempt, common.Address{}, nil, state.New(), settings.MaxSimulateHandleOpsGas)
		if err != nil {
			if rpcErr, ok := err.(*rpcerr.Error); ok && rpcErr.Code == rpcerr.RejectedByEntryPoint {
				return true, nil // validation failed at this gas level
			}
			return false, err
		}
		_ = result
		return false, nil
	}

	rounds := int64(1) // the initial probe call above counts as the first round

	for float64(minSuccessGas)/float64(maxOrOne(maxFailureGas)) > 1.0+ErrorMargin {
		isFailure, err := runAttempt(guess)
		rounds++
		if err != nil {
			return nil, rounds, err
		}
		if isFailure {
			maxFailureGas = guess
		} else {
			minSuccessGas = guess
		}
		guess = (maxFailureGas + minSuccessGas) / 2
	}

	if _, hasPaymaster := op.Paymaster(); !hasPaymaster {
		minSuccessGas += GasFeeTransferCost
	}
	return new(big.Int).SetUint64(minSuccessGas), rounds, nil
}

func maxOrOne(v uint64) uint64 {
	if v == 0 {
		return 1
	}
	return v
}
