package gas

import (
	"context"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AO-Metaplayer/gasestimator/pkg/evmprovider"
	"github.com/AO-Metaplayer/gasestimator/pkg/userop"
)

// CalcPreVerificationGas implements C4: the static calldata/overhead cost of including this user
// operation in a batch, optionally augmented with an L2 data-availability surcharge. The max-fill
// pass guarantees the result never under-quotes calldata costs; the random-fill pass supplies a
// realistic sample to the L2 surcharge queries, which price actual bytes rather than worst-case
// all-0xFF buffers that L2 compressors would collapse to near nothing.
func CalcPreVerificationGas(
	ctx context.Context,
	provider *evmprovider.Provider,
	entryPointAddr common.Address,
	op userop.OptionalGas,
	cfg ChainConfig,
	settings Settings,
) (*big.Int, error) {
	maxFilled := op.MaxFill(settings.maxCallGasBig(), settings.maxVerificationGasBig())
	randomFilled := op.RandomFill(settings.maxCallGasBig(), settings.maxVerificationGasBig())

	static := staticGas(maxFilled, cfg)

	switch cfg.L1Mode {
	case L1ModeArbitrum:
		_, isCreate := randomFilled.Factory()
		l1Gas, err := provider.L1DataGasArbitrum(ctx, entryPointAddr, randomFilled.Pack(), isCreate)
		if err != nil {
			return nil, err
		}
		static = new(big.Int).Add(static, new(big.Int).SetUint64(l1Gas))
	case L1ModeOptimism:
		l1FeeWei, err := provider.L1DataGasOptimism(ctx, randomFilled.Pack())
		if err != nil {
			return nil, err
		}
		l2Price, err := effectiveL2Price(ctx, provider, randomFilled)
		if err != nil {
			return nil, err
		}
		if l2Price.Sign() > 0 {
			static = new(big.Int).Add(static, new(big.Int).Div(l1FeeWei, l2Price))
		}
	}

	return static, nil
}

// staticGas computes the ABI-calldata gas cost plus the fixed per-operation overheads C4 owns,
// all driven off the max-filled operation's exact ABI encoding.
func staticGas(op userop.Operation, cfg ChainConfig) *big.Int {
	packed := op.Pack()
	var zeroBytes, nonZeroBytes uint64
	for _, b := range packed {
		if b == 0 {
			zeroBytes++
		} else {
			nonZeroBytes++
		}
	}
	calldataGas := zeroBytes*cfg.CalldataZeroByteGas + nonZeroBytes*cfg.CalldataNonZeroByteGas

	words := uint64(math.Ceil(float64(len(packed)) / 32))
	perWordGas := words * cfg.PerUserOpWordGas

	total := calldataGas + perWordGas + cfg.PerUserOpV06Gas + cfg.TransactionIntrinsicGas
	if _, hasFactory := op.Factory(); hasFactory {
		total += cfg.PerUserOpDeployOverheadGas
	}
	return new(big.Int).SetUint64(total)
}

// effectiveL2Price mirrors the reference estimator: the L2 price a real handleOps transaction
// would pay is the lesser of the operation's maxFeePerGas and (maxPriorityFeePerGas + current base
// fee).
func effectiveL2Price(ctx context.Context, provider *evmprovider.Provider, op userop.Operation) (*big.Int, error) {
	baseFee, err := provider.BaseFee(ctx)
	if err != nil {
		return nil, err
	}
	if baseFee == nil {
		baseFee = big.NewInt(0)
	}
	priority := new(big.Int).Add(op.MaxPriorityFeePerGas(), baseFee)
	price := op.MaxFeePerGas()
	if priority.Cmp(price) < 0 {
		return priority, nil
	}
	return price, nil
}
