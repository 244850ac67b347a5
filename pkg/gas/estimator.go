package gas

import (
	"context"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/AO-Metaplayer/gasestimator/pkg/entrypoint"
	"github.com/AO-Metaplayer/gasestimator/pkg/evmprovider"
	"github.com/AO-Metaplayer/gasestimator/pkg/userop"
)

// Estimate is the three gas values the estimator promises the bundler can use to build a
// transaction that neither underpays nor wastes gas on this user operation.
type Estimate struct {
	PreVerificationGas   *big.Int
	VerificationGasLimit *big.Int
	CallGasLimit         *big.Int

	// VerificationGasRounds counts the simulateHandleOp round trips of the verification-gas search
	// (the initial probe included). CallGasRounds is the sum of the binary-search rounds the proxy
	// reported across its invocations. Both are for the caller to record as a metric.
	VerificationGasRounds int64
	CallGasRounds         int64
}

// Estimator owns the provider and chain configuration every component (C4-C6) needs, and runs
// them in the order and concurrency pattern the on-chain simulation demands.
type Estimator struct {
	provider *evmprovider.Provider
	ep       *entrypoint.Client
	cfg      ChainConfig
	settings Settings
}

// New builds an Estimator targeting one EntryPoint deployment on one chain.
func New(provider *evmprovider.Provider, ep *entrypoint.Client, cfg ChainConfig, settings Settings) *Estimator {
	return &Estimator{provider: provider, ep: ep, cfg: cfg, settings: settings}
}

// EstimateOpGas runs C4 (pre-verification gas) followed by C5 and C6 (verification-gas and
// call-gas binary search) concurrently, then applies the post-processing buffer and clamp rules.
// Per the reference behavior, when both searches fail the verification-gas error is reported:
// a failing call phase is frequently a downstream symptom of underpriced verification gas, so
// surfacing that error is more actionable to the caller.
func (e *Estimator) EstimateOpGas(ctx context.Context, op userop.OptionalGas) (*Estimate, error) {
	pvg, err := CalcPreVerificationGas(ctx, e.provider, e.ep.Address(), op, e.cfg, e.settings)
	if err != nil {
		return nil, err
	}

	fullOp := op.IntoFull(e.settings.maxCallGasBig(), e.settings.maxVerificationGasBig())
	// Fees are forced to zero for the searches below: a caller-supplied fee bid has no bearing on
	// how much gas validation or the call phase consume, and leaving it in would let a high bid
	// drive mis-estimation.
	fullOp = fullOp.WithGas(
		fullOp.CallGasLimit(), fullOp.VerificationGasLimit(), pvg,
		big.NewInt(0), big.NewInt(0),
	)

	// Both searches always run to completion even if one fails: an errgroup derived from ctx
	// would cancel the other goroutine on first error, but a failing call-gas search is often a
	// downstream symptom of a failing verification-gas search, so the verification error needs
	// to be observed even when the call-gas search loses the race and returns first.
	var g errgroup.Group
	var (
		verificationGas    *big.Int
		verificationRounds int64
		verificationErr    error
		callGas            *big.Int
		callRounds         int64
		callErr            error
	)

	g.Go(func() error {
		verificationGas, verificationRounds, verificationErr = BinarySearchVerificationGas(ctx, e.provider, e.ep, fullOp, e.settings)
		return nil
	})
	g.Go(func() error {
		callGas, callRounds, callErr = EstimateCallGas(ctx, e.provider, e.ep, fullOp, e.settings)
		return nil
	})
	_ = g.Wait()

	if verificationErr != nil {
		return nil, verificationErr
	}
	if callErr != nil {
		return nil, callErr
	}

	verificationGas = applyBuffer(verificationGas, VerificationGasBufferPercent)
	if verificationGas.Cmp(e.settings.maxVerificationGasBig()) > 0 {
		verificationGas = e.settings.maxVerificationGasBig()
	}

	callGas = clamp(callGas, MinCallGasLimit, e.settings.MaxCallGas)

	return &Estimate{
		PreVerificationGas:    pvg,
		VerificationGasLimit:  verificationGas,
		CallGasLimit:          callGas,
		VerificationGasRounds: verificationRounds,
		CallGasRounds:         callRounds,
	}, nil
}

// applyBuffer adds percent% on top of v, rounding down.
func applyBuffer(v *big.Int, percent uint64) *big.Int {
	buffered := new(big.Int).Mul(v, big.NewInt(int64(100+percent)))
	return buffered.Div(buffered, big.NewInt(100))
}

func clamp(v *big.Int, min, max uint64) *big.Int {
	minBig := new(big.Int).SetUint64(min)
	maxBig := new(big.Int).SetUint64(max)
	if v.Cmp(minBig) < 0 {
		return minBig
	}
	if v.Cmp(maxBig) > 0 {
		return maxBig
	}
	return new(big.Int).Set(v)
}
