package gas

import "math/big"

const (
	// GasRounding is passed to the call-gas proxy, which rounds its binary-search results up to the
	// nearest multiple, trading estimate precision for roughly twelve fewer rounds per invocation.
	GasRounding uint64 = 4096

	// ErrorMargin stops a binary search once its bounds are within this fraction of each
	// other: min_success/max_failure <= 1+ErrorMargin.
	ErrorMargin float64 = 0.1

	// VerificationGasBufferPercent is added on top of the raw verification-gas search result
	// before clamping to the configured maximum.
	VerificationGasBufferPercent uint64 = 10

	// GasFeeTransferCost accounts for the gas used transferring funds to the entry point's
	// deposit and for initializing a previously zero storage slot, added when a user
	// operation has no paymaster.
	GasFeeTransferCost uint64 = 30_000

	// MinCallGasLimit is the smallest callGasLimit the estimator will ever return: below this
	// a call cannot cover the warm-access and CALL-opcode overhead EntryPoint itself charges
	// before the account's call even executes.
	MinCallGasLimit uint64 = 9_100
)

// Settings bounds every search this package runs.
type Settings struct {
	MaxVerificationGas      uint64
	MaxCallGas              uint64
	MaxSimulateHandleOpsGas uint64
}

func (s Settings) maxCallGasBig() *big.Int         { return bigFromUint64(s.MaxCallGas) }
func (s Settings) maxVerificationGasBig() *big.Int { return bigFromUint64(s.MaxVerificationGas) }
