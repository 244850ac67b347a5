// Package gas implements the pre-verification gas calculator and the two binary-search
// components (verification gas, call gas) that make up the estimator's core.
package gas

import "math/big"

// L1Mode selects which L2 calldata-gas surcharge, if any, augments a chain's
// pre-verification gas.
type L1Mode int

const (
	L1ModeNone L1Mode = iota
	L1ModeArbitrum
	L1ModeOptimism
)

// ChainConfig carries the per-network constants the pre-verification gas calculator needs. These
// mirror the intrinsic-gas accounting rules of the EVM itself (calldata byte costs, the base
// transaction cost) plus ERC-4337-specific per-operation overheads.
type ChainConfig struct {
	CalldataZeroByteGas          uint64
	CalldataNonZeroByteGas       uint64
	PerUserOpWordGas             uint64
	PerUserOpV06Gas              uint64
	PerUserOpDeployOverheadGas   uint64
	TransactionIntrinsicGas      uint64
	MaxTransactionSizeBytes      uint64
	ChainID                      uint64
	L1Mode                       L1Mode
}

// DefaultMainnetChainConfig returns the constants that apply to any L1 chain with standard EVM
// intrinsic gas accounting and no L1-data-fee surcharge.
func DefaultMainnetChainConfig(chainID uint64) ChainConfig {
	return ChainConfig{
		CalldataZeroByteGas:        4,
		CalldataNonZeroByteGas:     16,
		PerUserOpWordGas:           4,
		PerUserOpV06Gas:            18_300,
		PerUserOpDeployOverheadGas: 3_200,
		TransactionIntrinsicGas:    21_000,
		MaxTransactionSizeBytes:    128 * 1024,
		ChainID:                    chainID,
		L1Mode:                     L1ModeNone,
	}
}

// WithL1Mode returns a copy of c with its L1 surcharge mode replaced.
func (c ChainConfig) WithL1Mode(mode L1Mode) ChainConfig {
	c.L1Mode = mode
	return c
}

func bigFromUint64(v uint64) *big.Int { return new(big.Int).SetUint64(v) }
