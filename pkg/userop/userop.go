// Package userop implements the canonical in-memory UserOperation model shared by the two
// wire-incompatible ERC-4337 entry-point versions this estimator supports. Each version owns its
// own hashing, ABI-sizing, and entity-extraction rules; callers interact through the Operation and
// OptionalGas interfaces so the rest of the estimator never branches on version.
package userop

import (
	"crypto/rand"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Version tags which entry-point wire format a UserOperation was built for.
type Version int

const (
	// V06 is the EntryPoint v0.6 wire format: verificationGasLimit and callGasLimit are
	// separate top-level fields.
	V06 Version = iota
	// V07 is the EntryPoint v0.7 wire format: verificationGasLimit and callGasLimit are
	// packed into a single accountGasLimits word, and paymaster-specific gas limits are
	// packed into the leading bytes of paymasterAndData.
	V07
)

// Operation is the canonical, fully-specified user operation consumed by the gas search
// components (C5, C6) and the pre-verification gas calculator (C4). Byte-string fields and gas
// scalars round-trip through canonical ABI encoding; ABIEncodedSize is exact.
type Operation interface {
	Version() Version
	Sender() common.Address
	Nonce() *big.Int
	InitCode() []byte
	CallData() []byte
	PaymasterAndData() []byte
	Signature() []byte
	CallGasLimit() *big.Int
	VerificationGasLimit() *big.Int
	PreVerificationGas() *big.Int
	MaxFeePerGas() *big.Int
	MaxPriorityFeePerGas() *big.Int

	// Factory returns the first 20 bytes of InitCode, iff InitCode is at least 20 bytes long.
	Factory() (common.Address, bool)
	// Paymaster returns the first 20 bytes of PaymasterAndData, iff it is at least 20 bytes long.
	Paymaster() (common.Address, bool)

	// Hash computes keccak256(abi.encode(keccak256(packedForHash), entryPoint, chainId)),
	// matching the on-chain EntryPoint.getUserOpHash for this version.
	Hash(entryPoint common.Address, chainID uint64) common.Hash
	// ABIEncodedSize returns len(Pack()) without actually encoding.
	ABIEncodedSize() int
	// Pack returns the canonical ABI encoding of the operation as a single tuple, the same
	// encoding EntryPoint.handleOps consumes per element of its ops array.
	Pack() []byte

	// WithGas returns a clone of the operation with its five gas/fee scalars replaced. The
	// receiver is never mutated (estimator invariant: inputs are never mutated in place).
	WithGas(callGasLimit, verificationGasLimit, preVerificationGas, maxFeePerGas, maxPriorityFeePerGas *big.Int) Operation
	// WithCallGasLimit returns a clone with only callGasLimit replaced.
	WithCallGasLimit(callGasLimit *big.Int) Operation
}

// OptionalGas is the wire shape accepted by the estimator: identical to Operation except each gas
// scalar may be unset. Exactly one of *OptionalGasV06 or *OptionalGasV07 implements it.
type OptionalGas interface {
	Version() Version
	Sender() common.Address
	Nonce() *big.Int
	InitCode() []byte
	CallData() []byte
	PaymasterAndData() []byte
	Signature() []byte
	CallGasLimit() *big.Int          // nil if unset
	VerificationGasLimit() *big.Int // nil if unset
	PreVerificationGas() *big.Int   // nil if unset
	MaxFeePerGas() *big.Int         // nil if unset
	MaxPriorityFeePerGas() *big.Int // nil if unset

	// IntoFull fills unset or zero gas scalars with the relevant cap; unset fees default to
	// zero so the estimator never attempts a real payment.
	IntoFull(maxCallGas, maxVerificationGas *big.Int) Operation
	// MaxFill sets every gas scalar to the maximum representable value and every dummy byte
	// string to same-length all-0xFF content: the worst case non-zero-byte calldata cost.
	MaxFill(maxCallGas, maxVerificationGas *big.Int) Operation
	// RandomFill sets gas scalars to bounded random values and dummy byte strings to
	// same-length uniformly random content, for a realistic L2-compressibility sample.
	RandomFill(maxCallGas, maxVerificationGas *big.Int) Operation
	// ABIEncodedSize mirrors Operation.ABIEncodedSize using the dummy field lengths as-is.
	ABIEncodedSize() int
}

// defaultIfNilOrZero returns def if v is nil or zero, else v. Mirrors the Rust
// default_if_none_or_equal(value, default, 0) helper.
func defaultIfNilOrZero(v, def *big.Int) *big.Int {
	if v == nil || v.Sign() == 0 {
		return new(big.Int).Set(def)
	}
	return new(big.Int).Set(v)
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// addressFromPrefix extracts the first 20 bytes of data as an address, iff data is long enough.
func addressFromPrefix(data []byte) (common.Address, bool) {
	if len(data) < common.AddressLength {
		return common.Address{}, false
	}
	return common.BytesToAddress(data[:common.AddressLength]), true
}

func maxUint128() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 128)
	return max.Sub(max, big.NewInt(1))
}

func allBytes(n int, b byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

// randomBytes returns n cryptographically random bytes. The random-fill fields route through this
// so an adversary cannot pre-position state against a predictable seed.
func randomBytes(n int) []byte {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// randomUint128 returns a cryptographically random value in [0, 2^bits).
func randomUint128(bits uint) *big.Int {
	buf := randomBytes(int(bits / 8))
	return new(big.Int).SetBytes(buf)
}
