package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// v06 is the EntryPoint v0.6 concrete Operation.
type v06 struct {
	sender                common.Address
	nonce                 *big.Int
	initCode              []byte
	callData              []byte
	callGasLimit          *big.Int
	verificationGasLimit  *big.Int
	preVerificationGas    *big.Int
	maxFeePerGas          *big.Int
	maxPriorityFeePerGas  *big.Int
	paymasterAndData      []byte
	signature             []byte
}

// NewV06 builds a fully-specified EntryPoint v0.6 Operation.
func NewV06(
	sender common.Address,
	nonce *big.Int,
	initCode, callData []byte,
	callGasLimit, verificationGasLimit, preVerificationGas, maxFeePerGas, maxPriorityFeePerGas *big.Int,
	paymasterAndData, signature []byte,
) Operation {
	return &v06{
		sender:               sender,
		nonce:                nonce,
		initCode:             initCode,
		callData:             callData,
		callGasLimit:         callGasLimit,
		verificationGasLimit: verificationGasLimit,
		preVerificationGas:   preVerificationGas,
		maxFeePerGas:         maxFeePerGas,
		maxPriorityFeePerGas: maxPriorityFeePerGas,
		paymasterAndData:     paymasterAndData,
		signature:            signature,
	}
}

func (o *v06) Version() Version                  { return V06 }
func (o *v06) Sender() common.Address            { return o.sender }
func (o *v06) Nonce() *big.Int                   { return o.nonce }
func (o *v06) InitCode() []byte                  { return o.initCode }
func (o *v06) CallData() []byte                  { return o.callData }
func (o *v06) PaymasterAndData() []byte          { return o.paymasterAndData }
func (o *v06) Signature() []byte                 { return o.signature }
func (o *v06) CallGasLimit() *big.Int            { return o.callGasLimit }
func (o *v06) VerificationGasLimit() *big.Int    { return o.verificationGasLimit }
func (o *v06) PreVerificationGas() *big.Int      { return o.preVerificationGas }
func (o *v06) MaxFeePerGas() *big.Int            { return o.maxFeePerGas }
func (o *v06) MaxPriorityFeePerGas() *big.Int    { return o.maxPriorityFeePerGas }

func (o *v06) Factory() (common.Address, bool)   { return addressFromPrefix(o.initCode) }
func (o *v06) Paymaster() (common.Address, bool) { return addressFromPrefix(o.paymasterAndData) }

// Hash matches EntryPoint v0.6's getUserOpHash: hash the byte-string fields first, pack the
// resulting digests alongside the scalar fields, hash again, then fold in entryPoint and chainId.
func (o *v06) Hash(entryPoint common.Address, chainID uint64) common.Hash {
	packed, err := packedForHashV06Args.Pack(
		o.sender,
		o.nonce,
		crypto.Keccak256Hash(o.initCode),
		crypto.Keccak256Hash(o.callData),
		o.callGasLimit,
		o.verificationGasLimit,
		o.preVerificationGas,
		o.maxFeePerGas,
		o.maxPriorityFeePerGas,
		crypto.Keccak256Hash(o.paymasterAndData),
	)
	if err != nil {
		panic(err)
	}
	return finalizeHash(crypto.Keccak256Hash(packed), entryPoint, chainID)
}

func (o *v06) Pack() []byte {
	packed, err := v06TupleArgs.Pack(struct {
		Sender               common.Address
		Nonce                *big.Int
		InitCode             []byte
		CallData             []byte
		CallGasLimit         *big.Int
		VerificationGasLimit *big.Int
		PreVerificationGas   *big.Int
		MaxFeePerGas         *big.Int
		MaxPriorityFeePerGas *big.Int
		PaymasterAndData     []byte
		Signature            []byte
	}{
		o.sender, o.nonce, o.initCode, o.callData,
		o.callGasLimit, o.verificationGasLimit, o.preVerificationGas,
		o.maxFeePerGas, o.maxPriorityFeePerGas,
		o.paymasterAndData, o.signature,
	})
	if err != nil {
		panic(err)
	}
	// Arguments.Pack puts a 32-byte offset word in front of a dynamic tuple; drop it so the result
	// is the bare tuple encoding.
	return packed[32:]
}

// ABIEncodedSize sums the fixed-length head of the tuple and each dynamic field's length-prefixed,
// word-aligned body, matching ABI_ENCODED_USER_OPERATION_FIXED_LEN plus per-field dynamic content
// from the reference encoder.
func (o *v06) ABIEncodedSize() int {
	// 11 head slots, one per tuple member, each 32 bytes.
	size := 11 * 32
	size += byteArrayABILen(o.initCode)
	size += byteArrayABILen(o.callData)
	size += byteArrayABILen(o.paymasterAndData)
	size += byteArrayABILen(o.signature)
	return size
}

func (o *v06) WithGas(callGasLimit, verificationGasLimit, preVerificationGas, maxFeePerGas, maxPriorityFeePerGas *big.Int) Operation {
	clone := *o
	clone.callGasLimit = callGasLimit
	clone.verificationGasLimit = verificationGasLimit
	clone.preVerificationGas = preVerificationGas
	clone.maxFeePerGas = maxFeePerGas
	clone.maxPriorityFeePerGas = maxPriorityFeePerGas
	return &clone
}

func (o *v06) WithCallGasLimit(callGasLimit *big.Int) Operation {
	clone := *o
	clone.callGasLimit = callGasLimit
	return &clone
}

// OptionalGasV06 is the wire shape accepted for EntryPoint v0.6 estimation requests.
type OptionalGasV06 struct {
	Sender_               common.Address
	Nonce_                *big.Int
	InitCode_             []byte
	CallData_             []byte
	CallGasLimit_         *big.Int
	VerificationGasLimit_ *big.Int
	PreVerificationGas_   *big.Int
	MaxFeePerGas_         *big.Int
	MaxPriorityFeePerGas_ *big.Int
	PaymasterAndData_     []byte
	Signature_            []byte
}

func (o *OptionalGasV06) Version() Version               { return V06 }
func (o *OptionalGasV06) Sender() common.Address         { return o.Sender_ }
func (o *OptionalGasV06) Nonce() *big.Int                { return o.Nonce_ }
func (o *OptionalGasV06) InitCode() []byte               { return o.InitCode_ }
func (o *OptionalGasV06) CallData() []byte               { return o.CallData_ }
func (o *OptionalGasV06) PaymasterAndData() []byte       { return o.PaymasterAndData_ }
func (o *OptionalGasV06) Signature() []byte              { return o.Signature_ }
func (o *OptionalGasV06) CallGasLimit() *big.Int         { return o.CallGasLimit_ }
func (o *OptionalGasV06) VerificationGasLimit() *big.Int { return o.VerificationGasLimit_ }
func (o *OptionalGasV06) PreVerificationGas() *big.Int   { return o.PreVerificationGas_ }
func (o *OptionalGasV06) MaxFeePerGas() *big.Int         { return o.MaxFeePerGas_ }
func (o *OptionalGasV06) MaxPriorityFeePerGas() *big.Int { return o.MaxPriorityFeePerGas_ }

func (o *OptionalGasV06) ABIEncodedSize() int {
	full := &v06{
		sender: o.Sender_, nonce: zeroIfNil(o.Nonce_),
		initCode: o.InitCode_, callData: o.CallData_,
		callGasLimit: big.NewInt(0), verificationGasLimit: big.NewInt(0), preVerificationGas: big.NewInt(0),
		maxFeePerGas: big.NewInt(0), maxPriorityFeePerGas: big.NewInt(0),
		paymasterAndData: o.PaymasterAndData_, signature: o.Signature_,
	}
	return full.ABIEncodedSize()
}

// IntoFull fills every unset or zero gas scalar with the given cap and defaults unset fees to
// zero, so a binary search always has a concrete starting point and never pays real fees.
func (o *OptionalGasV06) IntoFull(maxCallGas, maxVerificationGas *big.Int) Operation {
	return &v06{
		sender:               o.Sender_,
		nonce:                zeroIfNil(o.Nonce_),
		initCode:             o.InitCode_,
		callData:             o.CallData_,
		callGasLimit:         defaultIfNilOrZero(o.CallGasLimit_, maxCallGas),
		verificationGasLimit: defaultIfNilOrZero(o.VerificationGasLimit_, maxVerificationGas),
		preVerificationGas:   zeroIfNil(o.PreVerificationGas_),
		maxFeePerGas:         zeroIfNil(o.MaxFeePerGas_),
		maxPriorityFeePerGas: zeroIfNil(o.MaxPriorityFeePerGas_),
		paymasterAndData:     o.PaymasterAndData_,
		signature:            o.Signature_,
	}
}

// MaxFill sets every gas scalar to u128::MAX and the signature/paymasterAndData dummy byte
// strings to same-length 0xFF content, producing the worst-case non-zero-byte calldata cost for
// pre-verification gas. initCode and callData are left as supplied: they are caller-controlled
// data, not estimator-owned padding.
func (o *OptionalGasV06) MaxFill(maxCallGas, maxVerificationGas *big.Int) Operation {
	return &v06{
		sender:               o.Sender_,
		nonce:                zeroIfNil(o.Nonce_),
		initCode:             o.InitCode_,
		callData:             o.CallData_,
		callGasLimit:         maxUint128(),
		verificationGasLimit: maxUint128(),
		preVerificationGas:   maxUint128(),
		maxFeePerGas:         maxUint128(),
		maxPriorityFeePerGas: maxUint128(),
		paymasterAndData:     allBytes(len(o.PaymasterAndData_), 0xff),
		signature:            allBytes(len(o.Signature_), 0xff),
	}
}

// RandomFill mirrors MaxFill but draws uniformly random content and bounded random gas scalars,
// approximating a realistic calldata-compressibility sample for L2 surcharge estimation.
func (o *OptionalGasV06) RandomFill(maxCallGas, maxVerificationGas *big.Int) Operation {
	return &v06{
		sender:               o.Sender_,
		nonce:                zeroIfNil(o.Nonce_),
		initCode:             randomBytes(len(o.InitCode_)),
		callData:             randomBytes(len(o.CallData_)),
		callGasLimit:         randomUint128(64),
		verificationGasLimit: randomUint128(64),
		preVerificationGas:   randomUint128(64),
		maxFeePerGas:         randomUint128(64),
		maxPriorityFeePerGas: randomUint128(64),
		paymasterAndData:     randomBytes(len(o.PaymasterAndData_)),
		signature:            randomBytes(len(o.Signature_)),
	}
}
