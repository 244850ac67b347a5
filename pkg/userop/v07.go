package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// packUint128Pair packs two values, each assumed to fit in 128 bits, into a single 32-byte word:
// hi occupies the top 16 bytes, lo the bottom 16, matching EntryPoint v0.7's accountGasLimits and
// gasFees packing.
func packUint128Pair(hi, lo *big.Int) [32]byte {
	var out [32]byte
	hi.FillBytes(out[:16])
	lo.FillBytes(out[16:])
	return out
}

func unpackUint128Pair(word [32]byte) (hi, lo *big.Int) {
	return new(big.Int).SetBytes(word[:16]), new(big.Int).SetBytes(word[16:])
}

// v07 is the EntryPoint v0.7 concrete Operation. Paymaster gas limits live in the leading 52 bytes
// of paymasterAndData (20-byte address, 16-byte verification limit, 16-byte postOp limit)
// immediately followed by opaque paymaster-specific data.
type v07 struct {
	sender                        common.Address
	nonce                         *big.Int
	initCode                      []byte
	callData                      []byte
	callGasLimit                  *big.Int
	verificationGasLimit          *big.Int
	preVerificationGas            *big.Int
	maxFeePerGas                  *big.Int
	maxPriorityFeePerGas          *big.Int
	paymasterAndData              []byte
	signature                     []byte
}

// NewV07 builds a fully-specified EntryPoint v0.7 Operation.
func NewV07(
	sender common.Address,
	nonce *big.Int,
	initCode, callData []byte,
	callGasLimit, verificationGasLimit, preVerificationGas, maxFeePerGas, maxPriorityFeePerGas *big.Int,
	paymasterAndData, signature []byte,
) Operation {
	return &v07{
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

func (o *v07) Version() Version               { return V07 }
func (o *v07) Sender() common.Address         { return o.sender }
func (o *v07) Nonce() *big.Int                { return o.nonce }
func (o *v07) InitCode() []byte               { return o.initCode }
func (o *v07) CallData() []byte               { return o.callData }
func (o *v07) PaymasterAndData() []byte       { return o.paymasterAndData }
func (o *v07) Signature() []byte              { return o.signature }
func (o *v07) CallGasLimit() *big.Int         { return o.callGasLimit }
func (o *v07) VerificationGasLimit() *big.Int { return o.verificationGasLimit }
func (o *v07) PreVerificationGas() *big.Int   { return o.preVerificationGas }
func (o *v07) MaxFeePerGas() *big.Int         { return o.maxFeePerGas }
func (o *v07) MaxPriorityFeePerGas() *big.Int { return o.maxPriorityFeePerGas }

func (o *v07) Factory() (common.Address, bool)   { return addressFromPrefix(o.initCode) }
func (o *v07) Paymaster() (common.Address, bool) { return addressFromPrefix(o.paymasterAndData) }

func (o *v07) accountGasLimits() [32]byte {
	return packUint128Pair(o.verificationGasLimit, o.callGasLimit)
}

func (o *v07) gasFees() [32]byte {
	return packUint128Pair(o.maxPriorityFeePerGas, o.maxFeePerGas)
}

func (o *v07) Hash(entryPoint common.Address, chainID uint64) common.Hash {
	packed, err := packedForHashV07Args.Pack(
		o.sender,
		o.nonce,
		crypto.Keccak256Hash(o.initCode),
		crypto.Keccak256Hash(o.callData),
		o.accountGasLimits(),
		o.preVerificationGas,
		o.gasFees(),
		crypto.Keccak256Hash(o.paymasterAndData),
	)
	if err != nil {
		panic(err)
	}
	return finalizeHash(crypto.Keccak256Hash(packed), entryPoint, chainID)
}

func (o *v07) Pack() []byte {
	packed, err := v07TupleArgs.Pack(struct {
		Sender             common.Address
		Nonce              *big.Int
		InitCode           []byte
		CallData           []byte
		AccountGasLimits   [32]byte
		PreVerificationGas *big.Int
		GasFees            [32]byte
		PaymasterAndData   []byte
		Signature          []byte
	}{
		o.sender, o.nonce, o.initCode, o.callData,
		o.accountGasLimits(), o.preVerificationGas, o.gasFees(),
		o.paymasterAndData, o.signature,
	})
	if err != nil {
		panic(err)
	}
	// Arguments.Pack puts a 32-byte offset word in front of a dynamic tuple; drop it so the result
	// is the bare tuple encoding.
	return packed[32:]
}

// ABIEncodedSize sums the 9 fixed head slots plus each dynamic field's length-prefixed,
// word-aligned body. v0.7 has two fewer gas head slots than v0.6 because callGasLimit and
// verificationGasLimit collapse into the single accountGasLimits word and maxFeePerGas and
// maxPriorityFeePerGas collapse into the single gasFees word.
func (o *v07) ABIEncodedSize() int {
	size := 9 * 32
	size += byteArrayABILen(o.initCode)
	size += byteArrayABILen(o.callData)
	size += byteArrayABILen(o.paymasterAndData)
	size += byteArrayABILen(o.signature)
	return size
}

func (o *v07) WithGas(callGasLimit, verificationGasLimit, preVerificationGas, maxFeePerGas, maxPriorityFeePerGas *big.Int) Operation {
	clone := *o
	clone.callGasLimit = callGasLimit
	clone.verificationGasLimit = verificationGasLimit
	clone.preVerificationGas = preVerificationGas
	clone.maxFeePerGas = maxFeePerGas
	clone.maxPriorityFeePerGas = maxPriorityFeePerGas
	return &clone
}

func (o *v07) WithCallGasLimit(callGasLimit *big.Int) Operation {
	clone := *o
	clone.callGasLimit = callGasLimit
	return &clone
}

// OptionalGasV07 is the wire shape accepted for EntryPoint v0.7 estimation requests.
type OptionalGasV07 struct {
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

func (o *OptionalGasV07) Version() Version               { return V07 }
func (o *OptionalGasV07) Sender() common.Address         { return o.Sender_ }
func (o *OptionalGasV07) Nonce() *big.Int                { return o.Nonce_ }
func (o *OptionalGasV07) InitCode() []byte               { return o.InitCode_ }
func (o *OptionalGasV07) CallData() []byte               { return o.CallData_ }
func (o *OptionalGasV07) PaymasterAndData() []byte       { return o.PaymasterAndData_ }
func (o *OptionalGasV07) Signature() []byte              { return o.Signature_ }
func (o *OptionalGasV07) CallGasLimit() *big.Int         { return o.CallGasLimit_ }
func (o *OptionalGasV07) VerificationGasLimit() *big.Int { return o.VerificationGasLimit_ }
func (o *OptionalGasV07) PreVerificationGas() *big.Int   { return o.PreVerificationGas_ }
func (o *OptionalGasV07) MaxFeePerGas() *big.Int         { return o.MaxFeePerGas_ }
func (o *OptionalGasV07) MaxPriorityFeePerGas() *big.Int { return o.MaxPriorityFeePerGas_ }

func (o *OptionalGasV07) ABIEncodedSize() int {
	full := &v07{
		sender: o.Sender_, nonce: zeroIfNil(o.Nonce_),
		initCode: o.InitCode_, callData: o.CallData_,
		callGasLimit: big.NewInt(0), verificationGasLimit: big.NewInt(0), preVerificationGas: big.NewInt(0),
		maxFeePerGas: big.NewInt(0), maxPriorityFeePerGas: big.NewInt(0),
		paymasterAndData: o.PaymasterAndData_, signature: o.Signature_,
	}
	return full.ABIEncodedSize()
}

func (o *OptionalGasV07) IntoFull(maxCallGas, maxVerificationGas *big.Int) Operation {
	return &v07{
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
// strings to same-length 0xFF content. initCode and callData are left as supplied.
func (o *OptionalGasV07) MaxFill(maxCallGas, maxVerificationGas *big.Int) Operation {
	return &v07{
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

func (o *OptionalGasV07) RandomFill(maxCallGas, maxVerificationGas *big.Int) Operation {
	return &v07{
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
