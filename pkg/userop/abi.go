package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytes32Type, _ = abi.NewType("bytes32", "", nil)

	v06TupleType, _ = abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "sender", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "initCode", Type: "bytes"},
		{Name: "callData", Type: "bytes"},
		{Name: "callGasLimit", Type: "uint256"},
		{Name: "verificationGasLimit", Type: "uint256"},
		{Name: "preVerificationGas", Type: "uint256"},
		{Name: "maxFeePerGas", Type: "uint256"},
		{Name: "maxPriorityFeePerGas", Type: "uint256"},
		{Name: "paymasterAndData", Type: "bytes"},
		{Name: "signature", Type: "bytes"},
	})
	v06TupleArgs = abi.Arguments{{Name: "op", Type: v06TupleType}}

	v07TupleType, _ = abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "sender", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "initCode", Type: "bytes"},
		{Name: "callData", Type: "bytes"},
		{Name: "accountGasLimits", Type: "bytes32"},
		{Name: "preVerificationGas", Type: "uint256"},
		{Name: "gasFees", Type: "bytes32"},
		{Name: "paymasterAndData", Type: "bytes"},
		{Name: "signature", Type: "bytes"},
	})
	v07TupleArgs = abi.Arguments{{Name: "op", Type: v07TupleType}}

	// packedForHashV06Args mirrors EntryPoint v0.6's getUserOpHash encoding: every byte-string
	// field is replaced by its keccak digest before hashing.
	packedForHashV06Args = abi.Arguments{
		{Name: "sender", Type: addressType},
		{Name: "nonce", Type: uint256Type},
		{Name: "hashInitCode", Type: bytes32Type},
		{Name: "hashCallData", Type: bytes32Type},
		{Name: "callGasLimit", Type: uint256Type},
		{Name: "verificationGasLimit", Type: uint256Type},
		{Name: "preVerificationGas", Type: uint256Type},
		{Name: "maxFeePerGas", Type: uint256Type},
		{Name: "maxPriorityFeePerGas", Type: uint256Type},
		{Name: "hashPaymasterAndData", Type: bytes32Type},
	}

	packedForHashV07Args = abi.Arguments{
		{Name: "sender", Type: addressType},
		{Name: "nonce", Type: uint256Type},
		{Name: "hashInitCode", Type: bytes32Type},
		{Name: "hashCallData", Type: bytes32Type},
		{Name: "accountGasLimits", Type: bytes32Type},
		{Name: "preVerificationGas", Type: uint256Type},
		{Name: "gasFees", Type: bytes32Type},
		{Name: "hashPaymasterAndData", Type: bytes32Type},
	}

	hashEncodedArgs = abi.Arguments{
		{Name: "encodedHash", Type: bytes32Type},
		{Name: "entryPoint", Type: addressType},
		{Name: "chainId", Type: uint256Type},
	}
)

// finalizeHash implements the second stage common to every entry-point version:
// keccak256(abi.encode(encodedHash, entryPoint, chainId)).
func finalizeHash(encodedHash [32]byte, entryPoint common.Address, chainID uint64) common.Hash {
	packed, err := hashEncodedArgs.Pack(encodedHash, entryPoint, new(big.Int).SetUint64(chainID))
	if err != nil {
		// hashEncodedArgs is a fixed, static-only argument list; packing three well-typed
		// scalars cannot fail.
		panic(err)
	}
	return crypto.Keccak256Hash(packed)
}

// byteArrayABILen returns the ABI-encoded length, in bytes, of a single dynamic `bytes` argument:
// one word for its length prefix plus its content rounded up to a 32-byte boundary.
func byteArrayABILen(b []byte) int {
	return 32 + ((len(b) + 31) / 32 * 32)
}
