// Package rpctypes defines the wire JSON shapes the estimator's HTTP front door accepts and
// returns, plus the two-layer validation (JSON Schema on the raw envelope, struct tags on the
// typed payload) applied to incoming operations.
package rpctypes

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/AO-Metaplayer/gasestimator/pkg/gas"
	"github.com/AO-Metaplayer/gasestimator/pkg/userop"
)

// UserOperationOptionalGasJSON is the wire shape of an EntryPoint v0.6 user operation with its gas
// and fee scalars optional, the same request shape eth_estimateUserOperationGas accepts.
type UserOperationOptionalGasJSON struct {
	Sender               common.Address `json:"sender" validate:"required"`
	Nonce                *hexutil.Big   `json:"nonce" validate:"required"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData" validate:"required"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit,omitempty"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit,omitempty"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas,omitempty"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas,omitempty"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature" validate:"required"`
}

// EstimateRequestJSON is the full POST /estimate body: the operation plus which EntryPoint
// version to target.
type EstimateRequestJSON struct {
	Op         UserOperationOptionalGasJSON `json:"userOperation" validate:"required"`
	EntryPoint common.Address               `json:"entryPoint" validate:"required"`
	UseV07     bool                         `json:"useEntryPointV07"`
}

// GasEstimateJSON is the estimator's response shape: the same three fields a bundler hands back
// from eth_estimateUserOperationGas, hex-encoded.
type GasEstimateJSON struct {
	PreVerificationGas   *hexutil.Big `json:"preVerificationGas"`
	VerificationGasLimit *hexutil.Big `json:"verificationGasLimit"`
	CallGasLimit         *hexutil.Big `json:"callGasLimit"`
}

func bigOrNil(v *hexutil.Big) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}

// ToOptionalGas converts the wire JSON into the userop.OptionalGas the estimator's core consumes.
func (r UserOperationOptionalGasJSON) ToOptionalGas() userop.OptionalGas {
	return &userop.OptionalGasV06{
		Sender_:               r.Sender,
		Nonce_:                bigOrNil(r.Nonce),
		InitCode_:             r.InitCode,
		CallData_:             r.CallData,
		CallGasLimit_:         bigOrNil(r.CallGasLimit),
		VerificationGasLimit_: bigOrNil(r.VerificationGasLimit),
		PreVerificationGas_:   bigOrNil(r.PreVerificationGas),
		MaxFeePerGas_:         bigOrNil(r.MaxFeePerGas),
		MaxPriorityFeePerGas_: bigOrNil(r.MaxPriorityFeePerGas),
		PaymasterAndData_:     r.PaymasterAndData,
		Signature_:            r.Signature,
	}
}

// FromEstimate converts the estimator's result into its wire JSON shape.
func FromEstimate(e *gas.Estimate) GasEstimateJSON {
	return GasEstimateJSON{
		PreVerificationGas:   (*hexutil.Big)(e.PreVerificationGas),
		VerificationGasLimit: (*hexutil.Big)(e.VerificationGasLimit),
		CallGasLimit:         (*hexutil.Big)(e.CallGasLimit),
	}
}

// ErrorJSON is the JSON-RPC-shaped error body the front door returns for a classified estimator
// failure, mirroring rpcerr.Error's fields.
type ErrorJSON struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e ErrorJSON) String() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
