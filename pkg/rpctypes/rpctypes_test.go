package rpctypes

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func validEnvelope() []byte {
	return []byte(`{
		"userOperation": {
			"sender": "0x1306b01bc3e4ad202612d3843387e94737673f53",
			"nonce": "0x1",
			"callData": "0x",
			"signature": "0x"
		},
		"entryPoint": "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"
	}`)
}

// TestValidateEnvelope_AcceptsWellFormedRequest calls ValidateEnvelope on a minimal well-formed
// request body. Expects nil.
func TestValidateEnvelope_AcceptsWellFormedRequest(t *testing.T) {
	if err := ValidateEnvelope(validEnvelope()); err != nil {
		t.Fatalf("got err %v, want nil", err)
	}
}

// TestValidateEnvelope_RejectsMissingRequiredField calls ValidateEnvelope on a body missing the
// required entryPoint field. Expects an error.
func TestValidateEnvelope_RejectsMissingRequiredField(t *testing.T) {
	body := []byte(`{"userOperation": {"sender": "0x1306b01bc3e4ad202612d3843387e94737673f53", "nonce": "0x1", "callData": "0x", "signature": "0x"}}`)
	if err := ValidateEnvelope(body); err == nil {
		t.Fatal("got nil, want err")
	}
}

// TestValidateEnvelope_RejectsBadHexPattern calls ValidateEnvelope on a body whose sender isn't a
// well-formed hex address. Expects an error.
func TestValidateEnvelope_RejectsBadHexPattern(t *testing.T) {
	body := []byte(`{"userOperation": {"sender": "not-hex", "nonce": "0x1", "callData": "0x", "signature": "0x"}, "entryPoint": "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"}`)
	if err := ValidateEnvelope(body); err == nil {
		t.Fatal("got nil, want err")
	}
}

// TestToOptionalGas_RoundTripsSetFields calls ToOptionalGas on a JSON request with gas fields
// set. Expects each field to carry through to the OptionalGas.
func TestToOptionalGas_RoundTripsSetFields(t *testing.T) {
	callGasLimit := (*hexutil.Big)(big.NewInt(10_000))
	req := UserOperationOptionalGasJSON{
		Sender:       common.HexToAddress("0x1306b01bc3e4ad202612d3843387e94737673f5"),
		Nonce:        (*hexutil.Big)(big.NewInt(1)),
		CallData:     []byte{0x01},
		Signature:    []byte{},
		CallGasLimit: callGasLimit,
	}
	og := req.ToOptionalGas()
	if og.Sender() != req.Sender {
		t.Fatalf("got sender %v, want %v", og.Sender(), req.Sender)
	}
	if og.CallGasLimit().Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("got callGasLimit %v, want 10000", og.CallGasLimit())
	}
	if og.VerificationGasLimit() != nil {
		t.Fatalf("got verificationGasLimit %v, want nil", og.VerificationGasLimit())
	}
}
