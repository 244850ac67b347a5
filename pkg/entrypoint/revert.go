package entrypoint

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// dataError is the shape go-ethereum's rpc.Client error values satisfy when the node attached
// structured revert data to a JSON-RPC error response.
type dataError interface {
	error
	ErrorData() interface{}
}

// RevertData extracts the raw revert bytes from an eth_call error, if the node's JSON-RPC error
// carried them. Returns ok=false for transport errors and other failures with no revert payload.
func RevertData(err error) (data []byte, ok bool) {
	de, isDataErr := err.(dataError)
	if !isDataErr {
		return nil, false
	}
	switch v := de.ErrorData().(type) {
	case string:
		decoded, decErr := hexutil.Decode(v)
		if decErr != nil {
			return nil, false
		}
		return decoded, true
	case []byte:
		return v, true
	default:
		return nil, false
	}
}
