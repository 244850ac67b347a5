package gas

import (
	"testing"

	"github.com/AO-Metaplayer/gasestimator/pkg/rpcerr"
)

// TestParseStandardRevertMessage_DecodesErrorString calls parseStandardRevertMessage on an
// Error(string) revert payload built the same way Solidity encodes one. Expects the message back.
func TestParseStandardRevertMessage_DecodesErrorString(t *testing.T) {
	packed, err := errorStringArgs.Pack("execution reverted: insufficient balance")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	raw := append(append([]byte{}, errorStringSelector[:]...), packed...)

	msg, ok := parseStandardRevertMessage(raw)
	if !ok {
		t.Fatal("got ok=false, want true")
	}
	if msg != "execution reverted: insufficient balance" {
		t.Fatalf("got %q, want %q", msg, "execution reverted: insufficient balance")
	}
}

// TestParseStandardRevertMessage_RejectsOpaqueData calls parseStandardRevertMessage on an arbitrary
// byte payload that isn't an Error(string) revert. Expects ok=false.
func TestParseStandardRevertMessage_RejectsOpaqueData(t *testing.T) {
	_, ok := parseStandardRevertMessage([]byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02})
	if ok {
		t.Fatal("got ok=true, want false")
	}
}

// TestClassifyCallRevert_MessageVsBytes calls classifyCallRevert on both an Error(string) payload
// and an opaque payload. Expects the rpcerr code to be RejectedByAccountOrCall either way, and the
// message to reflect which shape was decoded.
func TestClassifyCallRevert_MessageVsBytes(t *testing.T) {
	packed, _ := errorStringArgs.Pack("AA23 reverted")
	withMessage := append(append([]byte{}, errorStringSelector[:]...), packed...)

	err := classifyCallRevert(withMessage)
	rpcErr, ok := err.(*rpcerr.Error)
	if !ok {
		t.Fatalf("got %T, want *rpcerr.Error", err)
	}
	if rpcErr.Code != rpcerr.RejectedByAccountOrCall {
		t.Fatalf("got code %v, want %v", rpcErr.Code, rpcerr.RejectedByAccountOrCall)
	}
	if want := "user operation's call reverted: AA23 reverted"; rpcErr.Message != want {
		t.Fatalf("got message %q, want %q", rpcErr.Message, want)
	}

	opaque := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	err = classifyCallRevert(opaque)
	rpcErr, ok = err.(*rpcerr.Error)
	if !ok {
		t.Fatalf("got %T, want *rpcerr.Error", err)
	}
	if rpcErr.Code != rpcerr.RejectedByAccountOrCall {
		t.Fatalf("got code %v, want %v", rpcErr.Code, rpcerr.RejectedByAccountOrCall)
	}
}

// TestRandomAddress_IsNonZero calls randomAddress. Expects a non-zero address (vanishingly
// unlikely to collide with the zero address if rand.Read is working).
func TestRandomAddress_IsNonZero(t *testing.T) {
	addr, err := randomAddress()
	if err != nil {
		t.Fatalf("got err %v, want nil", err)
	}
	zero := true
	for _, b := range addr.Bytes() {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		t.Fatal("got zero address, want random")
	}
}
