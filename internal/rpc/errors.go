package rpc

import (
	"errors"
	"fmt"
)

// ErrAgentNotFound is terminal: the retry budget is spent and no agent-capable
// peer ever appeared on the roster.
var ErrAgentNotFound = errors.New("rpc: agent peer not found")

// DecodeError reports malformed JSON where a structured payload was expected.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("rpc: decode: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError wraps a send/receive failure that happened after a peer was
// resolved. It is surfaced immediately and never retried: "peer not yet
// present" is retried, "call failed" is not.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc: transport failure on %q: %v", e.Method, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }
