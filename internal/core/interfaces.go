package core

import (
	"context"

	"github.com/dkeye/Bridge/internal/domain"
)

type SessionID string

// ConnState is the coarse lifecycle of one session transport.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Handler services one inbound call and returns the reply payload verbatim.
type Handler func(ctx context.Context, call domain.Call) (string, error)

// Session is the live transport the bridge consumes but never owns: it
// observes connection state and the peer roster, sends named calls, and binds
// inbound-call handlers. Connect/disconnect lifecycle stays with the owner.
type Session interface {
	State() ConnState
	LocalIdentity() string
	// Peers returns the current remote roster ordered by join. Callers must
	// re-query on every resolution attempt; peers join and leave at any time.
	Peers() []domain.Peer
	// SendCall sends a named call to dest and waits for the string reply.
	// It fails on transport errors; reply decoding is the caller's business.
	SendCall(ctx context.Context, dest, method, payload string) (string, error)
	RegisterHandler(method string, h Handler)
	UnregisterHandler(method string)
	// OnStateChange subscribes fn to connected/disconnected transitions.
	OnStateChange(fn func(ConnState))
}
