package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/domain"
	"github.com/dkeye/Bridge/internal/rpc"
)

func TestWatchArmsAndDisarmsWithSession(t *testing.T) {
	fs := newFakeSession()
	fs.state = core.StateIdle

	b := New(fs, rpc.NewCaller(), NewElementRegistry())
	b.Watch()

	if fs.handler(domain.MethodClickButton) != nil {
		t.Fatal("handlers bound before the session connected")
	}

	fs.fire(core.StateConnected)
	if fs.handler(domain.MethodClickButton) == nil || fs.handler(domain.MethodGreet) == nil {
		t.Fatal("handlers not bound after connect")
	}

	fs.fire(core.StateDisconnected)
	if fs.handler(domain.MethodClickButton) != nil || fs.handler(domain.MethodGreet) != nil {
		t.Fatal("handlers still bound after disconnect")
	}
}

func TestWatchArmsImmediatelyWhenAlreadyConnected(t *testing.T) {
	fs := newFakeSession()

	b := New(fs, rpc.NewCaller(), NewElementRegistry())
	b.Watch()

	if fs.handler(domain.MethodClickButton) == nil {
		t.Fatal("handlers not bound for an already-connected session")
	}
}

func TestRequestDOMElementsDoubleEncodes(t *testing.T) {
	fs := newFakeSession()
	fs.peers = []domain.Peer{{Identity: "agent-1", IsAgent: true}}
	fs.reply = `"[]"`

	b := New(fs, &rpc.Caller{MaxRetries: 0, BaseDelay: time.Millisecond}, NewElementRegistry())

	got, err := b.RequestDOMElements(context.Background(), "interactive")
	if err != nil {
		t.Fatalf("RequestDOMElements: %v", err)
	}
	if got != `"[]"` {
		t.Fatalf("reply = %q", got)
	}
	if fs.lastMethod != domain.MethodDOMElements {
		t.Fatalf("method = %q", fs.lastMethod)
	}
	if fs.lastPayload != `"interactive"` {
		t.Fatalf("payload must be a JSON-stringified string, got %q", fs.lastPayload)
	}
}

func TestSendActionForwardsBarePayload(t *testing.T) {
	fs := newFakeSession()
	fs.peers = []domain.Peer{{Identity: "agent-1", IsAgent: true}}
	fs.reply = "ack:say_hello"

	b := New(fs, &rpc.Caller{MaxRetries: 0, BaseDelay: time.Millisecond}, NewElementRegistry())

	got, err := b.SendAction(context.Background(), "say_hello")
	if err != nil {
		t.Fatalf("SendAction: %v", err)
	}
	if got != "ack:say_hello" {
		t.Fatalf("reply = %q", got)
	}
	if fs.lastMethod != domain.MethodAgentAction {
		t.Fatalf("method = %q", fs.lastMethod)
	}
	if fs.lastPayload != "say_hello" {
		t.Fatalf("payload = %q", fs.lastPayload)
	}
}
