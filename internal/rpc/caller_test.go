package rpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Bridge/internal/config"
	"github.com/dkeye/Bridge/internal/domain"
)

func TestCallerExhaustsRetries(t *testing.T) {
	fs := newFakeSession()
	c := &Caller{MaxRetries: 3, BaseDelay: 10 * time.Millisecond}

	start := time.Now()
	_, err := c.Call(context.Background(), fs, "agent.action", "ping")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
	if fs.peerReads != 4 {
		t.Fatalf("expected 4 resolution attempts (1 initial + 3 retries), got %d", fs.peerReads)
	}
	// Linear schedule: 10ms + 20ms + 30ms between the four attempts.
	if elapsed < 60*time.Millisecond {
		t.Fatalf("retries finished too fast: %v", elapsed)
	}
	if fs.sendCalls != 0 {
		t.Fatal("no call must be sent without a resolved peer")
	}
}

func TestCallerSucceedsWhenAgentJoinsLate(t *testing.T) {
	fs := newFakeSession()
	fs.onPeerRead = func(reads int) {
		// The agent joins between the first and second attempt.
		if reads == 1 {
			fs.peers = []domain.Peer{{Identity: "agent-1", IsAgent: true}}
		}
	}
	var sentTo string
	fs.sendFn = func(_ context.Context, dest, method, payload string) (string, error) {
		sentTo = dest
		return "reply", nil
	}

	c := &Caller{MaxRetries: 3, BaseDelay: 5 * time.Millisecond}
	got, err := c.Call(context.Background(), fs, "agent.action", "ping")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "reply" {
		t.Fatalf("got %q", got)
	}
	if fs.peerReads != 2 {
		t.Fatalf("expected resolution on attempt 2, got %d reads", fs.peerReads)
	}
	if sentTo != "agent-1" {
		t.Fatalf("sent to %q", sentTo)
	}
}

func TestCallerFromConfig(t *testing.T) {
	c := CallerFromConfig(config.RPCConfig{
		MaxRetries:  1,
		BaseDelay:   5 * time.Millisecond,
		CallTimeout: 3 * time.Second,
	})
	if c.CallTimeout != 3*time.Second {
		t.Fatalf("call timeout = %v", c.CallTimeout)
	}

	// The configured budget drives the attempts, not the defaults.
	fs := newFakeSession()
	_, err := c.Call(context.Background(), fs, "agent.action", "ping")
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
	if fs.peerReads != 2 {
		t.Fatalf("expected 2 resolution attempts (1 initial + 1 retry), got %d", fs.peerReads)
	}
}

func TestCallerFromConfigFallbacks(t *testing.T) {
	c := CallerFromConfig(config.RPCConfig{MaxRetries: -1})
	if c.MaxRetries != DefaultMaxRetries {
		t.Fatalf("max retries = %d", c.MaxRetries)
	}
	if c.BaseDelay != DefaultBaseDelay {
		t.Fatalf("base delay = %v", c.BaseDelay)
	}

	// A zero-retry budget is a legitimate single-attempt configuration.
	if got := CallerFromConfig(config.RPCConfig{BaseDelay: time.Second}); got.MaxRetries != 0 {
		t.Fatalf("max retries = %d", got.MaxRetries)
	}
}

func TestCallerTransportFailureNotRetried(t *testing.T) {
	fs := newFakeSession()
	fs.peers = []domain.Peer{{Identity: "agent-1", IsAgent: true}}
	cause := errors.New("connection reset")
	fs.sendFn = func(context.Context, string, string, string) (string, error) {
		return "", cause
	}

	c := &Caller{MaxRetries: 3, BaseDelay: time.Millisecond}
	_, err := c.Call(context.Background(), fs, "dom_elements", `"x"`)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("transport error must wrap the underlying cause")
	}
	if te.Method != "dom_elements" {
		t.Fatalf("method = %q", te.Method)
	}
	if fs.sendCalls != 1 {
		t.Fatalf("transport failures must not be retried, sent %d times", fs.sendCalls)
	}
}

func TestCallerAbortsOnContextCancel(t *testing.T) {
	fs := newFakeSession()
	c := &Caller{MaxRetries: 3, BaseDelay: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Call(ctx, fs, "agent.action", "ping")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("cancel did not interrupt the backoff wait")
	}
}

func TestCallerCallTimeout(t *testing.T) {
	fs := newFakeSession()
	fs.peers = []domain.Peer{{Identity: "agent-1", IsAgent: true}}
	fs.sendFn = func(ctx context.Context, _, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	c := &Caller{MaxRetries: 0, BaseDelay: time.Millisecond, CallTimeout: 10 * time.Millisecond}
	_, err := c.Call(context.Background(), fs, "agent.action", "ping")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}
}
