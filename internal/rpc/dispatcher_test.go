package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/domain"
)

// fakeSession is a minimal in-memory core.Session for rpc tests.
type fakeSession struct {
	mu          sync.Mutex
	state       core.ConnState
	peers       []domain.Peer
	handlers    map[string]core.Handler
	unregisters int
	peerReads   int
	sendCalls   int
	onPeerRead  func(reads int)
	sendFn      func(ctx context.Context, dest, method, payload string) (string, error)
	watchers    []func(core.ConnState)
}

func newFakeSession() *fakeSession {
	return &fakeSession{state: core.StateConnected, handlers: make(map[string]core.Handler)}
}

func (f *fakeSession) State() core.ConnState { return f.state }
func (f *fakeSession) LocalIdentity() string { return "local" }

func (f *fakeSession) Peers() []domain.Peer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.peerReads++
	out := make([]domain.Peer, len(f.peers))
	copy(out, f.peers)
	// Roster mutations land after the current read, mimicking a late join.
	if f.onPeerRead != nil {
		f.onPeerRead(f.peerReads)
	}
	return out
}

func (f *fakeSession) SendCall(ctx context.Context, dest, method, payload string) (string, error) {
	f.mu.Lock()
	f.sendCalls++
	fn := f.sendFn
	f.mu.Unlock()
	if fn == nil {
		return "", errors.New("no sendFn")
	}
	return fn(ctx, dest, method, payload)
}

func (f *fakeSession) RegisterHandler(method string, h core.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

func (f *fakeSession) UnregisterHandler(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisters++
	delete(f.handlers, method)
}

func (f *fakeSession) OnStateChange(fn func(core.ConnState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchers = append(f.watchers, fn)
}

func (f *fakeSession) fire(s core.ConnState) {
	f.mu.Lock()
	f.state = s
	watchers := make([]func(core.ConnState), len(f.watchers))
	copy(watchers, f.watchers)
	f.mu.Unlock()
	for _, fn := range watchers {
		fn(s)
	}
}

func (f *fakeSession) handler(method string) core.Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[method]
}

func dispatchVia(t *testing.T, fs *fakeSession, call domain.Call) string {
	t.Helper()
	h := fs.handler(call.Method)
	if h == nil {
		t.Fatalf("no transport handler bound for %s", call.Method)
	}
	reply, err := h(context.Background(), call)
	if err != nil {
		t.Fatalf("dispatch must never return an error, got %v", err)
	}
	return reply
}

func TestDispatcherLastWriteWins(t *testing.T) {
	fs := newFakeSession()
	d := NewDispatcher(fs)

	d.Register("m", func(context.Context, domain.Call) (string, error) { return "first", nil })
	d.Register("m", func(context.Context, domain.Call) (string, error) { return "second", nil })

	got := dispatchVia(t, fs, domain.Call{Method: "m"})
	if got != "second" {
		t.Fatalf("expected the second binding to win, got %q", got)
	}
}

func TestDispatcherUnregisterIdempotent(t *testing.T) {
	fs := newFakeSession()
	d := NewDispatcher(fs)

	d.Register("m", func(context.Context, domain.Call) (string, error) { return "", nil })
	d.Unregister("m")
	d.Unregister("m")

	if fs.handler("m") != nil {
		t.Fatal("handler still bound after unregister")
	}
	if fs.unregisters != 1 {
		t.Fatalf("second unregister must be a no-op, transport saw %d", fs.unregisters)
	}
	// Unknown names are fine too.
	d.Unregister("never-bound")
}

func TestDispatcherConvertsErrorToFailureEnvelope(t *testing.T) {
	fs := newFakeSession()
	d := NewDispatcher(fs)

	d.Register("m", func(context.Context, domain.Call) (string, error) {
		return "", errors.New("boom")
	})

	got := dispatchVia(t, fs, domain.Call{Method: "m"})
	if got != `{"ok":false,"error":"boom"}` {
		t.Fatalf("got %q", got)
	}
}

func TestDispatcherSurvivesPanic(t *testing.T) {
	fs := newFakeSession()
	d := NewDispatcher(fs)

	d.Register("m", func(context.Context, domain.Call) (string, error) {
		panic("kaboom")
	})

	got := dispatchVia(t, fs, domain.Call{Method: "m"})
	var r Reply
	if err := Decode(got, &r); err != nil {
		t.Fatalf("reply not an envelope: %v", err)
	}
	if r.OK || r.Error != "kaboom" {
		t.Fatalf("got %+v", r)
	}
}

func TestDispatcherConcurrentMethodsNoCrossTalk(t *testing.T) {
	fs := newFakeSession()
	d := NewDispatcher(fs)

	for i := 0; i < 4; i++ {
		method := fmt.Sprintf("m%d", i)
		want := fmt.Sprintf("reply-%d", i)
		d.Register(method, func(context.Context, domain.Call) (string, error) {
			return want, nil
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			method := fmt.Sprintf("m%d", i%4)
			h := fs.handler(method)
			got, err := h(context.Background(), domain.Call{Method: method})
			if err != nil {
				t.Errorf("%s returned error %v", method, err)
				return
			}
			if got != fmt.Sprintf("reply-%d", i%4) {
				t.Errorf("%s replied %q", method, got)
			}
		}(i)
	}
	wg.Wait()
}
