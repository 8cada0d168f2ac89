package rpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/domain"
	"github.com/rs/zerolog/log"
)

// Dispatcher binds named handlers onto the local endpoint and shields the
// transport from handler failures: an error (or panic) inside a handler
// becomes a {"ok":false,"error":...} reply, never an exception crossing the
// endpoint. One failing handler cannot crash the endpoint or block others.
type Dispatcher struct {
	sess core.Session

	mu       sync.Mutex
	handlers map[string]core.Handler
}

func NewDispatcher(sess core.Session) *Dispatcher {
	return &Dispatcher{
		sess:     sess,
		handlers: make(map[string]core.Handler),
	}
}

// Register binds h to method. Registering an already-bound name silently
// replaces the prior binding: the bridge re-arms on every session
// re-establishment and stale bindings must not linger.
func (d *Dispatcher) Register(method string, h core.Handler) {
	d.mu.Lock()
	d.handlers[method] = h
	d.mu.Unlock()
	d.sess.RegisterHandler(method, d.dispatch)
	log.Debug().Str("module", "rpc.dispatcher").Str("method", method).Msg("handler registered")
}

// Unregister removes a binding. Unknown names are a no-op.
func (d *Dispatcher) Unregister(method string) {
	d.mu.Lock()
	_, ok := d.handlers[method]
	delete(d.handlers, method)
	d.mu.Unlock()
	if ok {
		d.sess.UnregisterHandler(method)
		log.Debug().Str("module", "rpc.dispatcher").Str("method", method).Msg("handler unregistered")
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, call domain.Call) (reply string, err error) {
	d.mu.Lock()
	h, ok := d.handlers[call.Method]
	d.mu.Unlock()
	if !ok {
		// Raced with Unregister; reply with a failure envelope so the remote
		// caller is not left hanging.
		return Failure("unknown method: " + call.Method), nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "rpc.dispatcher").Str("method", call.Method).Interface("panic", r).Msg("handler panicked")
			reply, err = Failure(fmt.Sprint(r)), nil
		}
	}()

	out, herr := h(ctx, call)
	if herr != nil {
		log.Error().Err(herr).Str("module", "rpc.dispatcher").Str("method", call.Method).Str("caller", call.CallerIdentity).Msg("handler failed")
		return Failure(herr.Error()), nil
	}
	return out, nil
}
