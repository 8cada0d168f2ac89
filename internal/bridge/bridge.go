package bridge

import (
	"context"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/domain"
	"github.com/dkeye/Bridge/internal/rpc"
	"github.com/rs/zerolog/log"
)

// Bridge wires the client endpoint onto one session: inbound client.*
// handlers armed while the session is up, outbound agent calls on demand.
type Bridge struct {
	sess    core.Session
	disp    *rpc.Dispatcher
	caller  *rpc.Caller
	surface Surface
}

func New(sess core.Session, caller *rpc.Caller, surface Surface) *Bridge {
	return &Bridge{
		sess:    sess,
		disp:    rpc.NewDispatcher(sess),
		caller:  caller,
		surface: surface,
	}
}

// Watch re-arms the bridge on every connection state change. Call once at
// endpoint construction; the session owner drives the lifecycle.
func (b *Bridge) Watch() {
	b.sess.OnStateChange(func(s core.ConnState) {
		switch s {
		case core.StateConnected:
			b.Arm()
		case core.StateDisconnected:
			b.Disarm()
		}
	})
	if b.sess.State() == core.StateConnected {
		b.Arm()
	}
}

// Arm (re)binds the client handlers. Safe to call repeatedly: registration
// is last-write-wins, so bindings from a previous session never linger.
func (b *Bridge) Arm() {
	b.disp.Register(domain.MethodClickButton, ClickButton(b.surface))
	b.disp.Register(domain.MethodGreet, Greet())
	log.Info().Str("module", "bridge").Msg("bridge armed")
}

func (b *Bridge) Disarm() {
	b.disp.Unregister(domain.MethodClickButton)
	b.disp.Unregister(domain.MethodGreet)
	log.Info().Str("module", "bridge").Msg("bridge disarmed")
}

// RequestDOMElements asks the agent for its element snapshot. The payload is
// a JSON-stringified string: dom_elements double-encodes by convention.
func (b *Bridge) RequestDOMElements(ctx context.Context, payload string) (string, error) {
	enc, err := rpc.Encode(payload)
	if err != nil {
		return "", err
	}
	return b.caller.Call(ctx, b.sess, domain.MethodDOMElements, enc)
}

// SendAction forwards a bare action name to the agent.
func (b *Bridge) SendAction(ctx context.Context, action string) (string, error) {
	return b.caller.Call(ctx, b.sess, domain.MethodAgentAction, action)
}
