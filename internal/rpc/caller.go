package rpc

import (
	"context"
	"time"

	"github.com/dkeye/Bridge/internal/config"
	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// Caller issues named calls to the agent peer, waiting for one to join when
// the roster is still empty.
//
// One outbound call moves RESOLVING → SENDING → DONE; a missing agent loops
// RESOLVING → WAITING → RESOLVING until the budget runs out.
type Caller struct {
	// MaxRetries is the number of additional resolution attempts after the
	// initial one.
	MaxRetries int
	// BaseDelay scales linearly with the attempt index: retry n waits
	// BaseDelay*n, so 2s, 4s, 6s with the defaults.
	BaseDelay time.Duration
	// CallTimeout bounds the round trip once a peer is resolved.
	// Zero leaves the transport's own timeout in charge.
	CallTimeout time.Duration
}

func NewCaller() *Caller {
	return &Caller{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// CallerFromConfig builds a Caller from the rpc config section. A
// non-positive delay falls back to the default; MaxRetries 0 is a valid
// single-attempt budget, so only negative values are replaced.
func CallerFromConfig(cfg config.RPCConfig) *Caller {
	c := &Caller{
		MaxRetries:  cfg.MaxRetries,
		BaseDelay:   cfg.BaseDelay,
		CallTimeout: cfg.CallTimeout,
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	return c
}

// Call resolves the agent peer and sends one named call, returning the raw
// reply string. Structured replies are decoded by the caller's invoker, not
// here: not every reply is JSON.
func (c *Caller) Call(ctx context.Context, sess core.Session, method, payload string) (string, error) {
	peer, err := c.resolveAgent(ctx, sess)
	if err != nil {
		return "", err
	}

	sendCtx := ctx
	if c.CallTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, c.CallTimeout)
		defer cancel()
	}

	reply, err := sess.SendCall(sendCtx, peer.Identity, method, payload)
	if err != nil {
		return "", &TransportError{Method: method, Err: err}
	}
	return reply, nil
}

// resolveAgent re-queries the roster before every attempt; the agent may join
// after the call is first issued, so nothing is cached across attempts.
func (c *Caller) resolveAgent(ctx context.Context, sess core.Session) (domain.Peer, error) {
	for attempt := 0; ; attempt++ {
		if peer, ok := FindAgent(sess.Peers()); ok {
			return peer, nil
		}
		if attempt >= c.MaxRetries {
			log.Warn().Str("module", "rpc.caller").Int("attempts", attempt+1).Msg("agent never joined")
			return domain.Peer{}, ErrAgentNotFound
		}
		delay := c.BaseDelay * time.Duration(attempt+1)
		log.Debug().Str("module", "rpc.caller").Int("attempt", attempt).Dur("delay", delay).Msg("no agent yet, backing off")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Peer{}, ctx.Err()
		case <-timer.C:
		}
	}
}
