package signal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotConnected = errors.New("signal: session not connected")
	ErrSendBuffer   = errors.New("signal: send buffer full")
)

// ClientSession implements core.Session over a hub websocket. It tracks the
// roster from hub broadcasts, correlates call replies by frame id, and hands
// inbound calls to registered handlers.
type ClientSession struct {
	url   string
	name  string
	agent bool

	mu       sync.RWMutex
	conn     *websocket.Conn
	state    core.ConnState
	identity string
	peers    []domain.Peer
	handlers map[string]core.Handler
	pending  map[string]chan replyFrame
	watchers []func(core.ConnState)

	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc

	newDirect  func(peer string) (core.DataConnection, error)
	direct     core.DataConnection
	directPeer string
	directOpen bool
}

func NewClientSession(url, name string, agent bool) *ClientSession {
	return &ClientSession{
		url:      url,
		name:     name,
		agent:    agent,
		state:    core.StateIdle,
		handlers: make(map[string]core.Handler),
		pending:  make(map[string]chan replyFrame),
	}
}

// Connect dials the hub and joins. The session reports StateConnected only
// after the hub acknowledges the join.
func (s *ClientSession) Connect(ctx context.Context) error {
	s.setState(core.StateConnecting)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.setState(core.StateDisconnected)
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.conn = conn
	s.send = make(chan []byte, 64)
	s.ctx = runCtx
	s.cancel = cancel
	s.mu.Unlock()

	go s.writeLoop(runCtx, conn)
	go s.readLoop(conn)

	join := struct {
		Type  string `json:"type"`
		Name  string `json:"name"`
		Agent bool   `json:"agent"`
	}{Type: frameJoin, Name: s.name, Agent: s.agent}
	b, _ := json.Marshal(join)
	return s.enqueue(b)
}

// Close leaves politely and tears the connection down.
func (s *ClientSession) Close() {
	b, _ := json.Marshal(map[string]any{"type": frameLeave})
	_ = s.enqueue(b)
	s.disconnect()
}

func (s *ClientSession) State() core.ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *ClientSession) LocalIdentity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Peers returns the remote roster in join order, self excluded.
func (s *ClientSession) Peers() []domain.Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Peer, 0, len(s.peers))
	for _, p := range s.peers {
		if p.Identity == s.identity {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *ClientSession) RegisterHandler(method string, h core.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

func (s *ClientSession) UnregisterHandler(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, method)
}

func (s *ClientSession) OnStateChange(fn func(core.ConnState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// SendCall issues one named call and waits for the correlated reply frame.
func (s *ClientSession) SendCall(ctx context.Context, dest, method, payload string) (string, error) {
	if s.State() != core.StateConnected {
		return "", ErrNotConnected
	}

	id := uuid.NewString()
	ch := make(chan replyFrame, 1)
	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	frame := callFrame{Type: frameCall, ID: id, To: dest, Method: method, Payload: payload}
	b, err := json.Marshal(frame)
	if err != nil {
		return "", err
	}
	if err := s.write(dest, b); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if !r.OK {
			return "", errors.New(r.Error)
		}
		return r.Payload, nil
	}
}

// write prefers an open direct channel to dest, falling back to the hub.
func (s *ClientSession) write(dest string, b []byte) error {
	s.mu.RLock()
	direct := s.direct
	useDirect := s.directOpen && s.directPeer == dest && direct != nil
	s.mu.RUnlock()
	if useDirect {
		if err := direct.Send(b); err == nil {
			return nil
		}
		log.Warn().Str("module", "signal.client").Str("peer", dest).Msg("direct send failed, falling back to hub")
	}
	return s.enqueue(b)
}

func (s *ClientSession) enqueue(b []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.send == nil {
		return ErrNotConnected
	}
	select {
	case s.send <- b:
		return nil
	default:
		return ErrSendBuffer
	}
}

func (s *ClientSession) writeLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-s.send:
			if err := conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal.client").Msg("writeLoop set deadline")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal.client").Msg("writeLoop write error")
				return
			}
		}
	}
}

func (s *ClientSession) readLoop(conn *websocket.Conn) {
	defer s.disconnect()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Warn().Err(err).Str("module", "signal.client").Msg("readLoop closed")
			return
		}
		s.handleIncoming(data, s.enqueueTo)
	}
}

// enqueueTo ignores the destination hint; hub frames route themselves.
func (s *ClientSession) enqueueTo(_ string, b []byte) error { return s.enqueue(b) }

// handleIncoming services one frame from either the hub socket or a direct
// channel. reply is the path answers must travel back on.
func (s *ClientSession) handleIncoming(data []byte, reply func(dest string, b []byte) error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("bad frame")
		return
	}

	switch env.Type {
	case frameJoined:
		var f struct {
			Identity string `json:"identity"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return
		}
		s.mu.Lock()
		s.identity = f.Identity
		s.mu.Unlock()
		s.setState(core.StateConnected)
	case frameRoster:
		var f rosterFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return
		}
		peers := make([]domain.Peer, 0, len(f.Peers))
		for _, p := range f.Peers {
			peers = append(peers, domain.Peer{Identity: p.Identity, Username: p.Username, IsAgent: p.IsAgent})
		}
		s.mu.Lock()
		s.peers = peers
		s.mu.Unlock()
	case frameReply:
		var f replyFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return
		}
		s.mu.RLock()
		ch, ok := s.pending[f.ID]
		s.mu.RUnlock()
		if !ok {
			log.Warn().Str("module", "signal.client").Str("id", f.ID).Msg("reply with no pending call")
			return
		}
		// Non-blocking: a duplicate reply for an already-answered id must not
		// stall the read path.
		select {
		case ch <- f:
		default:
			log.Warn().Str("module", "signal.client").Str("id", f.ID).Msg("duplicate reply dropped")
		}
	case frameCall:
		var f callFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return
		}
		s.dispatchCall(f, reply)
	case frameOffer, frameAnswer, frameCandidate:
		s.handleNegotiation(env.Type, data)
	case framePong, frameLeft:
	case frameError:
		log.Warn().Str("module", "signal.client").RawJSON("frame", data).Msg("hub error frame")
	default:
		log.Warn().Str("module", "signal.client").Str("type", env.Type).Msg("unknown frame")
	}
}

// dispatchCall runs the handler off the read loop so one slow call cannot
// stall the session; calls are still launched in delivery order.
func (s *ClientSession) dispatchCall(f callFrame, reply func(dest string, b []byte) error) {
	s.mu.RLock()
	h, ok := s.handlers[f.Method]
	ctx := s.ctx
	s.mu.RUnlock()

	if !ok {
		log.Warn().Str("module", "signal.client").Str("method", f.Method).Msg("call for unbound method")
		r := replyFrame{Type: frameReply, ID: f.ID, To: f.From, OK: false, Error: "no handler for " + f.Method}
		b, _ := json.Marshal(r)
		_ = reply(f.From, b)
		return
	}

	go func() {
		out, err := h(ctx, domain.Call{Method: f.Method, Payload: f.Payload, CallerIdentity: f.From})
		r := replyFrame{Type: frameReply, ID: f.ID, To: f.From, OK: err == nil, Payload: out}
		if err != nil {
			r.Error = err.Error()
		}
		b, merr := json.Marshal(r)
		if merr != nil {
			log.Error().Err(merr).Str("module", "signal.client").Msg("reply marshal")
			return
		}
		if err := reply(f.From, b); err != nil {
			log.Error().Err(err).Str("module", "signal.client").Str("method", f.Method).Msg("reply send failed")
		}
	}()
}

func (s *ClientSession) setState(st core.ConnState) {
	s.mu.Lock()
	if s.state == st {
		s.mu.Unlock()
		return
	}
	s.state = st
	watchers := make([]func(core.ConnState), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	log.Info().Str("module", "signal.client").Str("state", st.String()).Msg("session state")
	for _, fn := range watchers {
		fn(st)
	}
}

func (s *ClientSession) disconnect() {
	s.mu.Lock()
	if s.state == core.StateDisconnected {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	cancel := s.cancel
	direct := s.direct
	pending := s.pending
	s.pending = make(map[string]chan replyFrame)
	s.direct = nil
	s.directOpen = false
	s.mu.Unlock()

	// Fail every in-flight call before announcing the state change. A call
	// whose reply already landed keeps that reply; the send must not block.
	for id, ch := range pending {
		select {
		case ch <- replyFrame{Type: frameReply, ID: id, OK: false, Error: "session disconnected"}:
		default:
		}
	}
	if direct != nil {
		direct.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
	if cancel != nil {
		cancel()
	}
	s.setState(core.StateDisconnected)
}
