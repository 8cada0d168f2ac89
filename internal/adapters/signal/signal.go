package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dkeye/Bridge/internal/app"
	"github.com/dkeye/Bridge/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

// BridgeWSController is the hub side of the signal channel.
type BridgeWSController struct {
	Orch    *app.Orchestrator
	Limiter *CallRateLimiter
}

func NewBridgeWSController(orch *app.Orchestrator, limiter *CallRateLimiter) *BridgeWSController {
	return &BridgeWSController{Orch: orch, Limiter: limiter}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleBridge upgrades the request and services one peer until the
// connection dies.
func (ctl *BridgeWSController) HandleBridge(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade failed")
		return
	}

	conn := &wsConn{conn: ws, send: make(chan core.Frame, 64)}
	peer := ctl.Orch.Registry.GetOrCreatePeer(sid)
	ps := core.NewPeerSession(peer, conn)

	connCtx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.BindSignal(sid, ps, cancel)

	go ctl.writePump(connCtx, conn)
	ctl.readPump(connCtx, sid, conn)

	// readPump returned: the peer is gone for good.
	ctl.Orch.Leave(sid)
	ctl.Orch.Registry.Unbind(sid)
	ctl.broadcastRoster()
}
