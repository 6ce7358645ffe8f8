package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rendezvous/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// Controller is the signaling router: it owns the WS upgrade, the
// per-connection pumps and the dispatch of inbound protocol messages
// into the registry.
type Controller struct {
	Registry     *core.Registry
	ReadLimit    int64
	SendBuffer   int
	WriteTimeout time.Duration
}

func NewController(reg *core.Registry, readLimit int64, sendBuffer int, writeTimeout time.Duration) *Controller {
	return &Controller{
		Registry:     reg,
		ReadLimit:    readLimit,
		SendBuffer:   sendBuffer,
		WriteTimeout: writeTimeout,
	}
}

// newSessionID derives the registry identity of one connection. The
// cookie token is shared by every tab of the same browser, so each
// upgrade gets its own suffix: membership is per connection, not per
// browser.
func newSessionID(token string) core.SessionID {
	return core.SessionID(token + ":" + uuid.NewString()[:8])
}

// WsSignalConn wraps a websocket with a buffered outbound queue so
// TrySend never blocks the caller.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
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

func (c *WsSignalConn) Close() {
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

// HandleSignal upgrades the request and runs the connection until the
// peer goes away or ctx is canceled.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	sid := newSessionID(token)
	log.Info().Str("module", "signal").Str("client", token).Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
