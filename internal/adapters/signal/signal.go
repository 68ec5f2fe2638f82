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

	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/config"
	"github.com/dkeye/Sketch/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// SessionWSController owns the websocket side of a board session: the
// upgrade, the pumps, and the per-event handlers.
type SessionWSController struct {
	Orch *app.Orchestrator

	throttle     *CursorThrottle
	readLimit    int64
	sendBuffer   int
	writeTimeout time.Duration
	pingPeriod   time.Duration
}

func NewSessionWSController(orch *app.Orchestrator, cfg *config.Config) *SessionWSController {
	return &SessionWSController{
		Orch:         orch,
		throttle:     NewCursorThrottle(cfg.CursorRate, cfg.CursorWindow),
		readLimit:    cfg.ReadLimit,
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: cfg.WriteTimeout,
		pingPeriod:   cfg.PingPeriod,
	}
}

type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
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

func (c *WsConn) Close() {
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

// HandleSession upgrades the connection, mints its session id, and
// starts the pumps. The id comes from here, not from the client.
func (ctl *SessionWSController) HandleSession(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.sendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(sid, conn, cancel)

	// A kicked or shut-down session must not linger in ReadMessage.
	// Closing the socket forces the read pump out of its blocking read
	// so its deferred Disconnect cleanup runs.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
