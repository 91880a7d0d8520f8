package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Coedit/internal/app/orch"
	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
	"github.com/dkeye/Coedit/internal/metrics"
)

// Limits are the per-connection transport settings.
type Limits struct {
	ReadLimit    int64
	PingPeriod   time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
	RateLimit    int
	RateInterval time.Duration
}

// SignalWSController bridges WebSocket connections to one relay instance.
type SignalWSController struct {
	Orch     *orch.Orchestrator
	Identity core.IdentityProvider
	Metrics  *metrics.Metrics

	limits   Limits
	limiter  *RateLimiter
	upgrader websocket.Upgrader
}

// NewSignalWSController wires a relay to the WebSocket transport. checkOrigin
// guards the upgrade; nil accepts every origin.
func NewSignalWSController(o *orch.Orchestrator, idp core.IdentityProvider, m *metrics.Metrics, limits Limits, checkOrigin func(*http.Request) bool) *SignalWSController {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	ctl := &SignalWSController{
		Orch:     o,
		Identity: idp,
		Metrics:  m,
		limits:   limits,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
	}
	if limits.RateLimit > 0 {
		ctl.limiter = NewRateLimiter(limits.RateLimit, limits.RateInterval)
	}
	return ctl
}

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
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
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

// HandleSignal upgrades the request and registers the connection. Requests
// without identity are still accepted; the relay drops them on their first
// gated event.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	identity, err := ctl.Identity.Identify(c.Request)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("anonymous connection")
		identity = domain.Identity{}
	}

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	id := domain.NewConnID()
	log.Info().Str("module", "signal").Str("mode", string(ctl.Orch.Mode())).Str("conn", string(id)).Str("identity", identity.String()).Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.limits.SendBuffer),
	}
	sess := core.NewMemberSession(domain.NewMember(id, identity), conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, id, conn)
}
