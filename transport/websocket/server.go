package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Solaris-FN/Hermes/gateway"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer. Stanzas are small, but auth
	// payloads and chat bodies can run to a few kilobytes.
	maxMessageSize = 64 << 10

	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{"xmpp"},
	CheckOrigin: func(r *http.Request) bool {
		// Game clients connect from arbitrary origins.
		return true
	},
}

// ErrSendBufferFull is returned when a connection's outbound buffer is
// saturated; the frame is dropped rather than blocking the sender.
var ErrSendBufferFull = errors.New("websocket: send buffer full")

// ErrConnClosed is returned for sends to a closed connection.
var ErrConnClosed = errors.New("websocket: connection closed")

// Server accepts WebSocket connections and feeds them into the gateway.
type Server struct {
	gw  *gateway.Gateway
	log *zap.Logger
}

// NewServer creates a transport server bound to one gateway instance.
func NewServer(gw *gateway.Gateway, log *zap.Logger) *Server {
	return &Server{gw: gw, log: log}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &Conn{
		id:     uuid.New(),
		ws:     ws,
		send:   make(chan string, sendBufferSize),
		closed: make(chan struct{}),
		log:    s.log,
	}

	s.gw.Connect(conn.id, conn)

	go conn.writePump()
	conn.readPump(r.Context(), s.gw)
}

// Conn is one live WebSocket connection. It implements gateway.Sender.
type Conn struct {
	id   uuid.UUID
	ws   *websocket.Conn
	send chan string
	log  *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// Send queues one text frame for delivery. It never blocks: a saturated
// buffer or a closed connection yields an error and the frame is dropped.
func (c *Conn) Send(frame string) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// readPump pumps frames from the WebSocket into the gateway. It runs on the
// connection's own goroutine, which is what gives the engine its
// per-connection ordering guarantee.
func (c *Conn) readPump(ctx context.Context, gw *gateway.Gateway) {
	defer func() {
		gw.Disconnect(c.id)
		c.Close()
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				gw.ReportError(c.id, err, "websocket read")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		gw.HandleFrame(ctx, c.id, string(data))
	}
}

// writePump pumps queued frames to the WebSocket and keeps the connection
// alive with periodic pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				c.log.Debug("websocket write failed",
					zap.String("connection_id", c.id.String()),
					zap.Error(err))
				return
			}
		case <-c.closed:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
