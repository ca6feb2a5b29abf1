package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Solaris-FN/Hermes/identity"
	"github.com/Solaris-FN/Hermes/xmpp"
)

// ErrCloseConnection is returned by a handler when a protocol-order
// violation makes the connection unrecoverable. The engine removes the
// session and closes the transport; it is the only fatal path in the core.
var ErrCloseConnection = errors.New("gateway: close connection")

// handlerFunc is the single shape every stanza handler conforms to,
// whether it completes synchronously or suspends on a backend call.
type handlerFunc func(ctx context.Context, sess *Session, st *xmpp.Stanza) error

// Config wires a Gateway's collaborators.
type Config struct {
	Domain   string
	Identity *identity.Client
	Registry *Registry
	Bus      *EventBus
	Logger   *zap.Logger
}

// Gateway is the session protocol engine. It owns the dispatch table and
// drives the per-connection state machine; all mutable state lives in the
// injected Registry and in the Session records themselves.
type Gateway struct {
	domain   string
	identity *identity.Client
	registry *Registry
	bus      *EventBus
	handlers map[string]handlerFunc
	log      *zap.Logger
}

// New creates a gateway. Registry, Bus and Logger may be nil, in which case
// fresh instances (and a no-op logger) are used.
func New(cfg Config) *Gateway {
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if cfg.Bus == nil {
		cfg.Bus = NewEventBus()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	g := &Gateway{
		domain:   cfg.Domain,
		identity: cfg.Identity,
		registry: cfg.Registry,
		bus:      cfg.Bus,
		log:      cfg.Logger,
	}

	// Read-only after startup.
	g.handlers = map[string]handlerFunc{
		"open":     g.handleOpen,
		"auth":     g.handleAuth,
		"iq":       g.handleIQ,
		"presence": g.handlePresence,
		"message":  g.handleMessage,
	}
	return g
}

// Registry exposes the client registry to out-of-core collaborators such as
// the administrative HTTP surface.
func (g *Gateway) Registry() *Registry { return g.registry }

// Bus exposes the lifecycle event bus.
func (g *Gateway) Bus() *EventBus { return g.bus }

// Domain returns the XMPP domain this gateway serves.
func (g *Gateway) Domain() string { return g.domain }

// Connect registers a new connection and returns its empty session.
func (g *Gateway) Connect(connectionID uuid.UUID, sender Sender) *Session {
	sess := NewSession(connectionID, sender)
	g.registry.Put(sess)
	g.log.Info("client connected", zap.String("connection_id", connectionID.String()))
	g.bus.Publish(Event{Kind: EventClientConnected, Session: sess})
	return sess
}

// Disconnect removes a connection's session. It is a no-op for connections
// that were already evicted or torn down.
func (g *Gateway) Disconnect(connectionID uuid.UUID) {
	sess, ok := g.registry.Get(connectionID)
	if !ok {
		return
	}
	if g.registry.Remove(connectionID) {
		g.log.Info("client disconnected",
			zap.String("connection_id", connectionID.String()),
			zap.String("account_id", sess.AccountID()))
		g.bus.Publish(Event{Kind: EventClientDisconnected, Session: sess})
	}
}

// ReportError publishes a transport-level error for external observers.
func (g *Gateway) ReportError(connectionID uuid.UUID, err error, source string) {
	sess, _ := g.registry.Get(connectionID)
	g.log.Error("connection error",
		zap.String("connection_id", connectionID.String()),
		zap.String("source", source),
		zap.Error(err))
	g.bus.Publish(Event{Kind: EventErrorOccurred, Session: sess, Err: err, Source: source})
}

// HandleFrame processes one inbound text frame for a connection. The
// transport calls it on the connection's own goroutine, which preserves
// per-connection ordering; frames from different connections are handled
// concurrently.
func (g *Gateway) HandleFrame(ctx context.Context, connectionID uuid.UUID, raw string) {
	sess, ok := g.registry.Get(connectionID)
	if !ok {
		return
	}

	st, err := xmpp.Parse(raw)
	if err != nil {
		g.log.Debug("dropping malformed frame",
			zap.String("connection_id", connectionID.String()),
			zap.Error(err))
		return
	}

	handler, ok := g.handlers[st.Name]
	if !ok {
		g.log.Warn("no handler for stanza", zap.String("element", st.Name))
		return
	}

	if err := handler(ctx, sess, st); err != nil {
		if errors.Is(err, ErrCloseConnection) {
			g.terminate(sess)
			return
		}
		g.log.Error("handler failed",
			zap.String("element", st.Name),
			zap.String("connection_id", connectionID.String()),
			zap.Error(err))
		g.bus.Publish(Event{Kind: EventErrorOccurred, Session: sess, Err: err, Source: st.Name})
		return
	}

	g.checkLogin(sess)
	g.bus.Publish(Event{Kind: EventMessageReceived, Session: sess, Message: raw})
}

// checkLogin runs unconditionally after a handler completes and flips the
// session to logged-in exactly once, when every identity field is set.
func (g *Gateway) checkLogin(sess *Session) {
	if sess.markLoggedIn() {
		g.log.Info("client logged in",
			zap.String("account_id", sess.AccountID()),
			zap.String("display_name", sess.DisplayName()),
			zap.String("jid", sess.JID()))
		g.bus.Publish(Event{Kind: EventClientLogin, Session: sess})
	}
}

// terminate is the fatal path: the session leaves the registry and the
// transport is closed.
func (g *Gateway) terminate(sess *Session) {
	if g.registry.Remove(sess.ConnectionID) {
		g.bus.Publish(Event{Kind: EventClientDisconnected, Session: sess})
	}
	if err := sess.Close(); err != nil {
		g.log.Debug("transport close", zap.Error(err))
	}
}

// evictIfReplaced re-registers a session after its account id became known
// and reports any older connection that lost the account. The evicted
// transport is left open on purpose; observers get a disconnected event and
// decide whether to reap it.
func (g *Gateway) evictIfReplaced(sess *Session) {
	if old := g.registry.Put(sess); old != nil {
		g.log.Info("evicted older session for account",
			zap.String("account_id", sess.AccountID()),
			zap.String("old_connection_id", old.ConnectionID.String()))
		g.bus.Publish(Event{Kind: EventClientDisconnected, Session: old, Message: "evicted"})
	}
}

// send renders a stanza and pushes it to the session's transport. Send
// failures are routing no-ops from the engine's perspective.
func (g *Gateway) send(sess *Session, n *xmpp.Node) {
	frame, err := n.Marshal()
	if err != nil {
		g.log.Error("marshal stanza", zap.Error(err))
		return
	}
	if err := sess.Send(frame); err != nil {
		g.log.Debug("send failed",
			zap.String("connection_id", sess.ConnectionID.String()),
			zap.Error(err))
	}
}
