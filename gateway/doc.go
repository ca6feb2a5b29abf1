// Package gateway implements the session protocol engine at the heart of
// Hermes: the per-connection XMPP state machine, the stanza dispatch table,
// the concurrent client registry, and the presence/message routing logic.
//
// The engine is driven by the transport in a push model. For every inbound
// text frame the transport calls Gateway.HandleFrame on the connection's
// own goroutine, which keeps frames from one connection strictly ordered
// while leaving connections free to progress independently, including
// through the blocking backend calls made by the auth, session and
// presence handlers.
//
// State is held in exactly two places: the Registry, which maps connection
// ids to Sessions and enforces the single-active-session-per-account
// policy, and the Session records themselves. A Session is only ever
// mutated by its own connection's handler; cross-connection readers (the
// fan-out paths) take consistent snapshots through the accessor methods.
//
// Lifecycle transitions are published on an injected EventBus so that
// out-of-core observers (logging, metrics, the admin surface) can watch
// connects, disconnects, logins, routed messages and errors without the
// engine knowing about them.
package gateway
