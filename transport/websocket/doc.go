// Package websocket provides the WebSocket transport for the Hermes XMPP
// gateway.
//
// The transport model is deliberately thin: it accepts upgrades, assigns
// each connection an opaque id, and pushes inbound text frames into the
// gateway engine. Each connection gets a dedicated read goroutine (so
// frames from one connection are processed in arrival order) and a
// dedicated write goroutine fed by a buffered send channel (so a slow peer
// never blocks a handler or a presence fan-out).
//
// Connection Lifecycle:
//
//  1. HTTP request upgraded to WebSocket
//  2. Connection registered with the gateway, empty session created
//  3. Text frames forwarded to the gateway's dispatch loop
//  4. Close or read error triggers gateway disconnect and cleanup
//
// Keepalive follows the usual gorilla pattern: periodic pings from the
// write pump and a read deadline refreshed by pong handlers.
package websocket
