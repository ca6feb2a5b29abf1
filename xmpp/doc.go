// Package xmpp implements the wire-level pieces of the gateway's XMPP
// subset: a stanza codec over encoding/xml, a generic element tree used to
// build outbound frames, and JID helpers.
//
// The codec is intentionally permissive. Each inbound WebSocket text frame
// is expected to hold exactly one top-level XML element; anything that does
// not even look like XML is rejected cheaply before a full parse, and a
// parse failure is reported as a typed error so the caller can drop the
// frame without tearing down the connection.
//
// Stanzas are immutable once parsed. Outbound frames are constructed with
// the Element builder and serialized individually, one frame per logical
// stanza, with no pretty-printing.
package xmpp
