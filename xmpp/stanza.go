package xmpp

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// XMPP namespaces used by the gateway.
const (
	NSFraming      = "urn:ietf:params:xml:ns:xmpp-framing"
	NSStreams      = "http://etherx.jabber.org/streams"
	NSSASL         = "urn:ietf:params:xml:ns:xmpp-sasl"
	NSRosterVer    = "urn:xmpp:features:rosterver"
	NSTLS          = "urn:ietf:params:xml:ns:xmpp-tls"
	NSBind         = "urn:ietf:params:xml:ns:xmpp-bind"
	NSCompress     = "http://jabber.org/features/compress"
	NSSession      = "urn:ietf:params:xml:ns:xmpp-session"
	NSIQAuth       = "http://jabber.org/features/iq-auth"
	NSClient       = "jabber:client"
	NSStreamErrors = "urn:ietf:params:xml:ns:xmpp-streams"
)

// Stanza is one parsed top-level element received from a connection.
// It is immutable after Parse returns it.
type Stanza struct {
	Name      string
	Namespace string
	To        string
	From      string
	ID        string
	Version   string
	Root      *Node
	Raw       string
}

// ParseError reports a frame that could not be decoded as a stanza. The
// frame is dropped by callers; a single bad frame never terminates the
// connection.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "xmpp: frame is not an XML element"
	}
	return fmt.Sprintf("xmpp: malformed stanza: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes a raw text frame into a Stanza. Input that is not bounded
// by '<' and '>' is rejected before the full parse.
func Parse(raw string) (*Stanza, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "<") || !strings.HasSuffix(trimmed, ">") {
		return nil, &ParseError{Raw: raw}
	}

	var root Node
	if err := xml.Unmarshal([]byte(trimmed), &root); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	return &Stanza{
		Name:      root.XMLName.Local,
		Namespace: root.XMLName.Space,
		To:        root.Attr("to"),
		From:      root.Attr("from"),
		ID:        root.Attr("id"),
		Version:   root.Attr("version"),
		Root:      &root,
		Raw:       raw,
	}, nil
}
