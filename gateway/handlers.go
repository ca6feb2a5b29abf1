package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Solaris-FN/Hermes/identity"
	"github.com/Solaris-FN/Hermes/xmpp"
)

// handleOpen answers a stream open with the framing reply and the feature
// list, as two separate frames. The advertised features depend on whether
// the session has authenticated yet.
func (g *Gateway) handleOpen(_ context.Context, sess *Session, _ *xmpp.Stanza) error {
	open := xmpp.Element("open").
		SetAttr("xmlns", xmpp.NSFraming).
		SetAttr("from", g.domain).
		SetAttr("id", sess.ConnectionID.String()).
		SetAttr("version", "1.0").
		SetAttr("xml:lang", "en")
	g.send(sess, open)

	features := xmpp.Element("features").
		SetAttr("xmlns", xmpp.NSStreams).
		Add(xmpp.Element("ver").SetAttr("xmlns", xmpp.NSRosterVer)).
		Add(xmpp.Element("starttls").SetAttr("xmlns", xmpp.NSTLS)).
		Add(xmpp.Element("compression").
			SetAttr("xmlns", xmpp.NSCompress).
			Add(xmpp.Element("method").SetText("zlib")))

	if sess.IsAuthenticated() {
		features.
			Add(xmpp.Element("bind").SetAttr("xmlns", xmpp.NSBind)).
			Add(xmpp.Element("session").SetAttr("xmlns", xmpp.NSSession))
	} else {
		features.
			Add(xmpp.Element("mechanisms").
				SetAttr("xmlns", xmpp.NSSASL).
				Add(xmpp.Element("method").SetText("PLAIN"))).
			Add(xmpp.Element("auth").SetAttr("xmlns", xmpp.NSIQAuth))
	}

	g.send(sess, features)
	return nil
}

// handleAuth runs the SASL PLAIN exchange. The element text is base64 of
// authzid\0accountId\0token; the account is verified against the backend.
// Bad credentials keep the connection open for a retry, a missing payload
// does not.
func (g *Gateway) handleAuth(ctx context.Context, sess *Session, st *xmpp.Stanza) error {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(st.Root.Text))
	if err != nil {
		return err
	}

	fields := strings.Split(string(decoded), "\x00")
	if len(fields) < 2 {
		return ErrCloseConnection
	}
	accountID := fields[1]
	token := ""
	if len(fields) > 2 {
		token = fields[2]
	}

	auth, err := g.identity.Verify(ctx, accountID, token)
	switch {
	case err == nil:
		sess.SetCredentials(auth.AccountID, auth.Username, token)
		g.evictIfReplaced(sess)
		g.send(sess, xmpp.Element("success").SetAttr("xmlns", xmpp.NSSASL))
	case errors.Is(err, identity.ErrUnauthorized):
		g.log.Info("authentication rejected", zap.String("account_id", accountID))
		g.send(sess, saslFailure("not-authorized", "Invalid credentials"))
	default:
		g.log.Warn("authentication backend unavailable", zap.Error(err))
		g.send(sess, saslFailure("temporary-auth-failure", "Authentication service unavailable"))
	}
	return nil
}

// saslFailure builds a SASL failure element carrying the defined condition
// and a human-readable text child.
func saslFailure(condition, text string) *xmpp.Node {
	return xmpp.Element("failure").
		SetAttr("xmlns", xmpp.NSSASL).
		Add(xmpp.Element(condition)).
		Add(xmpp.Element("text").SetAttr("xml:lang", "eng").SetText(text))
}

// streamError sends a stream-level error element with the given defined
// condition. The connection is left open.
func (g *Gateway) streamError(sess *Session, condition string) {
	g.send(sess, xmpp.Element("error").
		SetAttr("xmlns", xmpp.NSStreams).
		Add(xmpp.Element(condition).SetAttr("xmlns", xmpp.NSStreamErrors)))
}
