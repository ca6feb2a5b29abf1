package gateway

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Solaris-FN/Hermes/identity"
	"github.com/Solaris-FN/Hermes/xmpp"
)

// Well-known iq ids the handshake is driven by.
const (
	iqLegacyAuth = "_xmpp_auth1"
	iqBind       = "_xmpp_bind1"
	iqSession    = "_xmpp_session1"
)

// handleIQ dispatches on the iq id: legacy jabber:iq:auth, resource bind,
// session establishment, and a generic empty result for everything else so
// naive clients never hang on an unanswered request.
func (g *Gateway) handleIQ(ctx context.Context, sess *Session, st *xmpp.Stanza) error {
	switch st.ID {
	case iqLegacyAuth:
		return g.iqLegacyAuth(ctx, sess, st)
	case iqBind:
		return g.iqBind(sess, st)
	case iqSession:
		return g.iqSession(ctx, sess, st)
	default:
		g.log.Warn("unrecognized iq id", zap.String("id", st.ID))
		g.send(sess, xmpp.Element("iq").
			SetAttr("to", sess.JID()).
			SetAttr("from", g.domain).
			SetAttr("id", st.ID).
			SetAttr("type", "result"))
		return nil
	}
}

// iqLegacyAuth implements the pre-SASL jabber:iq:auth flow: username,
// password and resource arrive in a query element and are verified with the
// same backend call as SASL auth. Missing credential fields are ignored
// silently.
func (g *Gateway) iqLegacyAuth(ctx context.Context, sess *Session, st *xmpp.Stanza) error {
	query := st.Root.Child("query")
	if query == nil {
		g.streamError(sess, "not-well-formed")
		return nil
	}

	if sess.Resource() == "" && sess.JID() == "" && sess.Token() == "" &&
		sess.AccountID() == "" && !sess.IsAuthenticated() {
		resource := query.ChildText("resource")
		username := query.ChildText("username")
		password := query.ChildText("password")
		if resource == "" || username == "" || password == "" {
			return nil
		}

		auth, err := g.identity.Verify(ctx, username, password)
		if err != nil {
			if !errors.Is(err, identity.ErrUnauthorized) {
				g.log.Warn("authentication backend unavailable", zap.Error(err))
			}
			g.streamError(sess, "invalid-credentials")
			return nil
		}

		sess.SetCredentials(auth.AccountID, auth.Username, password)
		sess.Bind(resource, g.domain)
		g.evictIfReplaced(sess)

		g.send(sess, xmpp.Element("iq").
			SetAttr("type", "result").
			SetAttr("xmlns", xmpp.NSClient).
			SetAttr("id", iqLegacyAuth).
			SetText("Authentication successful."))
	}

	if sess.Resource() == "" || sess.AccountID() == "" || sess.Token() == "" || sess.JID() == "" {
		g.streamError(sess, "not-well-formed")
	}
	return nil
}

// iqBind binds the client-chosen resource and composes the JID. A second
// bind on the same connection, or a bind before the account is known, is a
// protocol-order violation and terminates the connection.
func (g *Gateway) iqBind(sess *Session, st *xmpp.Stanza) error {
	bind := st.Root.Child("bind")
	if bind == nil {
		return errors.New("gateway: bind iq without bind element")
	}
	resource := bind.ChildText("resource")
	if resource == "" && len(bind.Nodes) > 0 {
		resource = bind.Nodes[0].Text
	}

	if !sess.Bind(resource, g.domain) {
		g.send(sess, xmpp.Element("close").SetAttr("xmlns", xmpp.NSFraming))
		return ErrCloseConnection
	}

	g.send(sess, xmpp.Element("iq").
		SetAttr("to", sess.JID()).
		SetAttr("id", iqBind).
		SetAttr("type", "result").
		Add(xmpp.Element("bind").
			SetAttr("xmlns", xmpp.NSBind).
			Add(xmpp.Element("jid").SetText(sess.JID()))))
	return nil
}

// iqSession acknowledges session establishment and then pushes one presence
// per accepted friend that is currently online, reflecting each friend's
// last known presence.
func (g *Gateway) iqSession(ctx context.Context, sess *Session, st *xmpp.Stanza) error {
	g.send(sess, xmpp.Element("iq").
		SetAttr("to", sess.JID()).
		SetAttr("from", g.domain).
		SetAttr("id", st.ID).
		SetAttr("xmlns", xmpp.NSClient).
		SetAttr("type", "result"))

	friends, err := g.identity.Friends(ctx, sess.AccountID())
	if err != nil {
		g.log.Warn("friends fetch failed",
			zap.String("account_id", sess.AccountID()),
			zap.Error(err))
		return nil
	}
	if len(friends) == 0 {
		g.log.Debug("no friends for account", zap.String("account_id", sess.AccountID()))
		return nil
	}

	for _, friend := range friends {
		if !friend.Accepted() {
			continue
		}
		target, ok := g.registry.FindByAccountID(friend.ID)
		if !ok {
			g.log.Debug("friend not online", zap.String("friend_id", friend.ID))
			continue
		}
		g.send(sess, presenceStanza(sess.JID(), target.JID(), target.LastPresence()))
	}
	return nil
}
