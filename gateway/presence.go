package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/Solaris-FN/Hermes/xmpp"
)

// handlePresence records a presence update, echoes it back to the sender,
// and fans it out to every accepted friend with a live session. Presence
// stanzas without a status child, and explicit unavailable presence, are
// ignored.
func (g *Gateway) handlePresence(ctx context.Context, sess *Session, st *xmpp.Stanza) error {
	if st.Root.Attr("type") == "unavailable" {
		return nil
	}
	status := st.Root.Child("status")
	if status == nil {
		return nil
	}

	// A show child of any value marks the client as away.
	p := Presence{Status: status.Text, Away: st.Root.Child("show") != nil}
	sess.SetPresence(p)

	g.send(sess, presenceStanza(sess.JID(), sess.JID(), p))

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
		// The friend may disconnect between lookup and send; both cases
		// are no-op failures, never an error back to the sender.
		target, ok := g.registry.FindByAccountID(friend.ID)
		if !ok {
			g.log.Debug("friend not online", zap.String("friend_id", friend.ID))
			continue
		}
		g.send(target, presenceStanza(target.JID(), sess.JID(), p))
	}
	return nil
}

// presenceStanza builds an available presence push reflecting p, addressed
// to one connection.
func presenceStanza(to, from string, p Presence) *xmpp.Node {
	n := xmpp.Element("presence").
		SetAttr("to", to).
		SetAttr("from", from).
		SetAttr("xmlns", xmpp.NSClient).
		SetAttr("type", "available").
		Add(xmpp.Element("status").SetText(p.Status))
	if p.Away {
		n.Add(xmpp.Element("show").SetText("away"))
	}
	return n
}
