package gateway

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Solaris-FN/Hermes/xmpp"
)

// handleMessage routes a chat message to the bare-JID match of its target.
// Messages without a body or a to attribute are dropped; a routing miss is
// a silent no-op and is never surfaced to the sender.
func (g *Gateway) handleMessage(_ context.Context, sess *Session, st *xmpp.Stanza) error {
	body := st.Root.Child("body")
	if body == nil || body.Text == "" {
		g.log.Debug("message with empty or missing body")
		return nil
	}
	if st.To == "" {
		g.log.Debug("message missing to attribute")
		return nil
	}

	id := st.ID
	if id == "" {
		id = uuid.NewString()
	}

	delivered := g.forwardToBareJID(sess, st.To, body.Text, id)
	if !delivered {
		g.log.Debug("message target not online",
			zap.String("to", st.To),
			zap.String("from", sess.JID()))
	}
	return nil
}

// forwardToBareJID resolves the target address to a live session by bare
// JID, ignoring any resource suffix, and pushes a chat stanza with the
// sender's full JID. It reports delivery but callers ignore the result by
// policy: a closed or missing peer is not retried and generates no bounce.
func (g *Gateway) forwardToBareJID(sender *Session, to, body, id string) bool {
	target, ok := g.registry.FindByBareJID(to)
	if !ok {
		return false
	}

	msg := xmpp.Element("message").
		SetAttr("from", sender.JID()).
		SetAttr("xmlns", xmpp.NSClient).
		SetAttr("to", target.JID()).
		SetAttr("id", id).
		SetAttr("type", "chat").
		Add(xmpp.Element("body").SetText(body))

	frame, err := msg.Marshal()
	if err != nil {
		return false
	}
	return target.Send(frame) == nil
}
