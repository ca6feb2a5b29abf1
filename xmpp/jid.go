package xmpp

import "strings"

// ComposeJID builds a full JID of the form account@domain/resource.
func ComposeJID(accountID, domain, resource string) string {
	return accountID + "@" + domain + "/" + resource
}

// Bare strips the /resource suffix from a JID, returning the bare
// account@domain address. A JID with no resource is returned unchanged.
func Bare(jid string) string {
	if i := strings.IndexByte(jid, '/'); i >= 0 {
		return jid[:i]
	}
	return jid
}
