package gateway

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Solaris-FN/Hermes/xmpp"
)

// Registry is the concurrent store of live sessions. It is keyed by
// connection id and keeps a secondary account index so that account lookups
// stay cheap on the hot paths (authentication, presence fan-out, message
// routing).
//
// The registry owns the single-active-session-per-account invariant: a Put
// for an account already held by a different connection evicts the old
// entry. Eviction is a registry replacement only; the evicted connection's
// transport is not closed here, it is merely orphaned and any later routing
// attempt to it will miss.
type Registry struct {
	mu        sync.Mutex
	byConn    map[uuid.UUID]*Session
	byAccount map[string]uuid.UUID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byConn:    make(map[uuid.UUID]*Session),
		byAccount: make(map[string]uuid.UUID),
	}
}

// Put inserts or re-registers a session. When the session carries an
// account id that a different live connection already holds, that older
// session is removed from the registry first and returned so the caller can
// report it. Put and Remove for the same account are serialized by the
// registry lock, so two concurrent logins can never both believe they are
// the sole holder.
func (r *Registry) Put(s *Session) (evicted *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if acct := s.AccountID(); acct != "" {
		if oldID, ok := r.byAccount[acct]; ok && oldID != s.ConnectionID {
			evicted = r.byConn[oldID]
			delete(r.byConn, oldID)
		}
		r.byAccount[acct] = s.ConnectionID
	}
	r.byConn[s.ConnectionID] = s
	return evicted
}

// Get returns the session for a connection id.
func (r *Registry) Get(connectionID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byConn[connectionID]
	return s, ok
}

// Remove deletes the session for a connection id and reports whether an
// entry was present. The account index is only cleared when it still points
// at this connection, so removing an orphaned (evicted) session never
// clobbers the account's current holder.
func (r *Registry) Remove(connectionID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byConn[connectionID]
	if !ok {
		return false
	}
	delete(r.byConn, connectionID)
	if acct := s.AccountID(); acct != "" {
		if id, ok := r.byAccount[acct]; ok && id == connectionID {
			delete(r.byAccount, acct)
		}
	}
	return true
}

// FindByAccountID returns the live session for an account.
func (r *Registry) FindByAccountID(accountID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byAccount[accountID]
	if !ok {
		return nil, false
	}
	s, ok := r.byConn[id]
	return s, ok
}

// FindByBareJID resolves a bare address (account@domain, resource already
// stripped by the caller or not) to a live session.
func (r *Registry) FindByBareJID(address string) (*Session, bool) {
	bare := xmpp.Bare(address)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byConn {
		if jid := s.JID(); jid != "" && xmpp.Bare(jid) == bare {
			return s, true
		}
	}
	return nil, false
}

// List returns a snapshot of all live sessions.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.byConn))
	for _, s := range r.byConn {
		out = append(out, s)
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byConn)
}
