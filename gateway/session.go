package gateway

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Solaris-FN/Hermes/xmpp"
)

// Sender pushes text frames to one connection's transport. It is the only
// capability a Session holds over its socket; it is never used to mutate
// any other session.
type Sender interface {
	Send(frame string) error
	Close() error
}

// Presence is the last broadcast presence of a session.
type Presence struct {
	Status string `json:"status"`
	Away   bool   `json:"away"`
}

// Session is the per-connection protocol state. One Session exists per live
// connection; it is created empty at transport connect and filled in by the
// handshake handlers.
//
// All writes happen on the owning connection's goroutine. The internal lock
// exists for cross-connection readers: fan-out paths read another session's
// JID and presence and must observe a consistent snapshot.
type Session struct {
	ConnectionID uuid.UUID

	sender Sender

	mu            sync.RWMutex
	accountID     string
	displayName   string
	token         string
	jid           string
	resource      string
	authenticated bool
	loggedIn      bool
	lastPresence  Presence
}

// NewSession creates an unauthenticated session for a freshly connected
// transport.
func NewSession(connectionID uuid.UUID, sender Sender) *Session {
	return &Session{ConnectionID: connectionID, sender: sender}
}

// Send pushes one text frame to this session's transport.
func (s *Session) Send(frame string) error { return s.sender.Send(frame) }

// Close closes this session's transport.
func (s *Session) Close() error { return s.sender.Close() }

// AccountID returns the authenticated account id, or "" before auth.
func (s *Session) AccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}

// DisplayName returns the account's display name, or "" before auth.
func (s *Session) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName
}

// Token returns the token presented during authentication.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// JID returns the full JID, or "" until the resource is bound.
func (s *Session) JID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jid
}

// Resource returns the bound resource, or "" before binding.
func (s *Session) Resource() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resource
}

// IsAuthenticated reports whether credential verification has succeeded.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// IsLoggedIn reports whether the session has completed the full handshake.
func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// LastPresence returns a copy of the last broadcast presence.
func (s *Session) LastPresence() Presence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPresence
}

// SetPresence replaces the last broadcast presence.
func (s *Session) SetPresence(p Presence) {
	s.mu.Lock()
	s.lastPresence = p
	s.mu.Unlock()
}

// SetCredentials records a successful verification. The authenticated flag
// is monotonic; it is never cleared for the lifetime of the session.
func (s *Session) SetCredentials(accountID, displayName, token string) {
	s.mu.Lock()
	s.accountID = accountID
	s.displayName = displayName
	s.token = token
	s.authenticated = true
	s.mu.Unlock()
}

// Bind sets the resource exactly once and composes the JID from the account
// id, domain and resource in a single step, so the JID is never observable
// in a partially set state. It returns false when the session has no
// account yet or is already bound.
func (s *Session) Bind(resource, domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resource != "" || s.accountID == "" {
		return false
	}
	s.resource = resource
	s.jid = xmpp.ComposeJID(s.accountID, domain, resource)
	return true
}

// markLoggedIn flips the logged-in flag when every identity field is
// populated. It returns true only on the single false→true transition.
func (s *Session) markLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn {
		return false
	}
	if !s.authenticated || s.accountID == "" || s.displayName == "" || s.jid == "" || s.resource == "" {
		return false
	}
	s.loggedIn = true
	return true
}
