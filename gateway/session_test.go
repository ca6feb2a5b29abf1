package gateway

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records every frame pushed to a session.
type fakeSender struct {
	mu     sync.Mutex
	frames []string
	closed bool
}

func (f *fakeSender) Send(frame string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSender) Frames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.frames))
	copy(out, f.frames)
	return out
}

func (f *fakeSender) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestSessionBind(t *testing.T) {
	t.Run("composes jid in one step", func(t *testing.T) {
		s := NewSession(uuid.New(), &fakeSender{})
		s.SetCredentials("alice", "Alice", "tok")

		require.True(t, s.Bind("pc", "hermes.test"))
		assert.Equal(t, "alice@hermes.test/pc", s.JID())
		assert.Equal(t, "pc", s.Resource())
	})

	t.Run("refuses bind without account", func(t *testing.T) {
		s := NewSession(uuid.New(), &fakeSender{})
		assert.False(t, s.Bind("pc", "hermes.test"))
		assert.Empty(t, s.JID())
	})

	t.Run("refuses second bind", func(t *testing.T) {
		s := NewSession(uuid.New(), &fakeSender{})
		s.SetCredentials("alice", "Alice", "tok")
		require.True(t, s.Bind("pc", "hermes.test"))
		assert.False(t, s.Bind("laptop", "hermes.test"))
		assert.Equal(t, "alice@hermes.test/pc", s.JID())
	})
}

func TestSessionLoginTransition(t *testing.T) {
	s := NewSession(uuid.New(), &fakeSender{})

	// Not logged in until every identity field is populated.
	assert.False(t, s.markLoggedIn())
	s.SetCredentials("alice", "Alice", "tok")
	assert.False(t, s.markLoggedIn())
	require.True(t, s.Bind("pc", "hermes.test"))

	assert.True(t, s.markLoggedIn())
	assert.True(t, s.IsLoggedIn())

	// The transition happens exactly once.
	assert.False(t, s.markLoggedIn())
	assert.True(t, s.IsLoggedIn())
}

func TestSessionPresenceSnapshot(t *testing.T) {
	s := NewSession(uuid.New(), &fakeSender{})
	s.SetPresence(Presence{Status: "online", Away: false})

	snap := s.LastPresence()
	s.SetPresence(Presence{Status: "busy", Away: true})

	// The earlier snapshot is a copy, unaffected by later writes.
	assert.Equal(t, "online", snap.Status)
	assert.False(t, snap.Away)
	assert.Equal(t, "busy", s.LastPresence().Status)
}
