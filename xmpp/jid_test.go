package xmpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeJID(t *testing.T) {
	assert.Equal(t, "alice@hermes.test/pc", ComposeJID("alice", "hermes.test", "pc"))
}

func TestBare(t *testing.T) {
	assert.Equal(t, "alice@hermes.test", Bare("alice@hermes.test/pc"))
	assert.Equal(t, "alice@hermes.test", Bare("alice@hermes.test"))
	assert.Equal(t, "alice@hermes.test", Bare("alice@hermes.test/with/slashes"))
}
