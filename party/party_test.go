package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateGetList(t *testing.T) {
	s := NewStore()

	p := s.Create(CreateRequest{
		Config: map[string]any{"joinability": "OPEN"},
		JoinInfo: JoinInfo{
			Connection: JoinInfoConnection{ID: "conn-1", YieldLeadership: false},
		},
		Meta: map[string]any{"urn:hermes:partytype": "default"},
	})
	require.NotEmpty(t, p.ID)
	require.Len(t, p.Members, 1)
	assert.Equal(t, "conn-1", p.Members[0].ID)

	got, ok := s.Get(p.ID)
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	s.Create(CreateRequest{})
	assert.Len(t, s.List(), 2)
}
