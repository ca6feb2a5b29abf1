package party

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JoinInfoConnection identifies the founding connection of a party.
type JoinInfoConnection struct {
	ID              string         `json:"id"`
	Meta            map[string]any `json:"meta"`
	YieldLeadership bool           `json:"yield_leadership"`
}

// JoinInfo describes how the creator joins the party it creates.
type JoinInfo struct {
	Connection JoinInfoConnection `json:"connection"`
	Meta       map[string]any     `json:"meta"`
}

// CreateRequest is the party creation payload accepted by the admin API.
type CreateRequest struct {
	Config   map[string]any `json:"config"`
	JoinInfo JoinInfo       `json:"join_info"`
	Meta     map[string]any `json:"meta"`
}

// Party is one stored party.
type Party struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Config    map[string]any     `json:"config"`
	Meta      map[string]any     `json:"meta"`
	Members   []JoinInfoConnection `json:"members"`
}

// Store is a concurrency-safe in-memory party store.
type Store struct {
	mu      sync.RWMutex
	parties map[string]*Party
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{parties: make(map[string]*Party)}
}

// Create stores a new party built from the request and returns it.
func (s *Store) Create(req CreateRequest) *Party {
	p := &Party{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Config:    req.Config,
		Meta:      req.Meta,
		Members:   []JoinInfoConnection{req.JoinInfo.Connection},
	}

	s.mu.Lock()
	s.parties[p.ID] = p
	s.mu.Unlock()
	return p
}

// Get returns a party by id.
func (s *Store) Get(id string) (*Party, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[id]
	return p, ok
}

// List returns a snapshot of all parties.
func (s *Store) List() []*Party {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Party, 0, len(s.parties))
	for _, p := range s.parties {
		out = append(out, p)
	}
	return out
}
