package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"legacy-awakened/server/internal/interfaces"
)

// Store keeps sessions in process memory for the lifetime of the
// process. No TTL, no eviction; sessions are fully independent.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*interfaces.Session
}

var _ interfaces.SessionStore = (*Store)(nil)

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*interfaces.Session),
	}
}

// Get looks up a session by id.
func (s *Store) Get(id string) (*interfaces.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

// Put registers or overwrites a session.
func (s *Store) Put(id string, sess *interfaces.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = sess
}

// Remove drops a session.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// NewID returns an opaque random session token.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(b)
}
