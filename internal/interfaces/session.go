package interfaces

import (
	"sync"

	"legacy-awakened/server/internal/game"
)

// Session pairs a game state with its turn lock. A handler must hold Mu
// for the full duration of a turn so that two concurrent actions never
// mutate the same state.
type Session struct {
	State *game.GameState
	Mu    sync.Mutex
}

// SessionStore maps opaque session identifiers to live sessions.
// Lifetime is the process; there is no eviction.
type SessionStore interface {
	Get(id string) (*Session, bool)
	Put(id string, sess *Session)
	Remove(id string)
}
