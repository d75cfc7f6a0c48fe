package interfaces

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by Load when no snapshot exists for
// the session.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore persists serialized game states by session identifier.
// Durable storage is optional; the in-memory session map stays the
// source of truth.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, state []byte) error
	Load(ctx context.Context, sessionID string) ([]byte, error)
}
