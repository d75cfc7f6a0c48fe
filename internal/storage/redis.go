package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"legacy-awakened/server/internal/config"
	"legacy-awakened/server/internal/interfaces"
)

const sessionKeyPrefix = "session:"

// RedisStore is the Redis-backed snapshot store: one JSON blob per
// session key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ interfaces.SnapshotStore = (*RedisStore)(nil)

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, ttl: cfg.SnapshotTTL}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Save stores a serialized game state under the session key. A zero TTL
// keeps snapshots forever.
func (s *RedisStore) Save(ctx context.Context, sessionID string, state []byte) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, state, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the serialized game state for a session.
func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, interfaces.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, nil
}
