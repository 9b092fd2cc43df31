package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the session gate.
var ErrRedisUnavailable = errors.New("session redis unavailable")

// Store is a Redis-backed session store mapping session identifiers to
// signed token strings with per-record TTLs.
//
//	Docs: docs/session.md
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix namespaces the session keys; an empty prefix stores records under
// the raw session identifier, which matches deployments where the store
// owns a dedicated Redis database index.
//
//	Docs: docs/session.md
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(sessionID string) string {
	if s.prefix == "" {
		return sessionID
	}
	return s.prefix + ":" + sessionID
}

// Get retrieves the token string stored for sessionID. A missing or
// TTL-evicted record surfaces as [redis.Nil]; any other failure is wrapped
// as [ErrRedisUnavailable].
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, sessionID string) (string, error) {
	value, err := s.redis.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return value, nil
}

// Save writes tokenStr under sessionID with the given TTL, overwriting any
// previous value. A single SET keeps rotation atomic per key: concurrent
// rotations race and the last write wins, with no intermediate state
// observable.
//
//	Performance: 1 Redis SET.
func (s *Store) Save(ctx context.Context, sessionID, tokenStr string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(sessionID), tokenStr, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes the record for sessionID. Deleting an absent record is not
// an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// TTL reports the remaining lifetime of the record for sessionID.
func (s *Store) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	ttl, err := s.redis.TTL(ctx, s.key(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ttl, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
