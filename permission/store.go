package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the session gate.
var ErrRedisUnavailable = errors.New("permission redis unavailable")

// ErrRecordCorrupt is returned when a stored permission record fails to decode.
var ErrRecordCorrupt = errors.New("permission record corrupt")

// Store reads permission records from the shared cache. It runs against a
// Redis logical database distinct from the session store and never writes.
//
//	Docs: docs/permission.md
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a read-only permission [Store] backed by the given Redis
// client. prefix namespaces the per-user hash keys; empty means the raw user
// id is the key.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	return &Store{redis: redisClient, prefix: prefix}
}

func (s *Store) key(userID string) string {
	if s.prefix == "" {
		return userID
	}
	return s.prefix + userID
}

// Get looks up the permission record for (userID, entity). The second return
// reports whether a record was found; absence of the user key, absence of
// the entity field, and an empty userID all resolve to an empty record with
// found=false and no error.
//
//	Performance: 1 Redis HGET.
func (s *Store) Get(ctx context.Context, userID, entity string) (Record, bool, error) {
	if userID == "" {
		return Record{}, false, nil
	}

	data, err := s.redis.HGet(ctx, s.key(userID), entity).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}

	return record, true, nil
}
