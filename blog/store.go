package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ErrPostNotFound is an exported constant or variable used by the post store.
var ErrPostNotFound = errors.New("post not found")

// ErrRedisUnavailable is an exported constant or variable used by the post store.
var ErrRedisUnavailable = errors.New("post redis unavailable")

// Store is the post persistence seam. Implementations must treat soft-deleted
// posts as absent on reads and keep Create/Update last-write-wins.
type Store interface {
	NextID(ctx context.Context) (string, error)
	Create(ctx context.Context, post Post) error
	Get(ctx context.Context, postID string) (*Post, error)
	List(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, post Post) error
	Delete(ctx context.Context, postID, userID string) error
}

const (
	postKeyPrefix = "post:"
	postIndexKey  = "posts:index"
	counterKey    = "posts:counter"
	counterSeed   = 100
)

// Seed the counter on first use so identifiers start above the range the
// seeded fixture data occupies.
var nextIDLua = redis.NewScript(`
redis.call('SETNX', KEYS[1], ARGV[1])
return redis.call('INCR', KEYS[1])
`)

// RedisStore stores posts as JSON documents with a set index for listing.
//
//	Docs: docs/blog.md
type RedisStore struct {
	redis redis.UniversalClient
}

// NewRedisStore creates a [RedisStore] backed by the given Redis client.
func NewRedisStore(redisClient redis.UniversalClient) *RedisStore {
	return &RedisStore{redis: redisClient}
}

func postKey(postID string) string {
	return postKeyPrefix + postID
}

// NextID mints the next post identifier, post_<n>, from an atomic counter.
func (s *RedisStore) NextID(ctx context.Context) (string, error) {
	n, err := nextIDLua.Run(ctx, s.redis, []string{counterKey}, counterSeed).Int64()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return "post_" + strconv.FormatInt(n, 10), nil
}

// Create writes the post document and adds it to the listing index.
func (s *RedisStore) Create(ctx context.Context, post Post) error {
	if post.PostID == "" {
		return errors.New("post id required")
	}

	data, err := json.Marshal(post)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, postKey(post.PostID), data, 0)
	pipe.SAdd(ctx, postIndexKey, post.PostID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get returns the post. Missing documents and soft-deleted posts report
// [ErrPostNotFound].
func (s *RedisStore) Get(ctx context.Context, postID string) (*Post, error) {
	data, err := s.redis.Get(ctx, postKey(postID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var post Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, err
	}
	if post.IsDelete {
		return nil, ErrPostNotFound
	}

	return &post, nil
}

// List returns all live posts in index order. Soft-deleted and dangling
// index entries are skipped.
func (s *RedisStore) List(ctx context.Context) ([]Post, error) {
	ids, err := s.redis.SMembers(ctx, postIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(ids) == 0 {
		return []Post{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = postKey(id)
	}

	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	posts := make([]Post, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var post Post
		if err := json.Unmarshal([]byte(raw), &post); err != nil {
			continue
		}
		if post.IsDelete {
			continue
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// Update overwrites the stored document. The post must exist and be live.
func (s *RedisStore) Update(ctx context.Context, post Post) error {
	if _, err := s.Get(ctx, post.PostID); err != nil {
		return err
	}

	data, err := json.Marshal(post)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, postKey(post.PostID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Delete soft-deletes the post: the record stays, flagged and stamped, and
// disappears from reads.
func (s *RedisStore) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}

	post.IsDelete = true
	post.StampUpdated(userID)

	data, err := json.Marshal(post)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, postKey(postID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

var _ Store = (*RedisStore)(nil)
