package blog

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newPostStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(rdb), mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestNextIDStartsAboveSeed(t *testing.T) {
	store, _, done := newPostStoreTest(t)
	defer done()
	ctx := context.Background()

	first, err := store.NextID(ctx)
	if err != nil {
		t.Fatalf("next id: %v", err)
	}
	if first != "post_101" {
		t.Fatalf("expected post_101, got %q", first)
	}

	second, err := store.NextID(ctx)
	if err != nil {
		t.Fatalf("next id: %v", err)
	}
	if second != "post_102" {
		t.Fatalf("expected post_102, got %q", second)
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	store, _, done := newPostStoreTest(t)
	defer done()
	ctx := context.Background()

	post := Post{PostID: "post_101", Title: "hello", Content: "first"}
	post.StampCreated("user-1")

	if err := store.Create(ctx, post); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, "post_101")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "hello" || got.CreatedBy != "user-1" || got.CreatedTime == 0 {
		t.Fatalf("unexpected post: %+v", got)
	}
	if got.LastUpdatedTime != got.CreatedTime || got.UpdatedBy != "user-1" {
		t.Fatalf("creation must stamp update metadata too: %+v", got)
	}
}

func TestGetMissingPost(t *testing.T) {
	store, _, done := newPostStoreTest(t)
	defer done()

	if _, err := store.Get(context.Background(), "post_999"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestSoftDeleteHidesPost(t *testing.T) {
	store, _, done := newPostStoreTest(t)
	defer done()
	ctx := context.Background()

	post := Post{PostID: "post_101", Title: "hello"}
	post.StampCreated("user-1")
	if err := store.Create(ctx, post); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(ctx, "post_101", "user-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Get(ctx, "post_101"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected deleted post to be hidden, got %v", err)
	}

	posts, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected empty list, got %+v", posts)
	}

	// Double delete reports not found; the record is gone from reads.
	if err := store.Delete(ctx, "post_101", "user-2"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound on second delete, got %v", err)
	}
}

func TestListSkipsDeleted(t *testing.T) {
	store, _, done := newPostStoreTest(t)
	defer done()
	ctx := context.Background()

	for _, id := range []string{"post_101", "post_102", "post_103"} {
		post := Post{PostID: id, Title: "t-" + id}
		post.StampCreated("user-1")
		if err := store.Create(ctx, post); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := store.Delete(ctx, "post_102", "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	posts, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 live posts, got %d", len(posts))
	}
	for _, p := range posts {
		if p.PostID == "post_102" {
			t.Fatal("deleted post leaked into list")
		}
	}
}

func TestUpdateRequiresLivePost(t *testing.T) {
	store, _, done := newPostStoreTest(t)
	defer done()
	ctx := context.Background()

	post := Post{PostID: "post_101", Title: "before"}
	post.StampCreated("user-1")
	if err := store.Create(ctx, post); err != nil {
		t.Fatalf("create: %v", err)
	}

	post.Title = "after"
	post.StampUpdated("user-2")
	if err := store.Update(ctx, post); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, "post_101")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "after" || got.UpdatedBy != "user-2" {
		t.Fatalf("unexpected updated post: %+v", got)
	}
	if got.CreatedBy != "user-1" {
		t.Fatal("update must not rewrite creation metadata")
	}

	missing := Post{PostID: "post_999", Title: "ghost"}
	if err := store.Update(ctx, missing); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestStoreRedisDown(t *testing.T) {
	store, mr, done := newPostStoreTest(t)
	defer done()

	mr.Close()

	if _, err := store.NextID(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if _, err := store.List(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
