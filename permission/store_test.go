package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newPermissionStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb, ""), mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestGetDecodesStoredRecord(t *testing.T) {
	store, mr, done := newPermissionStoreTest(t)
	defer done()

	mr.HSet("user-1", "blog_post", `{"view":true,"create":false,"edit":true}`)

	record, found, err := store.Get(context.Background(), "user-1", "blog_post")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}
	if !record["view"] || record["create"] || !record["edit"] {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestGetAbsentUserOrEntity(t *testing.T) {
	store, mr, done := newPermissionStoreTest(t)
	defer done()
	ctx := context.Background()

	record, found, err := store.Get(ctx, "nobody", "blog_post")
	if err != nil || found || len(record) != 0 {
		t.Fatalf("expected empty record for absent user, got %v %v %v", record, found, err)
	}

	mr.HSet("user-1", "blog_post", `{"view":true}`)
	record, found, err = store.Get(ctx, "user-1", "other_entity")
	if err != nil || found || len(record) != 0 {
		t.Fatalf("expected empty record for absent entity, got %v %v %v", record, found, err)
	}
}

func TestGetEmptyUserIDSkipsLookup(t *testing.T) {
	store, _, done := newPermissionStoreTest(t)
	done()

	// Redis is already gone; an empty user id must short-circuit before it.
	record, found, err := store.Get(context.Background(), "", "blog_post")
	if err != nil || found || len(record) != 0 {
		t.Fatalf("expected empty record without lookup, got %v %v %v", record, found, err)
	}
}

func TestGetCorruptRecord(t *testing.T) {
	store, mr, done := newPermissionStoreTest(t)
	defer done()

	mr.HSet("user-1", "blog_post", `not-json`)

	_, _, err := store.Get(context.Background(), "user-1", "blog_post")
	if !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected ErrRecordCorrupt, got %v", err)
	}
}

func TestGetTruthyCoercion(t *testing.T) {
	store, mr, done := newPermissionStoreTest(t)
	defer done()

	mr.HSet("user-1", "blog_post", `{"view":1,"create":0,"edit":"yes","delete":null}`)

	record, _, err := store.Get(context.Background(), "user-1", "blog_post")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !record["view"] || record["create"] || !record["edit"] || record["delete"] {
		t.Fatalf("truthy coercion wrong: %v", record)
	}
}

func TestGrantORSemantics(t *testing.T) {
	record := Record{"view": true, "edit": false}

	granted := record.Grant([]string{"view", "edit"})
	if len(granted) != 1 || !granted["view"] {
		t.Fatalf("expected only view granted, got %v", granted)
	}

	if empty := record.Grant([]string{"delete"}); len(empty) != 0 {
		t.Fatalf("expected nothing granted, got %v", empty)
	}

	if none := record.Grant(nil); len(none) != 0 {
		t.Fatalf("empty ops list must grant nothing, got %v", none)
	}
}

func TestDecisionAllowed(t *testing.T) {
	if (Decision{Granted: Record{}}).Allowed() {
		t.Fatal("empty decision must not be allowed")
	}
	if !(Decision{Granted: Record{"view": true}, RecordFound: true}).Allowed() {
		t.Fatal("non-empty decision must be allowed")
	}
}
