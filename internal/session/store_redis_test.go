package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := NewRedisStore("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	rec := &Record{Moves: []string{"e2e4", "e7e5"}, Muted: true, UpdatedAt: time.Now()}
	if err := store.Save(ctx, "s1", rec, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || len(got.Moves) != 2 || got.Moves[1] != "e7e5" || !got.Muted {
		t.Fatalf("loaded record = %+v", got)
	}
}

func TestRedisStoreUnknownIDIsNil(t *testing.T) {
	store, _ := newTestRedisStore(t)
	got, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatalf("unknown id returned %+v, want nil", got)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	rec := &Record{Moves: []string{"e2e4"}, UpdatedAt: time.Now()}
	if err := store.Save(ctx, "s1", rec, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Load(ctx, "s1"); got != nil {
		t.Fatal("record survived delete")
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	rec := &Record{Moves: []string{"e2e4"}, UpdatedAt: time.Now()}
	if err := store.Save(ctx, "s1", rec, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if got, _ := store.Load(ctx, "s1"); got != nil {
		t.Fatal("record survived TTL expiry")
	}
}

func TestParseRedisURLRejectsOtherSchemes(t *testing.T) {
	if _, err := parseRedisURL("http://localhost:6379"); err == nil {
		t.Fatal("http scheme should be rejected")
	}
	opts, err := parseRedisURL("redis://:secret@localhost:6379/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("opts = %+v", opts)
	}
}
