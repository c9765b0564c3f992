package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRedisSessionStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	server, client := newMiniredisForTest(t)
	store := NewRedisSessionStore(client, "refresh_token")
	userID := uuid.New()

	if _, ok, err := store.Get(ctx, userID); err != nil || ok {
		t.Fatalf("expected miss before put, ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, userID, "t1", time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !server.Exists("refresh_token:" + userID.String()) {
		t.Fatal("expected key refresh_token:{user_id}")
	}
	got, ok, err := store.Get(ctx, userID)
	if err != nil || !ok || got != "t1" {
		t.Fatalf("get=%q ok=%v err=%v", got, ok, err)
	}

	if err := store.Put(ctx, userID, "t2", time.Hour); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = store.Get(ctx, userID)
	if got != "t2" {
		t.Fatalf("expected overwrite to win, got %q", got)
	}

	if err := store.Delete(ctx, userID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, userID); ok {
		t.Fatal("expected miss after delete")
	}
	if err := store.Delete(ctx, userID); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
}

func TestRedisSessionStoreExpiresAndResetsTTL(t *testing.T) {
	ctx := context.Background()
	server, client := newMiniredisForTest(t)
	store := NewRedisSessionStore(client, "")
	userID := uuid.New()

	if err := store.Put(ctx, userID, "t1", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	server.FastForward(50 * time.Second)
	if err := store.Put(ctx, userID, "t2", time.Minute); err != nil {
		t.Fatalf("put again: %v", err)
	}
	server.FastForward(50 * time.Second)
	if got, ok, _ := store.Get(ctx, userID); !ok || got != "t2" {
		t.Fatalf("expected ttl reset by put, got %q ok=%v", got, ok)
	}
	server.FastForward(20 * time.Second)
	if _, ok, _ := store.Get(ctx, userID); ok {
		t.Fatal("expected token to expire")
	}
}

func TestRedisSessionStoreConsumeIfMatch(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniredisForTest(t)
	store := NewRedisSessionStore(client, "refresh_token")
	userID := uuid.New()

	if err := store.Put(ctx, userID, "current", time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := store.ConsumeIfMatch(ctx, userID, "stale")
	if err != nil || ok {
		t.Fatalf("expected mismatch rejected, ok=%v err=%v", ok, err)
	}
	if _, present, _ := store.Get(ctx, userID); !present {
		t.Fatal("mismatched consume must not delete the stored token")
	}
	ok, err = store.ConsumeIfMatch(ctx, userID, "current")
	if err != nil || !ok {
		t.Fatalf("expected match consumed, ok=%v err=%v", ok, err)
	}
	ok, _ = store.ConsumeIfMatch(ctx, userID, "current")
	if ok {
		t.Fatal("expected second consume to fail")
	}
}

func TestSessionStoresConsumeOnceUnderConcurrency(t *testing.T) {
	_, client := newMiniredisForTest(t)
	stores := map[string]SessionStore{
		"redis":  NewRedisSessionStore(client, "refresh_token"),
		"memory": NewInMemorySessionStore(nil),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := uuid.New()
			if err := store.Put(ctx, userID, "tok", time.Hour); err != nil {
				t.Fatalf("put: %v", err)
			}
			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if ok, err := store.ConsumeIfMatch(ctx, userID, "tok"); err == nil && ok {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			if wins.Load() != 1 {
				t.Fatalf("expected exactly one consumer to win, got %d", wins.Load())
			}
		})
	}
}

func TestInMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewInMemorySessionStore(func() time.Time { return now })
	userID := uuid.New()

	if err := store.Put(ctx, userID, "t", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, ok, _ := store.Get(ctx, userID); !ok {
		t.Fatal("expected token live before ttl")
	}
	now = now.Add(time.Second)
	if _, ok, _ := store.Get(ctx, userID); ok {
		t.Fatal("expected token expired at ttl")
	}
	if err := store.Put(ctx, userID, "t", 0); err == nil {
		t.Fatal("expected non-positive ttl rejected")
	}
}
