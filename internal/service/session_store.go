package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the single live refresh token of each user. The store,
// not the token signature, decides whether a refresh token is still usable.
type SessionStore interface {
	// Put overwrites any previous token for userID and resets its TTL.
	Put(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	// Get returns the stored token and whether one exists.
	Get(ctx context.Context, userID uuid.UUID) (string, bool, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	// ConsumeIfMatch deletes the stored token only when it equals token and
	// reports whether it did. Two concurrent callers presenting the same token
	// never both succeed.
	ConsumeIfMatch(ctx context.Context, userID uuid.UUID, token string) (bool, error)
}

var consumeIfMatchScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSessionStore(client redis.UniversalClient, prefix string) *RedisSessionStore {
	if prefix == "" {
		prefix = "refresh_token"
	}
	return &RedisSessionStore{client: client, prefix: prefix}
}

func (s *RedisSessionStore) Put(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}
	return s.client.Set(ctx, s.key(userID), token, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *RedisSessionStore) ConsumeIfMatch(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	n, err := consumeIfMatchScript.Run(ctx, s.client, []string{s.key(userID)}, token).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisSessionStore) key(userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", s.prefix, userID)
}

type inMemorySession struct {
	token     string
	expiresAt time.Time
}

// InMemorySessionStore is a process-local SessionStore for single-instance
// deployments and tests.
type InMemorySessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[uuid.UUID]inMemorySession
}

func NewInMemorySessionStore(now func() time.Time) *InMemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &InMemorySessionStore{now: now, sessions: make(map[uuid.UUID]inMemorySession)}
}

func (s *InMemorySessionStore) Put(_ context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = inMemorySession{token: token, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemorySessionStore) Get(_ context.Context, userID uuid.UUID) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.liveLocked(userID)
	return entry.token, ok, nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *InMemorySessionStore) ConsumeIfMatch(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.liveLocked(userID)
	if !ok || entry.token != token {
		return false, nil
	}
	delete(s.sessions, userID)
	return true, nil
}

func (s *InMemorySessionStore) liveLocked(userID uuid.UUID) (inMemorySession, bool) {
	entry, ok := s.sessions[userID]
	if !ok {
		return inMemorySession{}, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.sessions, userID)
		return inMemorySession{}, false
	}
	return entry, true
}
