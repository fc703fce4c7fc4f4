package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "mq:token:"

// TokenStore is a shared key-value store with per-entry expiry. Get reports
// found=false for missing or expired entries.
type TokenStore interface {
	Get(ctx context.Context, key string) (token string, found bool, err error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

func NewRedisStore(addr, password, keyPrefix string) *RedisStore {
	return newRedisStore(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	}), keyPrefix)
}

func newRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	token, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "redis GET failed")
	}
	return token, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	err := s.client.Set(ctx, s.keyPrefix+key, token, ttl).Err()
	if err != nil {
		return errors.Wrap(err, "redis SET failed")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore keeps tokens for the lifetime of the process only.
type MemoryStore struct {
	entries map[string]memoryEntry
	now     func() time.Time
	mu      *sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		mu:      &sync.Mutex{},
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	defer s.mu.Unlock()
	s.mu.Lock()

	entry, contains := s.entries[key]
	if !contains {
		return "", false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.token, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	defer s.mu.Unlock()
	s.mu.Lock()

	s.entries[key] = memoryEntry{token: token, expiresAt: s.now().Add(ttl)}
	return nil
}
