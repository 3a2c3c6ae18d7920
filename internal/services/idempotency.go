// internal/services/idempotency.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyPending = "pending"
	memoryPruneSize    = 1024
)

// IdempotencyStore remembers which order a client request key produced.
type IdempotencyStore interface {
	// Reserve claims key. When the key already completed, the original order id is returned
	// with reserved=false; a key still in flight yields ErrDuplicateRequest.
	Reserve(ctx context.Context, key string) (orderID string, reserved bool, err error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotencyStore) redisKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.redisKey(key), idempotencyPending, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := s.rdb.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls
		return s.Reserve(ctx, key)
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == idempotencyPending {
		return "", false, ErrDuplicateRequest
	}
	return val, false, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	return s.rdb.Set(ctx, s.redisKey(key), orderID, s.ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.redisKey(key)).Err()
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryIdempotencyStore is the single-process store used when Redis is not configured.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryIdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if len(s.entries) >= memoryPruneSize {
		for k, entry := range s.entries {
			if !now.Before(entry.expires) {
				delete(s.entries, k)
			}
		}
	}

	if entry, ok := s.entries[key]; ok && now.Before(entry.expires) {
		if entry.value == idempotencyPending {
			return "", false, ErrDuplicateRequest
		}
		return entry.value, false, nil
	}

	s.entries[key] = memoryEntry{value: idempotencyPending, expires: now.Add(s.ttl)}
	return "", true, nil
}

func (s *MemoryIdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: orderID, expires: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
