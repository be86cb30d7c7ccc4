package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/travel-planner-api/internal/kvstore"
	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
)

const keyPrefix = "session:"

var ErrNotFound = errors.New("session not found")

// Store keeps session contexts between requests. Entries expire after the store's TTL.
type Store interface {
	Load(ctx context.Context, id string) (models.SessionContext, error)
	Save(ctx context.Context, id string, sess models.SessionContext) error
	Delete(ctx context.Context, id string) error
}

type RedisStore struct {
	kv *kvstore.RedisClient[models.SessionContext]
}

func NewRedisStore(client *redis.Client, logger zerolog.Logger, ttl time.Duration) *RedisStore {
	logger = logger.With().Str("component", "RedisSessionStore").Logger()
	return &RedisStore{kv: kvstore.NewRedisClient[models.SessionContext](client, logger, ttl)}
}

func (s *RedisStore) Load(ctx context.Context, id string) (models.SessionContext, error) {
	sess, err := s.kv.Get(ctx, keyPrefix+id)
	if errors.Is(err, kvstore.ErrMiss) {
		return models.SessionContext{}, ErrNotFound
	}
	return sess, err
}

func (s *RedisStore) Save(ctx context.Context, id string, sess models.SessionContext) error {
	return s.kv.Set(ctx, keyPrefix+id, sess)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, keyPrefix+id)
}

type memoryEntry struct {
	sess      models.SessionContext
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Expired entries are invisible to Load
// and are removed by Purge.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (models.SessionContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		return models.SessionContext{}, ErrNotFound
	}
	return entry.sess, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, sess models.SessionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{sess: sess, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// Purge drops expired entries and reports how many were removed.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
