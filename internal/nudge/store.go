// Package nudge derives proactive suggestions from the workspace snapshot
// and manages their dismissal lifecycle.
//
// Nudges are ephemeral and regenerated on every snapshot change; dismissal
// is a presentation-layer suppression persisted in a durable key-value
// store, never a mutation of the underlying decision or task.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, std lib
//   - MUST NOT import: internal/feed, internal/workspace, internal/cli
package nudge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qntmpulse/pulse/internal/domain"
)

// Store is the durable dismissal persistence contract. The engine treats a
// missing or failing store as an empty dismissed set rather than breaking
// the session. Records are append-only except for the single-slot undo
// removal.
type Store interface {
	// Dismissed returns the set of dismissed nudge ids.
	Dismissed(ctx context.Context) (map[string]struct{}, error)

	// Dismiss records one dismissal. Recording the same id twice leaves
	// the store unchanged.
	Dismiss(ctx context.Context, rec domain.DismissalRecord) error

	// DismissMany records a batch of dismissals.
	DismissMany(ctx context.Context, recs []domain.DismissalRecord) error

	// Undo removes exactly one dismissal record. Removing an absent id
	// is a no-op.
	Undo(ctx context.Context, nudgeID string) error

	// ClearAll removes every dismissal record.
	ClearAll(ctx context.Context) error
}

// MemoryStore is an in-memory Store, used as the fallback when no durable
// backend is configured and as the test double.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.DismissalRecord
}

// NewMemoryStore creates an empty in-memory dismissal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.DismissalRecord)}
}

// Dismissed implements Store.
func (s *MemoryStore) Dismissed(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.records))
	for id := range s.records {
		out[id] = struct{}{}
	}
	return out, nil
}

// Dismiss implements Store.
func (s *MemoryStore) Dismiss(_ context.Context, rec domain.DismissalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.NudgeID]; ok {
		return nil
	}
	s.records[rec.NudgeID] = rec
	return nil
}

// DismissMany implements Store.
func (s *MemoryStore) DismissMany(ctx context.Context, recs []domain.DismissalRecord) error {
	for _, rec := range recs {
		if err := s.Dismiss(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Undo implements Store.
func (s *MemoryStore) Undo(_ context.Context, nudgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, nudgeID)
	return nil
}

// ClearAll implements Store.
func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.DismissalRecord)
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// RedisStore is a Redis-backed Store. Records are durable (no TTL) and
// keyed by nudge id under a fixed prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed dismissal store from a redis:// URL.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "dismissal:",
	}
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// key generates the Redis key for a nudge id.
func (s *RedisStore) key(nudgeID string) string {
	return s.prefix + nudgeID
}

// Dismissed implements Store.
func (s *RedisStore) Dismissed(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out[iter.Val()[len(s.prefix):]] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan dismissals: %w", err)
	}
	return out, nil
}

// Dismiss implements Store.
func (s *RedisStore) Dismiss(ctx context.Context, rec domain.DismissalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal dismissal: %w", err)
	}
	// SETNX keeps the original dismissal time on repeat dismissals.
	if err := s.client.SetNX(ctx, s.key(rec.NudgeID), data, 0).Err(); err != nil {
		return fmt.Errorf("save dismissal: %w", err)
	}
	return nil
}

// DismissMany implements Store.
func (s *RedisStore) DismissMany(ctx context.Context, recs []domain.DismissalRecord) error {
	pipe := s.client.Pipeline()
	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal dismissal: %w", err)
		}
		pipe.SetNX(ctx, s.key(rec.NudgeID), data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save dismissals: %w", err)
	}
	return nil
}

// Undo implements Store.
func (s *RedisStore) Undo(ctx context.Context, nudgeID string) error {
	if err := s.client.Del(ctx, s.key(nudgeID)).Err(); err != nil {
		return fmt.Errorf("remove dismissal: %w", err)
	}
	return nil
}

// ClearAll implements Store.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan dismissals: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear dismissals: %w", err)
	}
	return nil
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
