package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore persists session state so a session can be resumed by id.
type SnapshotStore interface {
	Save(ctx context.Context, st State, ttl time.Duration) error
	Load(ctx context.Context, id string) (State, bool, error)
	Delete(ctx context.Context, id string) error
}

// RedisSnapshotStore keeps snapshots as JSON with a TTL.
type RedisSnapshotStore struct {
	redis *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{redis: client}
}

func (s *RedisSnapshotStore) key(id string) string {
	return fmt.Sprintf("wizard:session:%s", id)
}

func (s *RedisSnapshotStore) Save(ctx context.Context, st State, ttl time.Duration) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("booking: marshal snapshot: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(st.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("booking: save snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, id string) (State, bool, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("booking: load snapshot: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, false, fmt.Errorf("booking: unmarshal snapshot: %w", err)
	}
	return st, true, nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("booking: delete snapshot: %w", err)
	}
	return nil
}

// MemorySnapshotStore is the in-process fallback when Redis is not
// configured. Expiry is checked on read.
type MemorySnapshotStore struct {
	mu      sync.Mutex
	entries map[string]memorySnapshot
	now     func() time.Time
}

type memorySnapshot struct {
	data      []byte
	expiresAt time.Time
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{entries: make(map[string]memorySnapshot), now: time.Now}
}

func (s *MemorySnapshotStore) Save(ctx context.Context, st State, ttl time.Duration) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("booking: marshal snapshot: %w", err)
	}
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[st.ID] = memorySnapshot{data: data, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

func (s *MemorySnapshotStore) Load(ctx context.Context, id string) (State, bool, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return State{}, false, nil
	}
	var st State
	if err := json.Unmarshal(entry.data, &st); err != nil {
		return State{}, false, fmt.Errorf("booking: unmarshal snapshot: %w", err)
	}
	return st, true, nil
}

func (s *MemorySnapshotStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
