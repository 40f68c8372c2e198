package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore checkpoints step outputs in Redis with a bounded lifetime.
type RedisStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisStore creates a checkpoint store. Checkpoints expire after ttl so
// abandoned runs do not accumulate forever.
func NewRedisStore(client *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func checkpointKey(runID, step string) string {
	return fmt.Sprintf("workflow:%s:step:%s", runID, step)
}

// Get returns the checkpointed output for (runID, step), if any.
func (s *RedisStore) Get(ctx context.Context, runID, step string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, checkpointKey(runID, step)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores the output for (runID, step).
func (s *RedisStore) Set(ctx context.Context, runID, step string, output []byte) error {
	return s.client.Set(ctx, checkpointKey(runID, step), output, s.ttl).Err()
}

// MemoryStore is an in-process checkpoint store for tests and local runs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns the stored output for (runID, step), if any.
func (s *MemoryStore) Get(_ context.Context, runID, step string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[checkpointKey(runID, step)]
	return val, ok, nil
}

// Set stores the output for (runID, step).
func (s *MemoryStore) Set(_ context.Context, runID, step string, output []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[checkpointKey(runID, step)] = output
	return nil
}
