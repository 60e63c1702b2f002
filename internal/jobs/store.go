package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/quizreels/quizreels/internal/models"
)

// ErrNotFound is returned by Store.Get for unknown job ids.
var ErrNotFound = errors.New("job not found")

// Store is the key-value store backing the job lifecycle. Implementations
// need no transactional guarantees beyond last-write-wins per job id: the
// Manager is the single writer for any given job.
type Store interface {
	Put(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// ---------------------------------------------------------------------------
// MemoryStore is the default single-process store.
// ---------------------------------------------------------------------------

type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[uuid.UUID]models.Job)}
}

func (s *MemoryStore) Put(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

// ---------------------------------------------------------------------------
// RedisStore is the shared store for multi-process deployments.
// ---------------------------------------------------------------------------

const redisJobTTL = 7 * 24 * time.Hour

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisJobKey(id uuid.UUID) string {
	return "job:" + id.String()
}

func (s *RedisStore) Put(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.client.Set(ctx, redisJobKey(job.ID), data, redisJobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	data, err := s.client.Get(ctx, redisJobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
