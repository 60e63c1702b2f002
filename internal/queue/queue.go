package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	QueueVideoGeneration = "queue:video_generation"

	// delayedSuffix holds tasks scheduled for a retry after backoff.
	delayedSuffix = ":delayed"

	baseRetryDelay = 5 * time.Second
)

// Task is the queue payload. The job record itself lives in the job store;
// the queue only carries the id plus delivery bookkeeping.
type Task struct {
	JobID     uuid.UUID `json:"job_id"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

type Queue struct {
	client      *redis.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      zerolog.Logger
}

func New(redisURL string, maxAttempts int) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, maxAttempts), nil
}

// NewWithClient wraps an existing client. Used by tests with miniredis.
func NewWithClient(client *redis.Client, maxAttempts int) *Queue {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Queue{
		client:      client,
		maxAttempts: maxAttempts,
		baseDelay:   baseRetryDelay,
		logger:      log.With().Str("component", "queue").Logger(),
	}
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// Client exposes the underlying redis client so it can be shared with the
// redis-backed job store.
func (q *Queue) Client() *redis.Client {
	return q.client
}

// Enqueue pushes a fresh task for a job.
func (q *Queue) Enqueue(ctx context.Context, jobID uuid.UUID) error {
	task := &Task{JobID: jobID, CreatedAt: time.Now()}
	return q.push(ctx, task)
}

func (q *Queue) push(ctx context.Context, task *Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	return q.client.RPush(ctx, QueueVideoGeneration, data).Err()
}

// Dequeue blocks up to timeout for the next task. Returns (nil, nil) when
// no task is available. Due delayed retries are promoted ahead of the pop.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	if err := q.promoteDue(ctx); err != nil {
		q.logger.Warn().Err(err).Msg("failed to promote delayed tasks")
	}

	result, err := q.client.BLPop(ctx, timeout, QueueVideoGeneration).Result()
	if err == redis.Nil {
		return nil, nil // No task available
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// Retry schedules a failed delivery for another attempt with exponential
// backoff. Returns false when the attempt budget is exhausted and the task
// has been dropped.
func (q *Queue) Retry(ctx context.Context, task *Task) (bool, error) {
	task.Attempts++
	if task.Attempts >= q.maxAttempts {
		q.logger.Warn().
			Str("job_id", task.JobID.String()).
			Int("attempts", task.Attempts).
			Msg("delivery attempts exhausted, dropping task")
		return false, nil
	}

	delay := q.baseDelay * time.Duration(1<<(task.Attempts-1))
	readyAt := time.Now().Add(delay)

	data, err := json.Marshal(task)
	if err != nil {
		return false, fmt.Errorf("failed to marshal task: %w", err)
	}

	err = q.client.ZAdd(ctx, QueueVideoGeneration+delayedSuffix, &redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: data,
	}).Err()
	if err != nil {
		return false, fmt.Errorf("failed to schedule retry: %w", err)
	}

	q.logger.Info().
		Str("job_id", task.JobID.String()).
		Int("attempt", task.Attempts).
		Dur("delay", delay).
		Msg("task scheduled for retry")
	return true, nil
}

// promoteDue moves delayed tasks whose backoff has elapsed back onto the
// main list, preserving order by readiness.
func (q *Queue) promoteDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	key := QueueVideoGeneration + delayedSuffix

	due, err := q.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return err
	}

	for _, member := range due {
		if err := q.client.ZRem(ctx, key, member).Err(); err != nil {
			return err
		}
		if err := q.client.RPush(ctx, QueueVideoGeneration, member).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Length returns the number of waiting (non-delayed) tasks.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, QueueVideoGeneration).Result()
}
