package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizreels/quizreels/internal/models"
)

// Manager owns job state. The state machine is linear with one exception
// edge:
//
//	waiting -> processing -> completed
//	processing -> failed
//
// No transition leaves completed or failed, and progress never decreases
// within a run. Exactly one orchestrator owns a job at a time, so mutations
// are plain read-modify-write against the store.
type Manager struct {
	store  Store
	logger zerolog.Logger
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:  store,
		logger: log.With().Str("component", "jobs").Logger(),
	}
}

// Create registers a new job in the waiting state.
func (m *Manager) Create(ctx context.Context, job *models.Job) error {
	now := time.Now()
	job.Status = models.JobStatusWaiting
	job.Progress = 0
	job.CreatedAt = now
	job.UpdatedAt = now
	if err := m.store.Put(ctx, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	m.logger.Info().Str("job_id", job.ID.String()).Int("questions", len(job.Questions)).Msg("job created")
	return nil
}

// Get returns the last known snapshot of a job. It never triggers work.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return m.store.Get(ctx, id)
}

// SetProcessing moves a waiting job into the processing state.
func (m *Manager) SetProcessing(ctx context.Context, id uuid.UUID, message string) error {
	return m.update(ctx, id, func(job *models.Job) error {
		if job.Status.Terminal() {
			return fmt.Errorf("job %s is already %s", id, job.Status)
		}
		job.Status = models.JobStatusProcessing
		job.Message = message
		return nil
	})
}

// SetProgress records a checkpoint. Checkpoints lower than the current
// progress are ignored so progress stays monotonic within a run.
func (m *Manager) SetProgress(ctx context.Context, id uuid.UUID, progress int, message string) error {
	return m.update(ctx, id, func(job *models.Job) error {
		if job.Status.Terminal() {
			return fmt.Errorf("job %s is already %s", id, job.Status)
		}
		if progress > job.Progress {
			job.Progress = progress
		}
		job.Message = message
		return nil
	})
}

// Complete marks a job finished and records the output reference.
func (m *Manager) Complete(ctx context.Context, id uuid.UUID, videoURL, message string) error {
	err := m.update(ctx, id, func(job *models.Job) error {
		if job.Status.Terminal() {
			return fmt.Errorf("job %s is already %s", id, job.Status)
		}
		job.Status = models.JobStatusCompleted
		job.Progress = 100
		job.Message = message
		job.VideoURL = &videoURL
		job.Error = nil
		return nil
	})
	if err == nil {
		m.logger.Info().Str("job_id", id.String()).Str("video_url", videoURL).Msg("job completed")
	}
	return err
}

// Fail marks a job failed with a translated error summary. The last
// progress checkpoint is retained so callers can see where the run stopped.
func (m *Manager) Fail(ctx context.Context, id uuid.UUID, errText string) error {
	err := m.update(ctx, id, func(job *models.Job) error {
		if job.Status.Terminal() {
			return fmt.Errorf("job %s is already %s", id, job.Status)
		}
		job.Status = models.JobStatusFailed
		job.Message = "Video generation failed"
		job.Error = &errText
		return nil
	})
	if err == nil {
		m.logger.Warn().Str("job_id", id.String()).Str("error", errText).Msg("job failed")
	}
	return err
}

func (m *Manager) update(ctx context.Context, id uuid.UUID, mutate func(*models.Job) error) error {
	job, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := mutate(job); err != nil {
		return err
	}
	job.UpdatedAt = time.Now()
	return m.store.Put(ctx, job)
}
