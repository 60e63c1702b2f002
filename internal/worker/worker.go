package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizreels/quizreels/internal/config"
	"github.com/quizreels/quizreels/internal/jobs"
	"github.com/quizreels/quizreels/internal/metrics"
	"github.com/quizreels/quizreels/internal/models"
	"github.com/quizreels/quizreels/internal/queue"
	"github.com/quizreels/quizreels/internal/services"
)

// Consumer-side views of the pipeline stages. The concrete services
// implement them; tests substitute fakes.

type VisualResolver interface {
	Resolve(ctx context.Context, index int, q models.Question) services.VisualAsset
}

type SpeechProvider interface {
	Synthesize(ctx context.Context, index int, q models.Question, settings *models.VoiceSettings, questionTarget, answerTarget float64) services.SegmentSpeech
	Silence(ctx context.Context, name string, seconds float64) services.AudioAsset
}

type Composer interface {
	Compose(ctx context.Context, index int, speech services.SegmentSpeech, pauseDuration, totalDuration float64) services.AudioAsset
}

type Publisher interface {
	Publish(jobID, srcPath string) (string, error)
}

// Worker drains the render queue and drives the pipeline for one job at a
// time. Concurrency stays at one so scratch files for a job are never
// touched by two runs.
type Worker struct {
	manager *jobs.Manager
	queue   *queue.Queue
	visuals VisualResolver
	speech  SpeechProvider
	compose Composer
	media   services.MediaTool
	store   Publisher
	timing  config.Timing
	logger  zerolog.Logger
}

func New(
	manager *jobs.Manager,
	q *queue.Queue,
	visuals VisualResolver,
	speech SpeechProvider,
	compose Composer,
	media services.MediaTool,
	store Publisher,
	timing config.Timing,
) *Worker {
	return &Worker{
		manager: manager,
		queue:   q,
		visuals: visuals,
		speech:  speech,
		compose: compose,
		media:   media,
		store:   store,
		timing:  timing,
		logger:  log.With().Str("component", "worker").Logger(),
	}
}

// Start blocks draining the queue until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info().Msg("worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker shutting down")
			return
		default:
		}

		task, err := w.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			w.logger.Error().Err(err).Msg("dequeue failed")
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		w.handle(ctx, task)
	}
}

func (w *Worker) handle(ctx context.Context, task *queue.Task) {
	logger := w.logger.With().Str("job_id", task.JobID.String()).Logger()
	logger.Info().Int("attempt", task.Attempts+1).Msg("processing job")

	err := w.Process(ctx, task.JobID)
	if err == nil {
		return
	}
	logger.Error().Err(err).Msg("job attempt failed")

	requeued, rerr := w.queue.Retry(ctx, task)
	if rerr != nil {
		logger.Error().Err(rerr).Msg("failed to requeue task")
	}
	if requeued {
		metrics.QueueRetries.Inc()
		return
	}
	logger.Warn().Msg("retry budget exhausted, failing job")
	w.fail(ctx, task.JobID, err)
}

// Process runs the full pipeline for one attempt at a job. A returned
// error leaves the job non-terminal; the caller decides whether to
// requeue the task or give up and fail the job.
func (w *Worker) Process(ctx context.Context, jobID uuid.UUID) error {
	started := time.Now()

	job, err := w.manager.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("job lookup failed: %w", err)
	}
	if job.Status.Terminal() {
		w.logger.Warn().Str("job_id", jobID.String()).Str("status", string(job.Status)).Msg("job already terminal, skipping")
		return nil
	}

	if err := w.manager.SetProcessing(ctx, jobID, "Starting video generation"); err != nil {
		return fmt.Errorf("failed to mark processing: %w", err)
	}

	outputPath, err := w.render(ctx, job)
	if err != nil {
		return err
	}

	videoURL, err := w.store.Publish(jobID.String(), outputPath)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	if err := w.manager.Complete(ctx, jobID, videoURL, "Video generation completed"); err != nil {
		return fmt.Errorf("failed to mark completed: %w", err)
	}

	metrics.JobsCompleted.Inc()
	metrics.RenderDuration.Observe(time.Since(started).Seconds())
	w.logger.Info().Str("job_id", jobID.String()).Msg("job completed")
	return nil
}

func (w *Worker) fail(ctx context.Context, jobID uuid.UUID, cause error) {
	if err := w.manager.Fail(ctx, jobID, cause.Error()); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID.String()).Msg("failed to mark job failed")
	}
	metrics.JobsFailed.Inc()
}

// render walks the pipeline stages in order, reporting progress at fixed
// checkpoints. Visual and audio stages degrade internally and never
// error; rendering and concatenation are fatal.
func (w *Worker) render(ctx context.Context, job *models.Job) (string, error) {
	jobID := job.ID
	name := jobID.String()
	n := len(job.Questions)

	w.progress(ctx, jobID, 10, "Preparing assets")

	visuals := make([]services.VisualAsset, n)
	for i, q := range job.Questions {
		visuals[i] = w.visuals.Resolve(ctx, i, q)
	}
	w.progress(ctx, jobID, 20, "Background visuals ready")

	speeches := make([]services.SegmentSpeech, n)
	for i, q := range job.Questions {
		if job.EnableVoice {
			speeches[i] = w.speech.Synthesize(ctx, i, q, job.Voice, w.timing.QuestionDuration, w.timing.AnswerDuration)
		} else {
			speeches[i] = services.SegmentSpeech{
				Question: w.speech.Silence(ctx, fmt.Sprintf("q%d_question", i), w.timing.QuestionDuration),
				Answer:   w.speech.Silence(ctx, fmt.Sprintf("q%d_answer", i), w.timing.AnswerDuration),
			}
		}
	}
	w.progress(ctx, jobID, 40, "Voice tracks ready")

	composites := make([]services.AudioAsset, n)
	for i := range job.Questions {
		composites[i] = w.compose.Compose(ctx, i, speeches[i], w.timing.PauseDuration, w.timing.TotalDuration)
	}
	w.progress(ctx, jobID, 60, "Audio composites ready")

	var clips []string
	if job.EnableIntro && w.timing.IntroEnabled {
		intro, err := w.renderIntro(ctx, job)
		if err != nil {
			return "", fmt.Errorf("intro rendering failed: %w", err)
		}
		clips = append(clips, intro)
	}

	for i, q := range job.Questions {
		segPath := w.media.TempPath(fmt.Sprintf("%s_segment_%d.mp4", name, i))
		spec := services.SegmentSpec{
			ImagePath:    visuals[i].Path,
			AudioPath:    composites[i].Path,
			OutputPath:   segPath,
			QuestionText: q.Question,
			AnswerText:   q.Answer,
			Duration:     w.timing.TotalDuration,
		}
		if err := w.media.RenderSegment(ctx, spec); err != nil {
			return "", fmt.Errorf("segment %d rendering failed: %w", i, err)
		}
		clips = append(clips, segPath)

		// segment inputs are consumed; drop them early
		w.media.Cleanup(visuals[i].Path, composites[i].Path, speeches[i].Question.Path, speeches[i].Answer.Path)
	}
	w.progress(ctx, jobID, 90, "Video clips rendered")

	outputPath := w.media.TempPath(fmt.Sprintf("%s_final.mp4", name))
	if err := w.media.ConcatVideos(ctx, clips, outputPath); err != nil {
		return "", fmt.Errorf("concatenation failed: %w", err)
	}
	w.media.Cleanup(clips...)

	return outputPath, nil
}

// renderIntro builds the title card over the first palette gradient.
func (w *Worker) renderIntro(ctx context.Context, job *models.Job) (string, error) {
	jobID := job.ID.String()

	bg := w.media.TempPath(fmt.Sprintf("%s_intro_bg.png", jobID))
	if err := w.media.GenerateGradientImage(ctx, bg, "0x667eea", "0xf093fb"); err != nil {
		if err := w.media.GenerateColorImage(ctx, bg, "0x667eea"); err != nil {
			return "", err
		}
	}

	out := w.media.TempPath(fmt.Sprintf("%s_intro.mp4", jobID))
	spec := services.IntroSpec{
		BackgroundPath: bg,
		OutputPath:     out,
		Title:          job.Title,
		Duration:       w.timing.IntroDuration,
	}
	if err := w.media.RenderIntro(ctx, spec); err != nil {
		return "", err
	}
	w.media.Cleanup(bg)
	return out, nil
}

func (w *Worker) progress(ctx context.Context, jobID uuid.UUID, pct int, message string) {
	if err := w.manager.SetProgress(ctx, jobID, pct, message); err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID.String()).Int("progress", pct).Msg("progress update failed")
	}
}
