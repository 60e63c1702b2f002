package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizreels/quizreels/internal/jobs"
	"github.com/quizreels/quizreels/internal/metrics"
	"github.com/quizreels/quizreels/internal/models"
	"github.com/quizreels/quizreels/internal/queue"
	"github.com/quizreels/quizreels/internal/storage"
)

type Handler struct {
	manager *jobs.Manager
	queue   *queue.Queue
	store   *storage.Store
	logger  zerolog.Logger
}

func NewHandler(manager *jobs.Manager, q *queue.Queue, store *storage.Store) *Handler {
	return &Handler{
		manager: manager,
		queue:   q,
		store:   store,
		logger:  log.With().Str("component", "api").Logger(),
	}
}

// GenerateVideo handles POST /api/video/generate
func (h *Handler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := req.ToJob()
	if err := h.manager.Create(r.Context(), job); err != nil {
		h.logger.Error().Err(err).Msg("failed to create job")
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.Enqueue(r.Context(), job.ID); err != nil {
		h.logger.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to enqueue job")
		respondError(w, http.StatusInternalServerError, "Failed to queue job")
		return
	}

	metrics.JobsAccepted.Inc()
	h.logger.Info().Str("job_id", job.ID.String()).Int("questions", len(job.Questions)).Msg("job accepted")

	respondJSON(w, http.StatusAccepted, models.GenerateVideoResponse{
		JobID:  job.ID,
		Status: job.Status,
	})
}

// GetStatus handles GET /api/video/status/{id}
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.manager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error().Err(err).Str("job_id", id.String()).Msg("status lookup failed")
		respondError(w, http.StatusInternalServerError, "Failed to fetch job")
		return
	}

	respondJSON(w, http.StatusOK, models.StatusResponseFrom(job))
}

// DownloadVideo handles GET /api/video/download/{jobId}/{filename}
func (h *Handler) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	filename := chi.URLParam(r, "filename")

	path, err := h.store.Resolve(jobID, filename)
	if err != nil {
		respondError(w, http.StatusNotFound, "Video not found")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
