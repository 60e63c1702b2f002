package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Enums

type JobStatus string

const (
	JobStatusWaiting    JobStatus = "waiting"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition may leave this status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

const (
	// MaxQuestionLength bounds both the question and answer text.
	MaxQuestionLength = 120

	MinQuestions = 3
	MaxQuestions = 5
)

// Question is one question/answer pair. Immutable once the job is created.
type Question struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Image    *string `json:"image,omitempty"` // data URI or http(s) URL
}

// VoiceSettings carries optional per-job TTS tuning, passed through to the
// voice provider as-is.
type VoiceSettings struct {
	VoiceID         *string  `json:"voice_id,omitempty"`
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarity_boost,omitempty"`
	Style           *float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost,omitempty"`
}

// Job is the unit of work delivered by the queue and the snapshot returned
// by status queries. Status/Progress/Message/VideoURL/Error are mutated only
// through the jobs.Manager; everything else is immutable after creation.
type Job struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Questions   []Question     `json:"questions"`
	Status      JobStatus      `json:"status"`
	Progress    int            `json:"progress"`
	Message     string         `json:"message,omitempty"`
	VideoURL    *string        `json:"video_url,omitempty"`
	Error       *string        `json:"error,omitempty"`
	EnableVoice bool           `json:"enable_voice"`
	EnableIntro bool           `json:"enable_intro"`
	Voice       *VoiceSettings `json:"voice_settings,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// API request/response DTOs

type GenerateVideoRequest struct {
	Title       string         `json:"title"`
	Questions   []Question     `json:"questions"`
	EnableVoice *bool          `json:"enableVoice,omitempty"`
	EnableIntro *bool          `json:"enableIntro,omitempty"`
	Voice       *VoiceSettings `json:"voiceSettings,omitempty"`
}

// Validate enforces the request contract before a job is accepted.
func (r *GenerateVideoRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(r.Questions) < MinQuestions || len(r.Questions) > MaxQuestions {
		return fmt.Errorf("between %d and %d questions are required, got %d", MinQuestions, MaxQuestions, len(r.Questions))
	}
	for i, q := range r.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d: text is required", i+1)
		}
		if strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("question %d: answer is required", i+1)
		}
		if utf8.RuneCountInString(q.Question) > MaxQuestionLength {
			return fmt.Errorf("question %d: text exceeds %d characters", i+1, MaxQuestionLength)
		}
		if utf8.RuneCountInString(q.Answer) > MaxQuestionLength {
			return fmt.Errorf("question %d: answer exceeds %d characters", i+1, MaxQuestionLength)
		}
		if q.Image != nil && *q.Image != "" {
			img := *q.Image
			if !strings.HasPrefix(img, "data:") && !strings.HasPrefix(img, "http://") && !strings.HasPrefix(img, "https://") {
				return fmt.Errorf("question %d: image must be a data URI or http(s) URL", i+1)
			}
		}
	}
	return nil
}

// ToJob builds a fresh job record from a validated request. Voice and
// intro default to enabled when the request leaves them unset.
func (r *GenerateVideoRequest) ToJob() *Job {
	enableVoice := true
	if r.EnableVoice != nil {
		enableVoice = *r.EnableVoice
	}
	enableIntro := true
	if r.EnableIntro != nil {
		enableIntro = *r.EnableIntro
	}
	return &Job{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(r.Title),
		Questions:   r.Questions,
		EnableVoice: enableVoice,
		EnableIntro: enableIntro,
		Voice:       r.Voice,
	}
}

type GenerateVideoResponse struct {
	JobID  uuid.UUID `json:"jobId"`
	Status JobStatus `json:"status"`
}

// JobStatusResponse is the public snapshot of a job. Callers only ever see
// the four statuses plus a message; raw subprocess errors never appear here.
type JobStatusResponse struct {
	JobID     uuid.UUID `json:"jobId"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message,omitempty"`
	VideoURL  *string   `json:"videoUrl,omitempty"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusResponseFrom builds the public snapshot from a job record.
func StatusResponseFrom(job *Job) JobStatusResponse {
	return JobStatusResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		Message:   job.Message,
		VideoURL:  job.VideoURL,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}
