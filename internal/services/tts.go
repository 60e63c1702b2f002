package services

import (
	"context"

	"github.com/quizreels/quizreels/internal/models"
)

// TTSResponse is the common response type from any TTS provider.
type TTSResponse struct {
	AudioData []byte
	Format    string // "mp3", "wav", etc.
}

// TTSService is the interface any text-to-speech provider must implement.
// The synthesizer uses whichever is configured without knowing the
// underlying provider.
type TTSService interface {
	// GenerateSpeech converts text to audio. settings may be nil, in which
	// case the provider applies its own defaults.
	GenerateSpeech(ctx context.Context, text string, settings *models.VoiceSettings) (*TTSResponse, error)
}
