package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizreels/quizreels/internal/models"
)

// ---------------------------------------------------------------------------
// ElevenLabs Text-to-Speech Service
// Uses ElevenLabs REST API to convert text into high-quality speech audio.
// Model: eleven_flash_v2_5 (Flash v2.5 — fast, 32 languages, ~75ms latency)
// ---------------------------------------------------------------------------

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io"
	elevenLabsDefaultModel = "eleven_flash_v2_5"
	elevenLabsDefaultVoice = "pNInz6obpgDQGcFmaJgB" // Default voice ID
	elevenLabsOutputFormat = "mp3_44100_128"        // High-quality MP3
)

// ElevenLabsService handles text-to-speech via ElevenLabs API.
type ElevenLabsService struct {
	apiKey  string
	voiceID string
	modelID string
	client  *http.Client
	logger  zerolog.Logger
}

// Ensure ElevenLabsService implements TTSService at compile time.
var _ TTSService = (*ElevenLabsService)(nil)

// NewElevenLabsService creates an ElevenLabs TTS service. voiceID falls
// back to the built-in default when empty.
func NewElevenLabsService(apiKey, voiceID string) *ElevenLabsService {
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}
	return &ElevenLabsService{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: elevenLabsDefaultModel,
		client:  &http.Client{Timeout: 90 * time.Second},
		logger:  log.With().Str("component", "elevenlabs").Logger(),
	}
}

type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// GenerateSpeech converts text to speech using ElevenLabs. Per-request
// settings override the service defaults field by field.
func (s *ElevenLabsService) GenerateSpeech(ctx context.Context, text string, settings *models.VoiceSettings) (*TTSResponse, error) {
	effectiveVoice := s.voiceID

	// Defaults tuned for clear quiz narration
	voice := &elevenLabsVoiceSettings{
		Stability:       0.60,
		SimilarityBoost: 0.80,
		Style:           0.35,
		UseSpeakerBoost: true,
	}
	if settings != nil {
		if settings.VoiceID != nil && *settings.VoiceID != "" {
			effectiveVoice = *settings.VoiceID
		}
		if settings.Stability != nil {
			voice.Stability = *settings.Stability
		}
		if settings.SimilarityBoost != nil {
			voice.SimilarityBoost = *settings.SimilarityBoost
		}
		if settings.Style != nil {
			voice.Style = *settings.Style
		}
		if settings.UseSpeakerBoost != nil {
			voice.UseSpeakerBoost = *settings.UseSpeakerBoost
		}
	}

	reqBody := elevenLabsRequest{
		Text:          text,
		ModelID:       s.modelID,
		VoiceSettings: voice,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ElevenLabs request: %w", err)
	}

	// POST /v1/text-to-speech/{voice_id}?output_format=mp3_44100_128
	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		elevenLabsBaseURL, effectiveVoice, elevenLabsOutputFormat)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create ElevenLabs request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	s.logger.Info().
		Str("voice", effectiveVoice).
		Str("model", s.modelID).
		Int("text_len", len(text)).
		Msg("generating speech")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ElevenLabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ElevenLabs returned status %d: %s", resp.StatusCode, string(body))
	}

	// The response body IS the audio file
	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ElevenLabs audio response: %w", err)
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("ElevenLabs returned empty audio")
	}

	s.logger.Debug().Int("bytes", len(audioData)).Msg("speech generated")

	return &TTSResponse{
		AudioData: audioData,
		Format:    "mp3",
	}, nil
}
