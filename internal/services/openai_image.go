package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIImageService generates background visuals via DALL-E 3.
type OpenAIImageService struct {
	client *openai.Client
	logger zerolog.Logger
}

var _ ImageProvider = (*OpenAIImageService)(nil)

func NewOpenAIImageService(apiKey string) *OpenAIImageService {
	return &OpenAIImageService{
		client: openai.NewClient(apiKey),
		logger: log.With().Str("component", "openai").Logger(),
	}
}

func (s *OpenAIImageService) Name() string { return "dall-e-3" }

// GenerateImage requests a portrait image and returns the decoded bytes.
// DALL-E 3 has no 9:16 size, so 1024x1792 is used and the caller pads to
// the final frame.
func (s *OpenAIImageService) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	s.logger.Info().Int("prompt_len", len(prompt)).Msg("generating image")

	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Model:          openai.CreateImageModelDallE3,
		Prompt:         prompt,
		Size:           openai.CreateImageSize1024x1792,
		Quality:        openai.CreateImageQualityStandard,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation returned no data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	s.logger.Debug().Int("bytes", len(data)).Msg("image generated")
	return data, nil
}
