package services

import "context"

// ImageProvider is the interface any AI image backend must implement.
// Providers are assumed rate-limited and intermittently unavailable; the
// visual fallback chain never assumes success.
type ImageProvider interface {
	// GenerateImage returns raw image bytes for the prompt, portrait
	// orientation.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	// Name identifies the provider in logs.
	Name() string
}

// SelectImageProvider picks the backend for the configured preference. A
// preference whose key is missing falls back to whichever provider does
// have one; with no keys at all there is no provider.
func SelectImageProvider(preferred, openaiKey, geminiKey string) ImageProvider {
	switch {
	case preferred == "gemini" && geminiKey != "":
		return NewGeminiImageService(geminiKey)
	case preferred != "gemini" && openaiKey != "":
		return NewOpenAIImageService(openaiKey)
	case geminiKey != "":
		return NewGeminiImageService(geminiKey)
	case openaiKey != "":
		return NewOpenAIImageService(openaiKey)
	}
	return nil
}
