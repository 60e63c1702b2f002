package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Timing holds the per-question duration budget. All values are seconds.
// TotalDuration is authoritative: question/pause/answer are targets and the
// composed audio is force-adjusted to TotalDuration as a final step.
type Timing struct {
	QuestionDuration float64
	PauseDuration    float64
	AnswerDuration   float64
	TotalDuration    float64
	CountdownEnabled bool
	IntroEnabled     bool
	IntroDuration    float64
}

type Config struct {
	// Server
	APIPort            string
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)
	WorkerEnabled      bool

	// Redis (queue + optional job store)
	RedisURL      string
	JobStore      string // "memory" or "redis"
	QueueAttempts int    // delivery attempts before the queue gives up

	// Directories
	TempDir    string
	OutputDir  string
	AssetsDir  string // tick.mp3 / dong.mp3 countdown cues
	FontPath   string // TTF used for drawtext burn-in
	CacheDir   string // voice cache
	VoiceCache bool
	// Voice cache entry max age in seconds (default 24h)
	VoiceCacheMaxAge int

	// AI image generation
	AIImagesEnabled bool
	AIImageProvider string // preferred provider: "openai" or "gemini"
	OpenAIKey       string
	GeminiKey       string

	// ElevenLabs TTS
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	// Timing budget
	Timing Timing
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		JobStore:           getEnv("JOB_STORE", "memory"),
		QueueAttempts:      getEnvInt("QUEUE_ATTEMPTS", 3),
		TempDir:            getEnv("TEMP_DIR", "temp"),
		OutputDir:          getEnv("OUTPUT_DIR", "outputs"),
		AssetsDir:          getEnv("ASSETS_DIR", "assets"),
		FontPath:           getEnv("FONT_PATH", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"),
		CacheDir:           getEnv("CACHE_DIR", "cache/audio"),
		VoiceCache:         getEnvBool("VOICE_CACHE_ENABLED", false),
		VoiceCacheMaxAge:   getEnvInt("VOICE_CACHE_MAX_AGE", 86400),
		AIImagesEnabled:    getEnvBool("AI_IMAGES_ENABLED", true),
		AIImageProvider:    getEnv("AI_IMAGE_PROVIDER", "openai"),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		GeminiKey:          getEnv("GEMINI_API_KEY", ""),
		ElevenLabsKey:      getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID:  getEnv("ELEVENLABS_DEFAULT_VOICE", ""),
		Timing: Timing{
			QuestionDuration: getEnvFloat("QUESTION_DURATION", 3.0),
			PauseDuration:    getEnvFloat("PAUSE_DURATION", 3.0),
			AnswerDuration:   getEnvFloat("ANSWER_DURATION", 2.0),
			TotalDuration:    getEnvFloat("TOTAL_DURATION", 8.0),
			CountdownEnabled: getEnvBool("COUNTDOWN_ENABLED", true),
			IntroEnabled:     getEnvBool("INTRO_ENABLED", true),
			IntroDuration:    getEnvFloat("INTRO_DURATION", 4.0),
		},
	}

	if err := cfg.Timing.validate(); err != nil {
		return nil, err
	}

	switch cfg.JobStore {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("JOB_STORE must be \"memory\" or \"redis\", got %q", cfg.JobStore)
	}

	switch cfg.AIImageProvider {
	case "openai", "gemini":
	default:
		return nil, fmt.Errorf("AI_IMAGE_PROVIDER must be \"openai\" or \"gemini\", got %q", cfg.AIImageProvider)
	}

	if cfg.QueueAttempts < 1 {
		return nil, fmt.Errorf("QUEUE_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func (t Timing) validate() error {
	for name, v := range map[string]float64{
		"QUESTION_DURATION": t.QuestionDuration,
		"PAUSE_DURATION":    t.PauseDuration,
		"ANSWER_DURATION":   t.AnswerDuration,
		"TOTAL_DURATION":    t.TotalDuration,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
	}
	if t.IntroEnabled && t.IntroDuration <= 0 {
		return fmt.Errorf("INTRO_DURATION must be positive when intro is enabled, got %v", t.IntroDuration)
	}
	if t.QuestionDuration+t.PauseDuration+t.AnswerDuration > t.TotalDuration+0.5 {
		return fmt.Errorf("question+pause+answer (%.1fs) exceeds TOTAL_DURATION (%.1fs)",
			t.QuestionDuration+t.PauseDuration+t.AnswerDuration, t.TotalDuration)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
