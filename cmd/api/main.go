package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizreels/quizreels/internal/api"
	"github.com/quizreels/quizreels/internal/config"
	"github.com/quizreels/quizreels/internal/jobs"
	"github.com/quizreels/quizreels/internal/queue"
	"github.com/quizreels/quizreels/internal/services"
	"github.com/quizreels/quizreels/internal/storage"
	"github.com/quizreels/quizreels/internal/worker"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Timestamp().Logger()

	log.Info().Msg("starting quizreels API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	q, err := queue.New(cfg.RedisURL, cfg.QueueAttempts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to queue")
	}
	defer q.Close()
	log.Info().Msg("connected to Redis queue")

	var store jobs.Store
	if cfg.JobStore == "redis" {
		store = jobs.NewRedisStore(q.Client())
		log.Info().Msg("job store: redis")
	} else {
		store = jobs.NewMemoryStore()
		log.Info().Msg("job store: memory")
	}
	manager := jobs.NewManager(store)

	outputs, err := storage.New(cfg.OutputDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize output store")
	}

	handler := api.NewHandler(manager, q, outputs)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Info().Msg("API key authentication enabled")
	} else {
		log.Warn().Msg("no BACKEND_API_KEY set, API is unprotected (dev mode)")
	}

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	cleaner := services.NewCleaner(cfg.CacheDir, cfg.TempDir, time.Duration(cfg.VoiceCacheMaxAge)*time.Second)
	cleaner.Start()
	defer cleaner.Stop()

	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Info().Msg("worker enabled, starting background processing")

		ffmpegSvc := services.NewFFmpegService(cfg.TempDir, cfg.FontPath)

		var imageProvider services.ImageProvider
		if cfg.AIImagesEnabled {
			imageProvider = services.SelectImageProvider(cfg.AIImageProvider, cfg.OpenAIKey, cfg.GeminiKey)
		}
		if imageProvider != nil {
			log.Info().Str("provider", imageProvider.Name()).Msg("AI image generation enabled")
		} else {
			log.Info().Msg("AI image generation disabled, using gradient backgrounds")
		}

		var ttsSvc services.TTSService
		if cfg.ElevenLabsKey != "" {
			ttsSvc = services.NewElevenLabsService(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
			log.Info().Str("voice", cfg.ElevenLabsVoiceID).Msg("TTS provider: ElevenLabs")
		} else {
			log.Warn().Msg("no ELEVENLABS_API_KEY set, voice tracks degrade to silence")
		}

		visuals := services.NewVisualProvider(ffmpegSvc, imageProvider)
		speech := services.NewSpeechSynthesizer(ttsSvc, ffmpegSvc, cfg.CacheDir, cfg.VoiceCache)
		countdown := services.NewCountdownComposer(ffmpegSvc, cfg.AssetsDir, cfg.Timing.CountdownEnabled)
		composite := services.NewCompositeBuilder(ffmpegSvc, countdown)

		w := worker.New(manager, q, visuals, speech, composite, ffmpegSvc, outputs, cfg.Timing)

		var workerCtx context.Context
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx)
	}

	go func() {
		log.Info().Str("port", cfg.APIPort).Msg("API server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	if workerCancel != nil {
		workerCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
