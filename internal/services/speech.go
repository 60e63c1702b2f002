package services

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/quizreels/quizreels/internal/metrics"
	"github.com/quizreels/quizreels/internal/models"
)

// SegmentSpeech is the pair of timed audio tracks for one question clip.
type SegmentSpeech struct {
	Question AudioAsset
	Answer   AudioAsset
}

// SpeechSynthesizer turns question/answer text into audio tracks of exact
// target lengths. Voice generation never fails a job: any provider error
// degrades that half to silence of the same target length.
type SpeechSynthesizer struct {
	tts      TTSService
	tool     MediaTool
	adjuster *DurationAdjuster
	cacheDir string
	useCache bool
	logger   zerolog.Logger
}

func NewSpeechSynthesizer(tts TTSService, tool MediaTool, cacheDir string, useCache bool) *SpeechSynthesizer {
	if useCache {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", cacheDir).Msg("voice cache disabled, cannot create dir")
			useCache = false
		}
	}
	return &SpeechSynthesizer{
		tts:      tts,
		tool:     tool,
		adjuster: NewDurationAdjuster(tool),
		cacheDir: cacheDir,
		useCache: useCache,
		logger:   log.With().Str("component", "speech").Logger(),
	}
}

// Synthesize produces the question and answer tracks for one quiz entry,
// each normalized to its target duration. The two halves run concurrently;
// neither returns an error because silence substitution absorbs failures.
func (s *SpeechSynthesizer) Synthesize(ctx context.Context, index int, q models.Question, settings *models.VoiceSettings, questionTarget, answerTarget float64) SegmentSpeech {
	var speech SegmentSpeech

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		speech.Question = s.track(gctx, fmt.Sprintf("q%d_question", index), q.Question, settings, questionTarget)
		return nil
	})
	g.Go(func() error {
		speech.Answer = s.track(gctx, fmt.Sprintf("q%d_answer", index), q.Answer, settings, answerTarget)
		return nil
	})
	g.Wait()

	return speech
}

// Silence returns a silent track of the given length, used when voice is
// disabled for the whole job.
func (s *SpeechSynthesizer) Silence(ctx context.Context, name string, seconds float64) AudioAsset {
	path := s.tool.TempPath(fmt.Sprintf("silence_%s.mp3", name))
	if err := s.tool.GenerateSilence(ctx, path, seconds); err != nil {
		// Without silence there is no track at all; let the caller's
		// probe of a missing file surface the problem.
		s.logger.Error().Err(err).Msg("silence generation failed")
	}
	return AudioAsset{Path: path, Duration: seconds}
}

// track generates one speech track, falling back to silence on any failure.
func (s *SpeechSynthesizer) track(ctx context.Context, name, text string, settings *models.VoiceSettings, target float64) AudioAsset {
	raw, err := s.generate(ctx, name, text, settings)
	if err != nil {
		s.logger.Warn().Err(err).Str("track", name).Msg("speech failed, substituting silence")
		metrics.FallbackSubstitutions.WithLabelValues("speech").Inc()
		return s.Silence(ctx, name, target)
	}

	duration, err := s.tool.Probe(ctx, raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("track", name).Msg("probe failed, substituting silence")
		return s.Silence(ctx, name, target)
	}

	return s.adjuster.Adjust(ctx, AudioAsset{Path: raw, Duration: duration}, target)
}

// generate fetches speech audio, using the on-disk cache keyed by an md5
// of text plus voice identity so repeated questions skip the provider.
func (s *SpeechSynthesizer) generate(ctx context.Context, name, text string, settings *models.VoiceSettings) (string, error) {
	if s.tts == nil {
		return "", fmt.Errorf("no TTS provider configured")
	}

	var cachePath string
	if s.useCache {
		cachePath = filepath.Join(s.cacheDir, cacheKey(text, settings)+".mp3")
		if info, err := os.Stat(cachePath); err == nil && info.Size() > 0 {
			s.logger.Debug().Str("track", name).Msg("voice cache hit")
			// Hand out a working copy so downstream trimming and cleanup
			// never touch the cached file itself.
			out := s.tool.TempPath(fmt.Sprintf("speech_%s.mp3", name))
			if err := copyFile(cachePath, out); err != nil {
				return "", fmt.Errorf("failed to copy cached speech: %w", err)
			}
			return out, nil
		}
	}

	resp, err := s.tts.GenerateSpeech(ctx, text, settings)
	if err != nil {
		return "", err
	}

	out := s.tool.TempPath(fmt.Sprintf("speech_%s.%s", name, resp.Format))
	if err := os.WriteFile(out, resp.AudioData, 0644); err != nil {
		return "", fmt.Errorf("failed to write speech file: %w", err)
	}

	if s.useCache {
		if err := os.WriteFile(cachePath, resp.AudioData, 0644); err != nil {
			s.logger.Warn().Err(err).Msg("failed to populate voice cache")
		}
	}

	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func cacheKey(text string, settings *models.VoiceSettings) string {
	voice := ""
	if settings != nil && settings.VoiceID != nil {
		voice = *settings.VoiceID
	}
	sum := md5.Sum([]byte(voice + "|" + text))
	return fmt.Sprintf("%x", sum)
}
