package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizreels/quizreels/internal/metrics"
)

// CompositeBuilder assembles the full audio track for one question clip:
// question speech, countdown pause, answer speech, forced to exactly the
// configured per-question total so every clip has identical length.
type CompositeBuilder struct {
	tool      MediaTool
	countdown *CountdownComposer
	adjuster  *DurationAdjuster
	logger    zerolog.Logger
}

func NewCompositeBuilder(tool MediaTool, countdown *CountdownComposer) *CompositeBuilder {
	return &CompositeBuilder{
		tool:      tool,
		countdown: countdown,
		adjuster:  NewDurationAdjuster(tool),
		logger:    log.With().Str("component", "composite").Logger(),
	}
}

// Compose builds the composite track for question index. Never fails
// outward: a composition error degrades to silence of totalDuration so
// that rendering can always proceed.
func (b *CompositeBuilder) Compose(ctx context.Context, index int, speech SegmentSpeech, pauseDuration, totalDuration float64) AudioAsset {
	pause := b.countdown.Build(ctx, index, pauseDuration)

	out := b.tool.TempPath(fmt.Sprintf("composite_%d.mp3", index))
	parts := []string{speech.Question.Path, pause.Path, speech.Answer.Path}
	if err := b.tool.ConcatAudio(ctx, parts, out); err != nil {
		b.logger.Warn().Err(err).Int("index", index).Msg("composite concat failed, using silence")
		metrics.FallbackSubstitutions.WithLabelValues("composite").Inc()
		return b.silence(ctx, index, totalDuration)
	}

	duration, err := b.tool.Probe(ctx, out)
	if err != nil {
		// Parts were already individually length-corrected; assume the sum.
		duration = speech.Question.Duration + pause.Duration + speech.Answer.Duration
	}

	// Final correction absorbs cumulative drift from the three parts.
	return b.adjuster.Adjust(ctx, AudioAsset{Path: out, Duration: duration}, totalDuration)
}

func (b *CompositeBuilder) silence(ctx context.Context, index int, seconds float64) AudioAsset {
	path := b.tool.TempPath(fmt.Sprintf("composite_%d_silence.mp3", index))
	if err := b.tool.GenerateSilence(ctx, path, seconds); err != nil {
		b.logger.Error().Err(err).Msg("composite silence generation failed")
	}
	return AudioAsset{Path: path, Duration: seconds}
}
