package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizreels/quizreels/internal/metrics"
)

// Slot lengths for the tick/tick/dong cue sequence. Two short ticks a
// second apart, then the dong, then trailing silence fills out the pause.
const (
	tickSlot     = 0.1
	tickGap      = 0.9
	dongSlot     = 0.3
	minTrailing  = 0.0
	tickFileName = "tick.mp3"
	dongFileName = "dong.mp3"
)

// CountdownComposer builds the fixed-length pause track played between a
// question and its answer. It never fails outward: missing cue assets or
// a concat failure degrade the pause to plain silence.
type CountdownComposer struct {
	tool      MediaTool
	assetsDir string
	enabled   bool
	logger    zerolog.Logger
}

func NewCountdownComposer(tool MediaTool, assetsDir string, enabled bool) *CountdownComposer {
	return &CountdownComposer{
		tool:      tool,
		assetsDir: assetsDir,
		enabled:   enabled,
		logger:    log.With().Str("component", "countdown").Logger(),
	}
}

// Build returns a pause track of exactly pauseDuration seconds.
func (c *CountdownComposer) Build(ctx context.Context, index int, pauseDuration float64) AudioAsset {
	if !c.enabled {
		return c.silence(ctx, index, pauseDuration)
	}

	trailing := pauseDuration - (tickSlot + tickGap + tickSlot + tickGap + dongSlot)
	if trailing < minTrailing {
		// Pause too short for the full sequence; cues would spill past it.
		c.logger.Debug().Float64("pause", pauseDuration).Msg("pause too short for cues, using silence")
		return c.silence(ctx, index, pauseDuration)
	}

	asset, err := c.compose(ctx, index, trailing)
	if err != nil {
		c.logger.Warn().Err(err).Msg("countdown assembly failed, using silence")
		metrics.FallbackSubstitutions.WithLabelValues("countdown").Inc()
		return c.silence(ctx, index, pauseDuration)
	}
	asset.Duration = pauseDuration
	return asset
}

func (c *CountdownComposer) compose(ctx context.Context, index int, trailing float64) (AudioAsset, error) {
	tickPath := filepath.Join(c.assetsDir, tickFileName)
	dongPath := filepath.Join(c.assetsDir, dongFileName)
	for _, p := range []string{tickPath, dongPath} {
		if _, err := os.Stat(p); err != nil {
			return AudioAsset{}, fmt.Errorf("cue asset missing: %w", err)
		}
	}

	// Cue files may be longer than their slots; hard-trim each to length.
	tick := c.tool.TempPath(fmt.Sprintf("cd%d_tick.mp3", index))
	if err := c.tool.TrimAudio(ctx, tickPath, tick, tickSlot); err != nil {
		return AudioAsset{}, err
	}
	dong := c.tool.TempPath(fmt.Sprintf("cd%d_dong.mp3", index))
	if err := c.tool.TrimAudio(ctx, dongPath, dong, dongSlot); err != nil {
		return AudioAsset{}, err
	}

	gap := c.tool.TempPath(fmt.Sprintf("cd%d_gap.mp3", index))
	if err := c.tool.GenerateSilence(ctx, gap, tickGap); err != nil {
		return AudioAsset{}, err
	}

	parts := []string{tick, gap, tick, gap, dong}
	var tail string
	if trailing > 0 {
		tail = c.tool.TempPath(fmt.Sprintf("cd%d_tail.mp3", index))
		if err := c.tool.GenerateSilence(ctx, tail, trailing); err != nil {
			return AudioAsset{}, err
		}
		parts = append(parts, tail)
	}

	out := c.tool.TempPath(fmt.Sprintf("cd%d_pause.mp3", index))
	if err := c.tool.ConcatAudio(ctx, parts, out); err != nil {
		c.tool.Cleanup(tick, dong, gap, tail)
		return AudioAsset{}, err
	}

	c.tool.Cleanup(tick, dong, gap, tail)
	return AudioAsset{Path: out}, nil
}

func (c *CountdownComposer) silence(ctx context.Context, index int, seconds float64) AudioAsset {
	path := c.tool.TempPath(fmt.Sprintf("cd%d_silence.mp3", index))
	if err := c.tool.GenerateSilence(ctx, path, seconds); err != nil {
		c.logger.Error().Err(err).Msg("pause silence generation failed")
	}
	return AudioAsset{Path: path, Duration: seconds}
}
