package services

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// durationTolerance is how far a clip may deviate from its target length
// before we bother correcting it. Correcting sub-tenth-of-a-second drift
// costs a subprocess invocation and buys nothing audible.
const durationTolerance = 0.1

// DurationAdjuster normalizes audio assets to exact target lengths so
// that burned-in text and spoken audio stay in sync across a segment.
type DurationAdjuster struct {
	tool   MediaTool
	logger zerolog.Logger
}

func NewDurationAdjuster(tool MediaTool) *DurationAdjuster {
	return &DurationAdjuster{
		tool:   tool,
		logger: log.With().Str("component", "duration").Logger(),
	}
}

// Adjust returns an asset whose duration is within tolerance of target.
// Audio longer than target is trimmed from the end, keeping the start of
// the speech intact. Audio shorter than target is padded with trailing
// silence. If the correction itself fails the original asset is returned
// unchanged; a slightly off-length clip beats a missing one.
func (a *DurationAdjuster) Adjust(ctx context.Context, asset AudioAsset, target float64) AudioAsset {
	diff := asset.Duration - target
	if math.Abs(diff) <= durationTolerance {
		return asset
	}

	if diff > 0 {
		return a.trim(ctx, asset, target)
	}
	return a.pad(ctx, asset, target, -diff)
}

func (a *DurationAdjuster) trim(ctx context.Context, asset AudioAsset, target float64) AudioAsset {
	out := a.tool.TempPath(fmt.Sprintf("trim_%s", baseName(asset.Path)))
	if err := a.tool.TrimAudio(ctx, asset.Path, out, target); err != nil {
		a.logger.Warn().Err(err).Str("input", asset.Path).Msg("trim failed, keeping original")
		return asset
	}

	a.logger.Debug().
		Float64("from", asset.Duration).
		Float64("to", target).
		Msg("trimmed audio")
	return AudioAsset{Path: out, Duration: target}
}

func (a *DurationAdjuster) pad(ctx context.Context, asset AudioAsset, target, gap float64) AudioAsset {
	silence := a.tool.TempPath(fmt.Sprintf("pad_%s", baseName(asset.Path)))
	if err := a.tool.GenerateSilence(ctx, silence, gap); err != nil {
		a.logger.Warn().Err(err).Msg("silence generation failed, keeping original")
		return asset
	}

	out := a.tool.TempPath(fmt.Sprintf("padded_%s", baseName(asset.Path)))
	if err := a.tool.ConcatAudio(ctx, []string{asset.Path, silence}, out); err != nil {
		a.logger.Warn().Err(err).Str("input", asset.Path).Msg("pad concat failed, keeping original")
		a.tool.Cleanup(silence)
		return asset
	}

	a.tool.Cleanup(silence)
	a.logger.Debug().
		Float64("from", asset.Duration).
		Float64("to", target).
		Msg("padded audio")
	return AudioAsset{Path: out, Duration: target}
}
