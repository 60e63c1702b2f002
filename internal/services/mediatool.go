package services

import (
	"context"
	"path/filepath"
)

// AudioAsset is an ephemeral audio file on the scratch filesystem.
// Duration is the probed or enforced length in seconds; 0 means unknown.
type AudioAsset struct {
	Path     string
	Duration float64
}

// VisualAsset is a still image sized to the target video frame.
type VisualAsset struct {
	Path string
}

// SegmentSpec describes one question's video clip: a background visual, the
// composite audio track, and the texts burned in above and below midline.
type SegmentSpec struct {
	ImagePath    string
	AudioPath    string
	OutputPath   string
	QuestionText string
	AnswerText   string
	Duration     float64
}

// IntroSpec describes the title card rendered before the first question.
type IntroSpec struct {
	BackgroundPath string
	OutputPath     string
	Title          string
	Duration       float64
}

// MediaTool abstracts the external transcoding/probing tool so the pipeline
// components never spawn subprocesses themselves. The exec-backed
// implementation is FFmpegService; tests substitute a fake.
//
// All video-producing operations use identical container/codec parameters,
// which is what makes the stream-copy ConcatVideos join valid.
type MediaTool interface {
	// TempPath returns an absolute path for a scratch file.
	TempPath(name string) string
	// Cleanup removes scratch files, ignoring errors.
	Cleanup(paths ...string)

	// Probe returns a media file's duration in seconds.
	Probe(ctx context.Context, path string) (float64, error)

	// GenerateSilence writes a silent audio file of the given length.
	GenerateSilence(ctx context.Context, path string, seconds float64) error
	// TrimAudio hard-trims audio to the given length, preserving the start.
	// Stream copy, no re-encode.
	TrimAudio(ctx context.Context, inPath, outPath string, seconds float64) error
	// ConcatAudio joins audio files of mixed origin into one track.
	// Re-encodes, because stream-copy concat demands matching codec
	// parameters across inputs.
	ConcatAudio(ctx context.Context, inputs []string, outPath string) error

	// GenerateGradientImage writes a full-frame vertical gradient still.
	GenerateGradientImage(ctx context.Context, path, fromColor, toColor string) error
	// GenerateColorImage writes a full-frame solid color still.
	GenerateColorImage(ctx context.Context, path, color string) error
	// ScaleImage scales/pads an arbitrary image to the target frame.
	ScaleImage(ctx context.Context, inPath, outPath string) error

	// RenderSegment produces one fixed-length question clip.
	RenderSegment(ctx context.Context, spec SegmentSpec) error
	// RenderIntro produces the fixed-length title card clip.
	RenderIntro(ctx context.Context, spec IntroSpec) error
	// ConcatVideos joins clips sharing encode parameters by stream copy.
	ConcatVideos(ctx context.Context, inputs []string, outPath string) error
}

func baseName(path string) string {
	return filepath.Base(path)
}
