package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output format constants: 1080x1920 portrait at 25fps.
// Every clip is encoded with exactly these parameters so the final
// concatenation can stream-copy instead of re-encoding.
const (
	frameWidth  = 1080
	frameHeight = 1920
	videoFPS    = 25

	audioSampleRate = 44100
	audioBitrate    = "192k"

	questionFontSize = 48
	answerFontSize   = 42
	titleFontSize    = 64
)

// FFmpegService implements MediaTool by shelling out to ffmpeg/ffprobe,
// one subprocess per operation, blocking until it exits.
type FFmpegService struct {
	tempDir  string
	fontPath string
	logger   zerolog.Logger
}

func NewFFmpegService(tempDir, fontPath string) *FFmpegService {
	// Create temp directory if it doesn't exist
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		panic(fmt.Sprintf("failed to create temp dir: %v", err))
	}

	return &FFmpegService{
		tempDir:  tempDir,
		fontPath: fontPath,
		logger:   log.With().Str("component", "ffmpeg").Logger(),
	}
}

var _ MediaTool = (*FFmpegService)(nil)

func (s *FFmpegService) TempPath(name string) string {
	return filepath.Join(s.tempDir, name)
}

func (s *FFmpegService) Cleanup(paths ...string) {
	for _, path := range paths {
		os.Remove(path)
	}
}

func (s *FFmpegService) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		s.logger.Debug().Str("stderr", truncate(string(out), 2000)).Msg("ffmpeg failed")
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// Probe returns the duration of a media file in seconds using ffprobe.
func (s *FFmpegService) Probe(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, "ffprobe", args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var durationSec float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(output)), "%f", &durationSec); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return durationSec, nil
}

func (s *FFmpegService) GenerateSilence(ctx context.Context, path string, seconds float64) error {
	return s.run(ctx,
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", audioSampleRate),
		"-t", formatSeconds(seconds),
		"-c:a", "libmp3lame",
		"-y",
		path,
	)
}

func (s *FFmpegService) TrimAudio(ctx context.Context, inPath, outPath string, seconds float64) error {
	return s.run(ctx,
		"-i", inPath,
		"-t", formatSeconds(seconds),
		"-c", "copy",
		"-y",
		outPath,
	)
}

// ConcatAudio joins audio files via the concat filter with a re-encode.
// The inputs come from different origins (TTS output, generated silence,
// cue assets), so stream-copy concatenation is not an option.
func (s *FFmpegService) ConcatAudio(ctx context.Context, inputs []string, outPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no audio inputs to concatenate")
	}

	args := make([]string, 0, 2*len(inputs)+8)
	var labels strings.Builder
	for i, in := range inputs {
		args = append(args, "-i", in)
		fmt.Fprintf(&labels, "[%d:a]", i)
	}
	filter := fmt.Sprintf("%sconcat=n=%d:v=0:a=1[a]", labels.String(), len(inputs))

	args = append(args,
		"-filter_complex", filter,
		"-map", "[a]",
		"-c:a", "libmp3lame",
		"-ar", fmt.Sprintf("%d", audioSampleRate),
		"-y",
		outPath,
	)
	return s.run(ctx, args...)
}

func (s *FFmpegService) GenerateGradientImage(ctx context.Context, path, fromColor, toColor string) error {
	return s.run(ctx,
		"-f", "lavfi",
		"-i", fmt.Sprintf("gradients=s=%dx%d:c0=%s:c1=%s:x0=%d:y0=0:x1=%d:y1=%d",
			frameWidth, frameHeight, fromColor, toColor, frameWidth/2, frameWidth/2, frameHeight),
		"-frames:v", "1",
		"-y",
		path,
	)
}

func (s *FFmpegService) GenerateColorImage(ctx context.Context, path, color string) error {
	return s.run(ctx,
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:size=%dx%d", color, frameWidth, frameHeight),
		"-frames:v", "1",
		"-y",
		path,
	)
}

// ScaleImage fits an arbitrary image into the target frame, padding with
// black instead of distorting the aspect ratio.
func (s *FFmpegService) ScaleImage(ctx context.Context, inPath, outPath string) error {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		frameWidth, frameHeight, frameWidth, frameHeight,
	)
	return s.run(ctx,
		"-i", inPath,
		"-vf", vf,
		"-frames:v", "1",
		"-y",
		outPath,
	)
}

// RenderSegment renders one question clip: still background scaled to the
// frame, question text burned in above midline, answer below, composite
// audio muxed in, capped at the configured duration.
func (s *FFmpegService) RenderSegment(ctx context.Context, spec SegmentSpec) error {
	s.logger.Info().
		Str("output", spec.OutputPath).
		Float64("duration", spec.Duration).
		Msg("rendering segment")

	question := escapeDrawtext(spec.QuestionText)
	answer := escapeDrawtext(spec.AnswerText)
	font := escapeFFmpegFilterPath(s.fontPath)

	filter := fmt.Sprintf(
		"[0:v]scale=%d:%d,setsar=1[bg];"+
			"[bg]drawtext=fontfile=%s:text='%s':fontcolor=white:fontsize=%d:box=1:boxcolor=black@0.7:boxborderw=10:x=(w-text_w)/2:y=(h-text_h)/2-100[q];"+
			"[q]drawtext=fontfile=%s:text='%s':fontcolor=yellow:fontsize=%d:box=1:boxcolor=black@0.7:boxborderw=8:x=(w-text_w)/2:y=(h-text_h)/2+100[v]",
		frameWidth, frameHeight,
		font, question, questionFontSize,
		font, answer, answerFontSize,
	)

	return s.run(ctx,
		"-loop", "1",
		"-i", spec.ImagePath,
		"-i", spec.AudioPath,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "1:a",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-t", formatSeconds(spec.Duration),
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprintf("%d", videoFPS),
		"-y",
		spec.OutputPath,
	)
}

// RenderIntro renders the title card with a silent audio track, using the
// same encode parameters as question segments.
func (s *FFmpegService) RenderIntro(ctx context.Context, spec IntroSpec) error {
	s.logger.Info().
		Str("output", spec.OutputPath).
		Float64("duration", spec.Duration).
		Msg("rendering intro")

	title := escapeDrawtext(spec.Title)
	filter := fmt.Sprintf(
		"[0:v]scale=%d:%d,setsar=1[bg];"+
			"[bg]drawtext=fontfile=%s:text='%s':fontcolor=white:fontsize=%d:box=1:boxcolor=black@0.6:boxborderw=14:x=(w-text_w)/2:y=(h-text_h)/2[v]",
		frameWidth, frameHeight,
		escapeFFmpegFilterPath(s.fontPath), title, titleFontSize,
	)

	return s.run(ctx,
		"-loop", "1",
		"-i", spec.BackgroundPath,
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", audioSampleRate),
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "1:a",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-t", formatSeconds(spec.Duration),
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprintf("%d", videoFPS),
		"-y",
		spec.OutputPath,
	)
}

// ConcatVideos joins clips into one file using the concat demuxer with
// stream copy. All inputs must share container/codec parameters; the
// renderer guarantees that by always using the same encode settings.
func (s *FFmpegService) ConcatVideos(ctx context.Context, inputs []string, outPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	listPath := filepath.Join(s.tempDir, fmt.Sprintf("concat_%s.txt", filepath.Base(outPath)))
	f, err := os.Create(listPath)
	if err != nil {
		return fmt.Errorf("failed to create concat list: %w", err)
	}
	for _, path := range inputs {
		// FFmpeg concat demuxer format
		fmt.Fprintf(f, "file '%s'\n", path)
	}
	f.Close()
	defer os.Remove(listPath)

	return s.run(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outPath,
	)
}

// escapeFFmpegFilterPath escapes special characters in file paths for FFmpeg filter syntax.
// FFmpeg filter strings treat colons, backslashes, and single quotes specially.
func escapeFFmpegFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "'\\''")
	return path
}

// escapeDrawtext escapes characters the drawtext filter would otherwise
// interpret as filter syntax.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}

// truncate limits a string to maxLen characters for log output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
