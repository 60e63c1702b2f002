package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const outputFileName = "quiz_video.mp4"

// Store publishes finished videos under a per-job directory and resolves
// download references back to files. Serving the bytes over a transport
// is the HTTP layer's job.
type Store struct {
	outputDir string
	logger    zerolog.Logger
}

func New(outputDir string) (*Store, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &Store{
		outputDir: outputDir,
		logger:    log.With().Str("component", "storage").Logger(),
	}, nil
}

// Publish moves a rendered video from scratch space into the output tree
// and returns its download reference. Rename first, copy across
// filesystems when rename fails.
func (s *Store) Publish(jobID, srcPath string) (string, error) {
	dir := filepath.Join(s.outputDir, jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create job output dir: %w", err)
	}

	dst := filepath.Join(dir, outputFileName)
	if err := os.Rename(srcPath, dst); err != nil {
		if err := copyFile(srcPath, dst); err != nil {
			return "", fmt.Errorf("failed to publish video: %w", err)
		}
		os.Remove(srcPath)
	}

	s.logger.Info().Str("job_id", jobID).Str("path", dst).Msg("video published")
	return fmt.Sprintf("/api/video/download/%s/%s", jobID, outputFileName), nil
}

// Resolve maps a download reference back to a filesystem path, rejecting
// anything that would escape the output tree.
func (s *Store) Resolve(jobID, filename string) (string, error) {
	if strings.Contains(jobID, "..") || strings.Contains(filename, "..") ||
		strings.ContainsAny(jobID, `/\`) || strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("invalid path component")
	}

	path := filepath.Join(s.outputDir, jobID, filename)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("video not found: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("video not found")
	}
	return path, nil
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
