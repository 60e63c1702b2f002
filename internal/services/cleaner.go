package services

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Cleaner sweeps aged files out of the voice cache and scratch directory
// on an hourly schedule so long-running deployments don't fill the disk.
type Cleaner struct {
	cron     *cron.Cron
	cacheDir string
	tempDir  string
	maxAge   time.Duration
	logger   zerolog.Logger
}

func NewCleaner(cacheDir, tempDir string, maxAge time.Duration) *Cleaner {
	return &Cleaner{
		cron:     cron.New(),
		cacheDir: cacheDir,
		tempDir:  tempDir,
		maxAge:   maxAge,
		logger:   log.With().Str("component", "cleaner").Logger(),
	}
}

func (c *Cleaner) Start() {
	c.cron.AddFunc("@hourly", func() {
		c.Sweep()
	})
	c.cron.Start()
	c.logger.Info().Dur("max_age", c.maxAge).Msg("cleanup schedule started")
}

func (c *Cleaner) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// Sweep removes files older than maxAge from both directories.
func (c *Cleaner) Sweep() {
	removed := c.sweepDir(c.cacheDir)
	removed += c.sweepDir(c.tempDir)
	if removed > 0 {
		c.logger.Info().Int("removed", removed).Msg("swept aged files")
	}
}

func (c *Cleaner) sweepDir(dir string) int {
	if dir == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.logger.Warn().Err(err).Str("dir", dir).Msg("sweep read failed")
		return 0
	}

	cutoff := time.Now().Add(-c.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed
}
