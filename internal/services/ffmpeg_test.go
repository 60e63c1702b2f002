package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeDrawtext(t *testing.T) {
	cases := map[string]string{
		"plain question":        "plain question",
		"what's this":           `what\'s this`,
		"a:b":                   `a\:b`,
		"50% sure":              `50\% sure`,
		"[brackets], ;and more": `\[brackets\]\, \;and more`,
		`back\slash`:            `back\\slash`,
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeDrawtext(in))
	}
}

func TestEscapeFFmpegFilterPath(t *testing.T) {
	cases := map[string]string{
		"/usr/share/fonts/DejaVuSans-Bold.ttf": "/usr/share/fonts/DejaVuSans-Bold.ttf",
		"C:\\Fonts\\arial.ttf":                 "C\\:\\\\Fonts\\\\arial.ttf",
		"/fonts/user's font.ttf":               "/fonts/user'\\''s font.ttf",
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeFFmpegFilterPath(in))
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "3.000", formatSeconds(3))
	assert.Equal(t, "0.100", formatSeconds(0.1))
	assert.Equal(t, "8.500", formatSeconds(8.5))
}

func TestTempPathAndCleanup(t *testing.T) {
	dir := t.TempDir()
	svc := NewFFmpegService(dir, "/tmp/font.ttf")

	path := svc.TempPath("scratch.mp3")
	assert.Equal(t, filepath.Join(dir, "scratch.mp3"), path)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	svc.Cleanup(path)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewFFmpegServiceCreatesTempDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scratch")
	NewFFmpegService(dir, "")

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
