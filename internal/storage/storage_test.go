package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndResolve(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "final.mp4")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0644))

	ref, err := store.Publish("job-1", src)
	require.NoError(t, err)
	assert.Equal(t, "/api/video/download/job-1/quiz_video.mp4", ref)

	// source is gone, published copy resolves
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	path, err := store.Resolve("job-1", "quiz_video.mp4")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	for _, tc := range []struct{ jobID, filename string }{
		{"..", "quiz_video.mp4"},
		{"job-1", "../secret"},
		{"job/1", "quiz_video.mp4"},
		{"job-1", `..\secret`},
	} {
		_, err := store.Resolve(tc.jobID, tc.filename)
		assert.Error(t, err, "jobID=%q filename=%q", tc.jobID, tc.filename)
	}
}

func TestResolveMissingFile(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Resolve("nope", "quiz_video.mp4")
	assert.Error(t, err)
}
