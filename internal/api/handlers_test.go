package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizreels/quizreels/internal/jobs"
	"github.com/quizreels/quizreels/internal/models"
	"github.com/quizreels/quizreels/internal/queue"
	"github.com/quizreels/quizreels/internal/storage"
)

type testEnv struct {
	router  http.Handler
	manager *jobs.Manager
	queue   *queue.Queue
	store   *storage.Store
}

func newTestEnv(t *testing.T, cfg RouterConfig) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := queue.NewWithClient(client, 3)

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	manager := jobs.NewManager(jobs.NewMemoryStore())
	h := NewHandler(manager, q, store)
	return &testEnv{
		router:  NewRouter(h, cfg),
		manager: manager,
		queue:   q,
		store:   store,
	}
}

func validRequest() map[string]interface{} {
	questions := make([]map[string]string, 3)
	for i := range questions {
		questions[i] = map[string]string{
			"question": fmt.Sprintf("Question %d?", i+1),
			"answer":   fmt.Sprintf("Answer %d", i+1),
		}
	}
	return map[string]interface{}{
		"title":     "Geography Quiz",
		"questions": questions,
	}
}

func postJSON(t *testing.T, router http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateVideoAcceptsValidRequest(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	rec := postJSON(t, env.router, "/api/video/generate", validRequest())
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp models.GenerateVideoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.JobStatusWaiting, resp.Status)

	job, err := env.manager.Get(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Geography Quiz", job.Title)
	assert.True(t, job.EnableVoice)

	length, err := env.queue.Length(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, length)
}

func TestGenerateVideoRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	tooFew := validRequest()
	tooFew["questions"] = tooFew["questions"].([]map[string]string)[:2]
	rec := postJSON(t, env.router, "/api/video/generate", tooFew)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	noTitle := validRequest()
	noTitle["title"] = "  "
	rec = postJSON(t, env.router, "/api/video/generate", noTitle)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/api/video/generate", bytes.NewReader([]byte("{not json")))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatus(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	job := &models.Job{ID: uuid.New(), Title: "Quiz"}
	require.NoError(t, env.manager.Create(context.Background(), job))

	req := httptest.NewRequest("GET", "/api/video/status/"+job.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.JobStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, job.ID, resp.JobID)
	assert.Equal(t, models.JobStatusWaiting, resp.Status)
}

func TestGetStatusNotFound(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	req := httptest.NewRequest("GET", "/api/video/status/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest("GET", "/api/video/status/not-a-uuid", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadVideo(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	src := filepath.Join(t.TempDir(), "final.mp4")
	require.NoError(t, os.WriteFile(src, []byte("video-bytes"), 0644))
	ref, err := env.store.Publish("job-1", src)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", ref, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video-bytes", rec.Body.String())
}

func TestDownloadVideoNotFound(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	req := httptest.NewRequest("GET", "/api/video/download/nope/quiz_video.mp4", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t, RouterConfig{BackendAPIKey: "secret"})

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	env := newTestEnv(t, RouterConfig{BackendAPIKey: "secret"})

	req := httptest.NewRequest("GET", "/api/video/status/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/api/video/status/"+uuid.NewString(), nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest("GET", "/api/video/status/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
