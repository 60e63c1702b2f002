package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizreels/quizreels/internal/models"
)

type stubImageProvider struct {
	data []byte
	err  error
}

func (s *stubImageProvider) GenerateImage(context.Context, string) ([]byte, error) {
	return s.data, s.err
}

func (s *stubImageProvider) Name() string { return "stub" }

func question(text string, image *string) models.Question {
	return models.Question{Question: text, Answer: "yes", Image: image}
}

func TestResolveUsesSuppliedDataURI(t *testing.T) {
	tool := newFakeMediaTool(t)
	p := NewVisualProvider(tool, &stubImageProvider{err: fmt.Errorf("must not be called")})

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pngbytes"))
	asset := p.Resolve(context.Background(), 0, question("Q?", &uri))

	assert.NotEmpty(t, asset.Path)
	assert.Equal(t, 1, tool.called("scale"))
	assert.Zero(t, tool.called("gradient"))
}

func TestResolveFetchesSuppliedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("imagebytes"))
	}))
	defer srv.Close()

	tool := newFakeMediaTool(t)
	p := NewVisualProvider(tool, nil)

	asset := p.Resolve(context.Background(), 0, question("Q?", &srv.URL))

	assert.NotEmpty(t, asset.Path)
	assert.Equal(t, 1, tool.called("scale"))
}

func TestResolveAIProviderFailureFallsBackToGradient(t *testing.T) {
	tool := newFakeMediaTool(t)
	p := NewVisualProvider(tool, &stubImageProvider{err: fmt.Errorf("quota exceeded")})

	asset := p.Resolve(context.Background(), 0, question("Q?", nil))

	assert.NotEmpty(t, asset.Path)
	assert.Equal(t, 1, tool.called("gradient"))
}

func TestResolveGradientFailureFallsBackToSolid(t *testing.T) {
	tool := newFakeMediaTool(t)
	tool.fail("gradient")
	p := NewVisualProvider(tool, nil)

	asset := p.Resolve(context.Background(), 0, question("Q?", nil))

	assert.NotEmpty(t, asset.Path)
	assert.Equal(t, 1, tool.called("color"))
}

func TestResolvePlaceholderIsLastResort(t *testing.T) {
	tool := newFakeMediaTool(t)
	tool.fail("gradient")
	tool.fail("color")
	p := NewVisualProvider(tool, &stubImageProvider{err: fmt.Errorf("down")})

	asset := p.Resolve(context.Background(), 3, question("Q?", nil))
	require.NotEmpty(t, asset.Path)

	f, err := os.Open(asset.Path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, frameWidth, bounds.Dx())
	assert.Equal(t, frameHeight, bounds.Dy())
}

func TestGradientSelectionIsDeterministic(t *testing.T) {
	toolA := newFakeMediaTool(t)
	toolB := newFakeMediaTool(t)
	pA := NewVisualProvider(toolA, nil)
	pB := NewVisualProvider(toolB, nil)

	for i := 0; i < 7; i++ {
		a := pA.Resolve(context.Background(), i, question("Q?", nil))
		b := pB.Resolve(context.Background(), i, question("Q?", nil))
		assert.Equal(t, strings.TrimPrefix(a.Path, toolA.dir), strings.TrimPrefix(b.Path, toolB.dir))
	}
}
