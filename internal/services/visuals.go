package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizreels/quizreels/internal/metrics"
	"github.com/quizreels/quizreels/internal/models"
)

// gradientPalette drives deterministic background selection: question i
// gets a gradient from palette[i%len] to palette[(i+1)%len], so repeated
// runs over the same input are visually stable.
var gradientPalette = []string{
	"0x667eea",
	"0xf093fb",
	"0x4facfe",
	"0x43e97b",
	"0xfa709a",
}

// VisualProvider resolves a background image for every question. It never
// fails: each tier degrades to the next, ending at a programmatic
// placeholder that does not depend on external tooling.
type VisualProvider struct {
	tool     MediaTool
	provider ImageProvider // nil when AI images are disabled
	http     *http.Client
	logger   zerolog.Logger
}

func NewVisualProvider(tool MediaTool, provider ImageProvider) *VisualProvider {
	return &VisualProvider{
		tool:     tool,
		provider: provider,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   log.With().Str("component", "visuals").Logger(),
	}
}

// Resolve walks the fallback chain for one question and always returns a
// frame-sized visual.
func (p *VisualProvider) Resolve(ctx context.Context, index int, q models.Question) VisualAsset {
	if q.Image != nil && *q.Image != "" {
		if asset, err := p.fromReference(ctx, index, *q.Image); err == nil {
			return asset
		} else {
			p.logger.Warn().Err(err).Int("index", index).Msg("supplied image unusable, falling back")
		}
	}

	if p.provider != nil {
		if asset, err := p.fromAI(ctx, index, q.Question); err == nil {
			return asset
		} else {
			p.logger.Warn().Err(err).Int("index", index).Str("provider", p.provider.Name()).Msg("AI image failed, falling back")
			metrics.FallbackSubstitutions.WithLabelValues("visual").Inc()
		}
	}

	if asset, err := p.gradient(ctx, index); err == nil {
		return asset
	} else {
		p.logger.Warn().Err(err).Int("index", index).Msg("gradient generation failed, falling back")
	}

	if asset, err := p.solid(ctx, index); err == nil {
		return asset
	} else {
		p.logger.Warn().Err(err).Int("index", index).Msg("solid color generation failed, falling back")
	}

	return p.placeholder(index)
}

// fromReference handles question-supplied images: data URIs are decoded
// inline, http(s) URLs are fetched. Either way the result is scaled and
// padded to the frame.
func (p *VisualProvider) fromReference(ctx context.Context, index int, ref string) (VisualAsset, error) {
	var data []byte
	var err error

	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err = decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = p.fetch(ctx, ref)
	default:
		return VisualAsset{}, fmt.Errorf("unsupported image reference")
	}
	if err != nil {
		return VisualAsset{}, err
	}

	return p.scaleBytes(ctx, index, "supplied", data)
}

func (p *VisualProvider) fromAI(ctx context.Context, index int, question string) (VisualAsset, error) {
	prompt := BuildImagePrompt(question)
	data, err := p.provider.GenerateImage(ctx, prompt)
	if err != nil {
		return VisualAsset{}, err
	}
	return p.scaleBytes(ctx, index, "ai", data)
}

func (p *VisualProvider) scaleBytes(ctx context.Context, index int, origin string, data []byte) (VisualAsset, error) {
	raw := p.tool.TempPath(fmt.Sprintf("visual_%d_%s_raw", index, origin))
	if err := os.WriteFile(raw, data, 0644); err != nil {
		return VisualAsset{}, fmt.Errorf("failed to write image: %w", err)
	}

	out := p.tool.TempPath(fmt.Sprintf("visual_%d_%s.png", index, origin))
	if err := p.tool.ScaleImage(ctx, raw, out); err != nil {
		p.tool.Cleanup(raw)
		return VisualAsset{}, err
	}
	p.tool.Cleanup(raw)
	return VisualAsset{Path: out}, nil
}

func (p *VisualProvider) gradient(ctx context.Context, index int) (VisualAsset, error) {
	from := gradientPalette[index%len(gradientPalette)]
	to := gradientPalette[(index+1)%len(gradientPalette)]

	out := p.tool.TempPath(fmt.Sprintf("visual_%d_gradient.png", index))
	if err := p.tool.GenerateGradientImage(ctx, out, from, to); err != nil {
		return VisualAsset{}, err
	}
	return VisualAsset{Path: out}, nil
}

func (p *VisualProvider) solid(ctx context.Context, index int) (VisualAsset, error) {
	out := p.tool.TempPath(fmt.Sprintf("visual_%d_solid.png", index))
	if err := p.tool.GenerateColorImage(ctx, out, gradientPalette[index%len(gradientPalette)]); err != nil {
		return VisualAsset{}, err
	}
	return VisualAsset{Path: out}, nil
}

// placeholder writes a frame-sized solid PNG without touching the
// transcoding tool. Last resort, must not fail; write errors are logged
// and the path returned regardless so the failure surfaces at render time
// with a real error message.
func (p *VisualProvider) placeholder(index int) VisualAsset {
	out := p.tool.TempPath(fmt.Sprintf("visual_%d_placeholder.png", index))

	img := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	fill := paletteRGBA(index)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = fill.R
		img.Pix[i+1] = fill.G
		img.Pix[i+2] = fill.B
		img.Pix[i+3] = 0xff
	}

	f, err := os.Create(out)
	if err != nil {
		p.logger.Error().Err(err).Msg("placeholder write failed")
		return VisualAsset{Path: out}
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		p.logger.Error().Err(err).Msg("placeholder encode failed")
	}
	return VisualAsset{Path: out}
}

func paletteRGBA(index int) color.RGBA {
	hex := strings.TrimPrefix(gradientPalette[index%len(gradientPalette)], "0x")
	var r, g, b uint8
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func (p *VisualProvider) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	// 20MB cap guards against hostile or misconfigured URLs
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("image fetch read failed: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image fetch returned empty body")
	}
	return data, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	idx := strings.Index(uri, ",")
	if idx < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := uri[:idx], uri[idx+1:]
	if !strings.Contains(meta, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	return data, nil
}
