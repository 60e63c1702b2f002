package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// fakeMediaTool stands in for the ffmpeg-backed implementation. It creates
// real (tiny) files so os.Stat-based checks behave, and tracks a duration
// per path so Probe answers without decoding anything. Individual
// operations can be made to fail by name.
type fakeMediaTool struct {
	t   *testing.T
	dir string

	mu        sync.Mutex
	durations map[string]float64
	failing   map[string]bool
	calls     []string
}

func newFakeMediaTool(t *testing.T) *fakeMediaTool {
	return &fakeMediaTool{
		t:         t,
		dir:       t.TempDir(),
		durations: make(map[string]float64),
		failing:   make(map[string]bool),
	}
}

func (f *fakeMediaTool) fail(op string)    { f.failing[op] = true }
func (f *fakeMediaTool) recover(op string) { delete(f.failing, op) }

func (f *fakeMediaTool) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if f.failing[op] {
		return fmt.Errorf("%s forced to fail", op)
	}
	return nil
}

func (f *fakeMediaTool) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeMediaTool) touch(path string, duration float64) {
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		f.t.Fatalf("fake touch: %v", err)
	}
	f.mu.Lock()
	f.durations[path] = duration
	f.mu.Unlock()
}

// seed registers an input file with a known duration, as if it came from
// an earlier pipeline stage.
func (f *fakeMediaTool) seed(name string, duration float64) string {
	path := filepath.Join(f.dir, name)
	f.touch(path, duration)
	return path
}

func (f *fakeMediaTool) TempPath(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *fakeMediaTool) Cleanup(paths ...string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

func (f *fakeMediaTool) Probe(_ context.Context, path string) (float64, error) {
	if err := f.record("probe"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.durations[path]
	if !ok {
		return 0, fmt.Errorf("unknown file %s", path)
	}
	return d, nil
}

func (f *fakeMediaTool) GenerateSilence(_ context.Context, path string, seconds float64) error {
	if err := f.record("silence"); err != nil {
		return err
	}
	f.touch(path, seconds)
	return nil
}

func (f *fakeMediaTool) TrimAudio(_ context.Context, inPath, outPath string, seconds float64) error {
	if err := f.record("trim"); err != nil {
		return err
	}
	if _, err := os.Stat(inPath); err != nil {
		return err
	}
	f.touch(outPath, seconds)
	return nil
}

func (f *fakeMediaTool) ConcatAudio(_ context.Context, inputs []string, outPath string) error {
	if err := f.record("concat_audio"); err != nil {
		return err
	}
	var total float64
	f.mu.Lock()
	for _, in := range inputs {
		total += f.durations[in]
	}
	f.mu.Unlock()
	f.touch(outPath, total)
	return nil
}

func (f *fakeMediaTool) GenerateGradientImage(_ context.Context, path, _, _ string) error {
	if err := f.record("gradient"); err != nil {
		return err
	}
	f.touch(path, 0)
	return nil
}

func (f *fakeMediaTool) GenerateColorImage(_ context.Context, path, _ string) error {
	if err := f.record("color"); err != nil {
		return err
	}
	f.touch(path, 0)
	return nil
}

func (f *fakeMediaTool) ScaleImage(_ context.Context, inPath, outPath string) error {
	if err := f.record("scale"); err != nil {
		return err
	}
	if _, err := os.Stat(inPath); err != nil {
		return err
	}
	f.touch(outPath, 0)
	return nil
}

func (f *fakeMediaTool) RenderSegment(_ context.Context, spec SegmentSpec) error {
	if err := f.record("render_segment"); err != nil {
		return err
	}
	f.touch(spec.OutputPath, spec.Duration)
	return nil
}

func (f *fakeMediaTool) RenderIntro(_ context.Context, spec IntroSpec) error {
	if err := f.record("render_intro"); err != nil {
		return err
	}
	f.touch(spec.OutputPath, spec.Duration)
	return nil
}

func (f *fakeMediaTool) ConcatVideos(_ context.Context, inputs []string, outPath string) error {
	if err := f.record("concat_videos"); err != nil {
		return err
	}
	var total float64
	f.mu.Lock()
	for _, in := range inputs {
		total += f.durations[in]
	}
	f.mu.Unlock()
	f.touch(outPath, total)
	return nil
}

var _ MediaTool = (*fakeMediaTool)(nil)
