package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeForcesTotalDuration(t *testing.T) {
	tool := newFakeMediaTool(t)
	b := NewCompositeBuilder(tool, NewCountdownComposer(tool, t.TempDir(), false))

	speech := SegmentSpeech{
		Question: AudioAsset{Path: tool.seed("q.mp3", 3.0), Duration: 3.0},
		Answer:   AudioAsset{Path: tool.seed("a.mp3", 2.0), Duration: 2.0},
	}

	// parts sum to 8.0 but a drifted sum would still be corrected
	out := b.Compose(context.Background(), 0, speech, 3.0, 8.0)
	assert.InDelta(t, 8.0, out.Duration, durationTolerance)
}

func TestComposeCorrectsCumulativeDrift(t *testing.T) {
	tool := newFakeMediaTool(t)
	b := NewCompositeBuilder(tool, NewCountdownComposer(tool, t.TempDir(), false))

	// each part under target; parts sum to 6.9, total target is 8.0
	speech := SegmentSpeech{
		Question: AudioAsset{Path: tool.seed("q.mp3", 2.5), Duration: 2.5},
		Answer:   AudioAsset{Path: tool.seed("a.mp3", 1.4), Duration: 1.4},
	}

	out := b.Compose(context.Background(), 1, speech, 3.0, 8.0)
	assert.InDelta(t, 8.0, out.Duration, durationTolerance)
}

func TestComposeConcatFailureYieldsSilence(t *testing.T) {
	tool := newFakeMediaTool(t)
	tool.fail("concat_audio")
	b := NewCompositeBuilder(tool, NewCountdownComposer(tool, t.TempDir(), false))

	speech := SegmentSpeech{
		Question: AudioAsset{Path: tool.seed("q.mp3", 3.0), Duration: 3.0},
		Answer:   AudioAsset{Path: tool.seed("a.mp3", 2.0), Duration: 2.0},
	}

	out := b.Compose(context.Background(), 0, speech, 3.0, 8.0)
	assert.InDelta(t, 8.0, out.Duration, durationTolerance)
	assert.NotEmpty(t, out.Path)
}
