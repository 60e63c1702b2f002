package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildImagePromptMatchesCategory(t *testing.T) {
	prompt := BuildImagePrompt("What is the capital of France?")
	assert.Contains(t, prompt, "city skyline")
	assert.Contains(t, prompt, "no text")
}

func TestBuildImagePromptPolishKeywords(t *testing.T) {
	prompt := BuildImagePrompt("Jaka jest najdłuższa rzeka w Polsce i gdzie ma swoje źródło?")
	assert.Contains(t, prompt, "majestic river")
}

func TestBuildImagePromptFallbackIncludesTopic(t *testing.T) {
	prompt := BuildImagePrompt("Qzx unknowable gibberish?")
	assert.Contains(t, prompt, "Qzx unknowable gibberish?")
	assert.True(t, strings.HasPrefix(prompt, "abstract background"))
}

func TestBuildImagePromptDeterministic(t *testing.T) {
	q := "Which mountain overlooks the ocean near the old sport stadium?"
	first := BuildImagePrompt(q)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildImagePrompt(q))
	}
}
