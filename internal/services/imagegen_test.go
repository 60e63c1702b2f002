package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectImageProvider(t *testing.T) {
	cases := []struct {
		name      string
		preferred string
		openai    string
		gemini    string
		want      string
	}{
		{"preferred openai", "openai", "sk-1", "g-1", "dall-e-3"},
		{"preferred gemini", "gemini", "sk-1", "g-1", "gemini"},
		{"gemini preferred but unconfigured", "gemini", "sk-1", "", "dall-e-3"},
		{"openai preferred but unconfigured", "openai", "", "g-1", "gemini"},
		{"no preference set", "", "", "g-1", "gemini"},
		{"no keys at all", "openai", "", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := SelectImageProvider(tc.preferred, tc.openai, tc.gemini)
			if tc.want == "" {
				assert.Nil(t, p)
				return
			}
			if assert.NotNil(t, p) {
				assert.Equal(t, tc.want, p.Name())
			}
		})
	}
}
