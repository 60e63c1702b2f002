package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() GenerateVideoRequest {
	return GenerateVideoRequest{
		Title: "Quiz Geography",
		Questions: []Question{
			{Question: "What is the capital of France?", Answer: "Paris"},
			{Question: "Which ocean is the largest?", Answer: "Pacific"},
			{Question: "How many continents are there?", Answer: "7"},
		},
	}
}

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	req := validRequest()
	require.NoError(t, req.Validate())
}

func TestValidateRejectsMissingTitle(t *testing.T) {
	req := validRequest()
	req.Title = "   "
	assert.Error(t, req.Validate())
}

func TestValidateQuestionCountBounds(t *testing.T) {
	req := validRequest()
	req.Questions = req.Questions[:2]
	assert.Error(t, req.Validate(), "two questions is below the minimum")

	req = validRequest()
	for len(req.Questions) <= MaxQuestions {
		req.Questions = append(req.Questions, Question{Question: "Q?", Answer: "A"})
	}
	assert.Error(t, req.Validate(), "six questions is above the maximum")
}

func TestValidateRejectsOverlongText(t *testing.T) {
	req := validRequest()
	req.Questions[1].Question = strings.Repeat("x", MaxQuestionLength+1)
	assert.Error(t, req.Validate())

	req = validRequest()
	req.Questions[1].Answer = strings.Repeat("x", MaxQuestionLength+1)
	assert.Error(t, req.Validate())
}

func TestValidateCountsRunesNotBytes(t *testing.T) {
	req := validRequest()
	req.Questions[1].Question = strings.Repeat("ż", MaxQuestionLength)
	assert.NoError(t, req.Validate(), "multi-byte text at the limit is valid")

	req.Questions[1].Question = strings.Repeat("ż", MaxQuestionLength+1)
	assert.Error(t, req.Validate())
}

func TestValidateImageReference(t *testing.T) {
	dataURI := "data:image/png;base64,iVBORw0KGgo="
	url := "https://example.com/bg.jpg"
	garbage := "not-an-image-reference"

	req := validRequest()
	req.Questions[0].Image = &dataURI
	assert.NoError(t, req.Validate())

	req.Questions[0].Image = &url
	assert.NoError(t, req.Validate())

	req.Questions[0].Image = &garbage
	assert.Error(t, req.Validate())
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobStatusWaiting.Terminal())
	assert.False(t, JobStatusProcessing.Terminal())
	assert.True(t, JobStatusCompleted.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
}
