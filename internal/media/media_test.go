package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptFor(t *testing.T) {
	assert.Equal(t, analysisPrompts[ModeObjects], PromptFor(ModeObjects))
	assert.Equal(t, analysisPrompts[ModeGeneral], PromptFor("unknown"))
	assert.True(t, ModeTechnical.Valid())
	assert.False(t, AnalysisMode("unknown").Valid())
}

func TestGenerateImageRejectsSize(t *testing.T) {
	s, err := NewOpenAIStudio("test-key", Models{})
	require.NoError(t, err)

	_, err = s.GenerateImage(context.Background(), "a cat", "640x480")
	assert.ErrorIs(t, err, ErrUnsupportedSize)
}

func TestNewOpenAIStudioRequiresKey(t *testing.T) {
	_, err := NewOpenAIStudio("", Models{})
	assert.Error(t, err)
}
