package watsonx_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/watsonx"
	"github.com/stretchr/testify/assert"
)

func TestDefaultGenerationConfig(t *testing.T) {
	t.Parallel()

	cfg := watsonx.DefaultGenerationConfig()

	assert.Equal(t, watsonx.ModelGranite4HSmall, cfg.ModelID)
	assert.Equal(t, watsonx.DecodingGreedy, cfg.DecodingMethod)
	assert.Equal(t, 8192, cfg.MaxTokens)
	assert.Equal(t, 50, cfg.TopK)
	assert.Equal(t, 1.0, cfg.TopP)
	assert.Equal(t, 1.1, cfg.RepetitionPenalty)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestGenerationConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	t.Run("fills zero fields", func(t *testing.T) {
		t.Parallel()
		cfg := watsonx.GenerationConfig{}.WithDefaults()
		assert.Equal(t, watsonx.DefaultModel, cfg.ModelID)
		assert.Equal(t, watsonx.DefaultMaxTokens, cfg.MaxTokens)
	})

	t.Run("keeps explicit fields", func(t *testing.T) {
		t.Parallel()
		cfg := watsonx.GenerationConfig{ModelID: watsonx.ModelLlama33_70BInstruct, MaxTokens: 100, TopK: 5}.WithDefaults()
		assert.Equal(t, watsonx.ModelLlama33_70BInstruct, cfg.ModelID)
		assert.Equal(t, 100, cfg.MaxTokens)
		assert.Equal(t, 5, cfg.TopK)
		assert.Equal(t, watsonx.DecodingGreedy, cfg.DecodingMethod)
	})
}

func TestGenerationConfig_Validate(t *testing.T) {
	t.Parallel()

	hot := 2.5
	tests := []struct {
		name string
		cfg  watsonx.GenerationConfig
	}{
		{"max tokens above limit", watsonx.GenerationConfig{MaxTokens: watsonx.MaxTokensLimit + 1}},
		{"negative max tokens", watsonx.GenerationConfig{MaxTokens: -1}},
		{"negative min tokens", watsonx.GenerationConfig{MinTokens: -1}},
		{"min above max", watsonx.GenerationConfig{MinTokens: 10, MaxTokens: 5}},
		{"negative top k", watsonx.GenerationConfig{TopK: -1}},
		{"top p above one", watsonx.GenerationConfig{TopP: 1.5}},
		{"temperature out of range", watsonx.GenerationConfig{Temperature: &hot}},
		{"unknown decoding method", watsonx.GenerationConfig{DecodingMethod: "beam"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			assert.True(t, errors.Is(err, watsonx.ErrValidation), "got %v", err)
		})
	}

	t.Run("zero config is valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, watsonx.GenerationConfig{}.Validate())
	})
}

func TestModelInfo(t *testing.T) {
	t.Parallel()

	m := watsonx.ModelInfo{
		ID:        watsonx.ModelGranite4HSmall,
		Functions: []string{"text_generation", "text_chat"},
		Lifecycle: []string{"available"},
	}
	assert.True(t, m.Available())
	assert.True(t, m.Supports("text_generation"))
	assert.False(t, m.Supports("embedding"))

	m.Lifecycle = append(m.Lifecycle, "withdrawn")
	assert.False(t, m.Available())
}
