package watsonx

import (
	"context"
	"fmt"
	"time"
)

// Generator produces text from a prompt.
type Generator interface {
	// Generate returns the full text for prompt once generation completes.
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (GenerationResult, error)
	// GenerateStream delivers fragments to h as they arrive and returns the
	// accumulated result when the stream ends.
	GenerateStream(ctx context.Context, prompt string, cfg GenerationConfig, h FragmentHandler) (GenerationResult, error)
}

// Decoding methods accepted by the generation service.
const (
	DecodingGreedy   = "greedy"
	DecodingSampling = "sample"
)

// GenerationConfig carries model selection and sampling parameters.
// Zero values fall back to the service defaults listed in
// DefaultGenerationConfig.
type GenerationConfig struct {
	ModelID           string
	DecodingMethod    string
	MaxTokens         int
	MinTokens         int
	TopK              int
	TopP              float64
	RepetitionPenalty float64
	Temperature       *float64 // nil = service default
	StopSequences     []string
	Timeout           time.Duration // 0 = no client-side deadline
}

// DefaultGenerationConfig returns the configuration used when a caller
// supplies none.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		ModelID:           DefaultModel,
		DecodingMethod:    DecodingGreedy,
		MaxTokens:         DefaultMaxTokens,
		TopK:              50,
		TopP:              1.0,
		RepetitionPenalty: 1.1,
		Timeout:           120 * time.Second,
	}
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c GenerationConfig) WithDefaults() GenerationConfig {
	d := DefaultGenerationConfig()
	if c.ModelID == "" {
		c.ModelID = d.ModelID
	}
	if c.DecodingMethod == "" {
		c.DecodingMethod = d.DecodingMethod
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.TopK == 0 {
		c.TopK = d.TopK
	}
	if c.TopP == 0 {
		c.TopP = d.TopP
	}
	if c.RepetitionPenalty == 0 {
		c.RepetitionPenalty = d.RepetitionPenalty
	}
	return c
}

// Validate checks the ranges the generation service enforces.
func (c GenerationConfig) Validate() error {
	if c.MaxTokens < 0 || c.MaxTokens > MaxTokensLimit {
		return fmt.Errorf("max_tokens must be in [0, %d], got %d: %w", MaxTokensLimit, c.MaxTokens, ErrValidation)
	}
	if c.MinTokens < 0 {
		return fmt.Errorf("min_tokens must be non-negative, got %d: %w", c.MinTokens, ErrValidation)
	}
	if c.MaxTokens > 0 && c.MinTokens > c.MaxTokens {
		return fmt.Errorf("min_tokens %d exceeds max_tokens %d: %w", c.MinTokens, c.MaxTokens, ErrValidation)
	}
	if c.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative, got %d: %w", c.TopK, ErrValidation)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be in [0, 1], got %g: %w", c.TopP, ErrValidation)
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *c.Temperature, ErrValidation)
	}
	switch c.DecodingMethod {
	case "", DecodingGreedy, DecodingSampling:
	default:
		return fmt.Errorf("unknown decoding method %q: %w", c.DecodingMethod, ErrValidation)
	}
	return nil
}

// GenerationResult is the outcome of one generation call.
type GenerationResult struct {
	Text         string
	ModelID      string
	RequestID    string
	TokensUsed   int      // 0 when the service did not report a count
	QualityScore *float64 // nil unless requested
}
