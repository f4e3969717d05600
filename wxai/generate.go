package wxai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/batch"
	"github.com/fwojciec/watsonx/sse"
)

// GenerateStream sends prompt to the streaming endpoint and delivers each
// text fragment to h as it arrives. The result carries the accumulated text
// and the model that served it. A stream that ends without "[DONE]" still
// yields whatever text arrived.
func (c *Client) GenerateStream(ctx context.Context, prompt string, cfg watsonx.GenerationConfig, h watsonx.FragmentHandler) (watsonx.GenerationResult, error) {
	outcome, requestID, err := c.stream(ctx, prompt, cfg, h)
	if err != nil {
		if outcome.Text == "" {
			return watsonx.GenerationResult{}, err
		}
		return c.result(outcome.Text, outcome.Ref, requestID, 0), err
	}
	return c.result(outcome.Text, outcome.Ref, requestID, 0), nil
}

func (c *Client) stream(ctx context.Context, prompt string, cfg watsonx.GenerationConfig, h watsonx.FragmentHandler) (watsonx.StreamOutcome, string, error) {
	body, err := c.buildRequest(prompt, cfg)
	if err != nil {
		return watsonx.StreamOutcome{}, "", err
	}
	requestID := newRequestID()
	log := c.log.With().Str("request_id", requestID).Str("model", body.ModelID).Logger()
	log.Debug().Int("prompt_len", len(prompt)).Msg("generation stream started")

	resp, err := c.do(ctx, http.MethodPost, generationStreamPath, body, "text/event-stream", requestID)
	if err != nil {
		return watsonx.StreamOutcome{}, requestID, err
	}
	defer resp.Body.Close()

	dec := sse.NewGenerationDecoder(body.ModelID, sse.WithLogger(log))
	outcome, err := sse.Decode(ctx, resp.Body, dec, h)
	if err != nil {
		return outcome, requestID, fmt.Errorf("wxai: %w", err)
	}
	if !outcome.Terminal {
		log.Debug().Msg("stream ended without [DONE]")
	}
	log.Debug().Int("text_len", len(outcome.Text)).Msg("generation stream finished")
	return outcome, requestID, nil
}

// Generate runs a streaming generation, discarding fragments, and returns
// the full text. The configured timeout bounds the whole call.
func (c *Client) Generate(ctx context.Context, prompt string, cfg watsonx.GenerationConfig) (watsonx.GenerationResult, error) {
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	return c.GenerateStream(ctx, prompt, cfg, watsonx.DiscardFragments)
}

// GenerateText calls the non-streaming endpoint.
func (c *Client) GenerateText(ctx context.Context, prompt string, cfg watsonx.GenerationConfig) (watsonx.GenerationResult, error) {
	body, err := c.buildRequest(prompt, cfg)
	if err != nil {
		return watsonx.GenerationResult{}, err
	}
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	requestID := newRequestID()
	resp, err := c.do(ctx, http.MethodPost, generationPath, body, "application/json", requestID)
	if err != nil {
		return watsonx.GenerationResult{}, err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return watsonx.GenerationResult{}, fmt.Errorf("wxai: decode response: %w", err)
	}
	if len(out.Results) == 0 {
		return watsonx.GenerationResult{}, fmt.Errorf("wxai: no results: %w", watsonx.ErrShapeMismatch)
	}
	modelID := out.ModelID
	if modelID == "" {
		modelID = body.ModelID
	}
	r := out.Results[0]
	return c.result(r.GeneratedText, modelID, requestID, r.GeneratedTokenCount), nil
}

// GenerateBatch runs Generate for every unit with bounded concurrency. Units
// without their own config use cfg.
func (c *Client) GenerateBatch(ctx context.Context, units []watsonx.BatchUnit, cfg watsonx.GenerationConfig, opts ...batch.Option) watsonx.BatchReport {
	opts = append([]batch.Option{batch.WithLogger(c.log)}, opts...)
	return batch.Run(ctx, units, func(ctx context.Context, u watsonx.BatchUnit) (watsonx.GenerationResult, error) {
		unitCfg := cfg
		if u.Config != nil {
			unitCfg = *u.Config
		}
		return c.Generate(ctx, u.Prompt, unitCfg)
	}, opts...)
}

func (c *Client) result(text, modelID, requestID string, tokens int) watsonx.GenerationResult {
	res := watsonx.GenerationResult{
		Text:       text,
		ModelID:    modelID,
		RequestID:  requestID,
		TokensUsed: tokens,
	}
	if c.scoring {
		score := watsonx.AssessQuality(text)
		res.QualityScore = &score
	}
	return res
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
