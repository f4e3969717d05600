// Package mock provides test doubles for watsonx interfaces using function
// fields.
package mock

import (
	"context"

	"github.com/fwojciec/watsonx"
)

// Interface compliance checks.
var (
	_ watsonx.Generator    = (*Generator)(nil)
	_ watsonx.Orchestrator = (*Orchestrator)(nil)
	_ watsonx.TokenSource  = (*TokenSource)(nil)
)

// Generator is a test double for watsonx.Generator.
// Set the function fields for the methods you need.
type Generator struct {
	GenerateFn       func(ctx context.Context, prompt string, cfg watsonx.GenerationConfig) (watsonx.GenerationResult, error)
	GenerateStreamFn func(ctx context.Context, prompt string, cfg watsonx.GenerationConfig, h watsonx.FragmentHandler) (watsonx.GenerationResult, error)
}

// Generate delegates to GenerateFn.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg watsonx.GenerationConfig) (watsonx.GenerationResult, error) {
	return g.GenerateFn(ctx, prompt, cfg)
}

// GenerateStream delegates to GenerateStreamFn.
func (g *Generator) GenerateStream(ctx context.Context, prompt string, cfg watsonx.GenerationConfig, h watsonx.FragmentHandler) (watsonx.GenerationResult, error) {
	return g.GenerateStreamFn(ctx, prompt, cfg, h)
}

// Orchestrator is a test double for watsonx.Orchestrator.
// Set the function fields for the methods you need.
type Orchestrator struct {
	ListAgentsFn    func(ctx context.Context) ([]watsonx.Agent, error)
	SendMessageFn   func(ctx context.Context, agentID, message, threadID string) (watsonx.StreamOutcome, error)
	StreamMessageFn func(ctx context.Context, agentID, message, threadID string, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error)
}

// ListAgents delegates to ListAgentsFn.
func (o *Orchestrator) ListAgents(ctx context.Context) ([]watsonx.Agent, error) {
	return o.ListAgentsFn(ctx)
}

// SendMessage delegates to SendMessageFn.
func (o *Orchestrator) SendMessage(ctx context.Context, agentID, message, threadID string) (watsonx.StreamOutcome, error) {
	return o.SendMessageFn(ctx, agentID, message, threadID)
}

// StreamMessage delegates to StreamMessageFn.
func (o *Orchestrator) StreamMessage(ctx context.Context, agentID, message, threadID string, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
	return o.StreamMessageFn(ctx, agentID, message, threadID, h)
}

// TokenSource is a test double for watsonx.TokenSource.
// Set TokenFn before calling Token.
type TokenSource struct {
	TokenFn func(ctx context.Context) (string, error)
}

// Token delegates to TokenFn.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	return s.TokenFn(ctx)
}
