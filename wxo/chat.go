package wxo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/sse"
	"github.com/tidwall/gjson"
)

const runsStreamPath = "/runs/stream"

// SendMessage posts message to agentID and returns the complete reply.
func (c *Client) SendMessage(ctx context.Context, agentID, message, threadID string) (watsonx.StreamOutcome, error) {
	return c.run(ctx, agentID, message, threadID, "application/json", watsonx.DiscardFragments)
}

// StreamMessage posts message to agentID and delivers the reply to h as it
// arrives. The outcome's ThreadID is the thread the service assigned, or
// threadID when the stream named none.
func (c *Client) StreamMessage(ctx context.Context, agentID, message, threadID string, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
	return c.run(ctx, agentID, message, threadID, "text/event-stream", h)
}

func (c *Client) run(ctx context.Context, agentID, message, threadID, accept string, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
	payload := messagePayload{
		Message:              chatMessage{Role: string(watsonx.RoleUser), Content: message},
		AdditionalProperties: map[string]any{},
		Context:              map[string]any{},
		AgentID:              agentID,
		ThreadID:             threadID,
	}
	resp, err := c.send(ctx, http.MethodPost, runsStreamPath, payload, accept)
	if err != nil {
		return watsonx.StreamOutcome{}, err
	}
	defer resp.Body.Close()
	if !success(resp.StatusCode) {
		return watsonx.StreamOutcome{}, apiError(resp)
	}
	return c.decode(ctx, resp.Body, agentID, threadID, h)
}

func (c *Client) decode(ctx context.Context, r io.Reader, agentID, threadID string, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
	dec := sse.NewAgentDecoder(agentID, sse.WithLogger(c.log))
	outcome, err := sse.Decode(ctx, r, dec, h)
	if outcome.ThreadID == "" {
		outcome.ThreadID = threadID
	}
	if err != nil {
		return outcome, fmt.Errorf("wxo: %w", err)
	}
	return outcome, nil
}

// ChatWithDocs sends req to agentID on threadID with document context. It
// accepts either a single JSON answer or an event stream.
func (c *Client) ChatWithDocs(ctx context.Context, agentID, threadID string, req watsonx.ChatWithDocsRequest, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
	a, t := url.PathEscape(agentID), url.PathEscape(threadID)
	paths := []string{
		"/orchestrate/agents/" + a + "/threads/" + t + "/chat_with_docs",
		"/agents/" + a + "/threads/" + t + "/chat_with_docs",
		"/orchestrate/agents/" + a + "/threads/" + t + "/runs/stream",
		"/agents/" + a + "/threads/" + t + "/runs/stream",
	}
	docs := docsPayload{
		Message:         req.Message,
		DocumentContent: req.DocumentContent,
		DocumentPath:    req.DocumentPath,
		Context:         map[string]any{},
	}
	stream := docsStreamPayload{
		Message:         chatMessage{Role: string(watsonx.RoleUser), Content: req.Message},
		AgentID:         agentID,
		ThreadID:        threadID,
		DocumentContent: req.DocumentContent,
		DocumentPath:    req.DocumentPath,
		Context:         map[string]any{},
	}

	return firstAvailable(paths, func(path string) (watsonx.StreamOutcome, error) {
		var body any = docs
		if !strings.HasSuffix(path, "/chat_with_docs") {
			body = stream
		}
		resp, err := c.send(ctx, http.MethodPost, path, body, "text/event-stream")
		if err != nil {
			return watsonx.StreamOutcome{}, err
		}
		defer resp.Body.Close()
		if !success(resp.StatusCode) {
			return watsonx.StreamOutcome{}, apiError(resp)
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return watsonx.StreamOutcome{}, fmt.Errorf("wxo: read %s: %w", path, err)
		}
		if outcome, ok := docsAnswer(raw, agentID, threadID); ok {
			if err := h.HandleFragment(ctx, watsonx.Fragment{Text: outcome.Text, Final: true}); err != nil {
				return outcome, fmt.Errorf("wxo: %w", err)
			}
			return outcome, nil
		}
		return c.decode(ctx, bytes.NewReader(raw), agentID, threadID, h)
	})
}

// docsAnswer recognizes the single-object answer of the chat_with_docs
// route.
func docsAnswer(raw []byte, agentID, threadID string) (watsonx.StreamOutcome, bool) {
	trimmed := bytes.TrimSpace(raw)
	if !gjson.ValidBytes(trimmed) {
		return watsonx.StreamOutcome{}, false
	}
	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		return watsonx.StreamOutcome{}, false
	}
	text := doc.Get("response")
	if text.Type != gjson.String {
		return watsonx.StreamOutcome{}, false
	}
	tid := doc.Get("thread_id").String()
	if tid == "" {
		tid = threadID
	}
	return watsonx.StreamOutcome{Text: text.Str, Ref: agentID, ThreadID: tid, Terminal: true}, true
}
