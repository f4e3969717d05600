package sse

import (
	"strings"

	"github.com/fwojciec/watsonx"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Agent event kinds that carry text.
const (
	EventMessageCreated = "message.created"
	EventMessageDelta   = "message.delta"
)

// Interface compliance check.
var _ LineDecoder = (*AgentDecoder)(nil)

// AgentDecoder decodes the agent dialect: one JSON object per line with an
// "event" kind and a "data" payload. Unknown kinds are ignored.
//
// The first thread id seen is kept for the rest of the session, even if a
// later event carries a different one.
type AgentDecoder struct {
	agentID  string
	threadID string
	text     strings.Builder
	created  bool
	log      zerolog.Logger
}

// NewAgentDecoder returns a decoder for a reply from agentID.
func NewAgentDecoder(agentID string, opts ...Option) *AgentDecoder {
	o := newOptions(opts)
	return &AgentDecoder{agentID: agentID, log: o.logger}
}

// ThreadID returns the recorded thread id, empty if none was seen yet.
func (d *AgentDecoder) ThreadID() string { return d.threadID }

// FeedLine decodes one line. A "data:" prefix is tolerated so the decoder
// also works over SSE framing.
func (d *AgentDecoder) FeedLine(line string) (watsonx.Fragment, bool) {
	line = strings.TrimSpace(line)
	if body, ok := strings.CutPrefix(line, "data:"); ok {
		line = strings.TrimSpace(body)
	}
	if line == "" {
		return watsonx.Fragment{}, false
	}
	if !gjson.Valid(line) {
		d.log.Debug().Str("line", line).Msg("skipping malformed agent event")
		return watsonx.Fragment{}, false
	}
	kind := gjson.Get(line, "event")
	if kind.Type != gjson.String {
		d.log.Debug().Str("line", line).Msg("skipping agent event without kind")
		return watsonx.Fragment{}, false
	}
	data := gjson.Get(line, "data")
	if tid := data.Get("thread_id"); d.threadID == "" && tid.Type == gjson.String && tid.Str != "" {
		d.threadID = tid.Str
	}

	switch kind.Str {
	case EventMessageDelta:
		return d.delta(data)
	case EventMessageCreated:
		return d.messageCreated(data)
	default:
		return watsonx.Fragment{}, false
	}
}

func (d *AgentDecoder) delta(data gjson.Result) (watsonx.Fragment, bool) {
	text := data.Get("delta.content.0.text")
	if !data.Get("delta").IsObject() {
		text = data.Get("content.0.text")
	}
	if text.Type != gjson.String {
		return watsonx.Fragment{}, false
	}
	d.text.WriteString(text.Str)
	return watsonx.Fragment{Text: text.Str}, true
}

// messageCreated carries the complete reply and marks the session terminal.
// It only produces a fragment when no text preceded it, which is how
// non-incremental deployments answer.
func (d *AgentDecoder) messageCreated(data gjson.Result) (watsonx.Fragment, bool) {
	first := !d.created
	d.created = true
	if !first || d.text.Len() > 0 {
		return watsonx.Fragment{}, false
	}
	parts := data.Get("message.content.#.text")
	if !parts.IsArray() {
		return watsonx.Fragment{}, false
	}
	var b strings.Builder
	found := false
	for _, p := range parts.Array() {
		if p.Type == gjson.String {
			b.WriteString(p.Str)
			found = true
		}
	}
	if !found {
		return watsonx.Fragment{}, false
	}
	d.text.WriteString(b.String())
	return watsonx.Fragment{Text: b.String(), Final: true}, true
}

// Finalize returns the accumulated text and the recorded thread id.
func (d *AgentDecoder) Finalize() watsonx.StreamOutcome {
	return watsonx.StreamOutcome{
		Text:     d.text.String(),
		Ref:      d.agentID,
		ThreadID: d.threadID,
		Terminal: d.created,
	}
}
