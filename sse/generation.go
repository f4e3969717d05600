package sse

import (
	"strings"

	"github.com/fwojciec/watsonx"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// doneMarker is the payload that terminates a generation stream.
const doneMarker = "[DONE]"

// Paths tried, in order, to find the text of a generation event. The chat
// paths cover deployments that stream chat-completion envelopes.
var generationTextPaths = []string{
	"results.0.generated_text",
	"choices.0.delta.content",
	"choices.0.message.content",
}

// Interface compliance check.
var _ LineDecoder = (*GenerationDecoder)(nil)

// GenerationDecoder decodes the generation dialect. It moves from open to
// terminal on "[DONE]" or on Finalize and never moves back.
type GenerationDecoder struct {
	modelID  string
	text     strings.Builder
	terminal bool
	sawDone  bool
	log      zerolog.Logger
}

// NewGenerationDecoder returns a decoder for a stream produced by modelID.
// The model reported by the stream itself, if any, takes precedence.
func NewGenerationDecoder(modelID string, opts ...Option) *GenerationDecoder {
	o := newOptions(opts)
	return &GenerationDecoder{modelID: modelID, log: o.logger}
}

// Terminal reports whether the decoder has seen "[DONE]" or been finalized.
func (d *GenerationDecoder) Terminal() bool { return d.terminal }

// FeedLine decodes one line. Only "data:" lines carry payloads; blank lines,
// comments and the id, event and retry fields are ignored.
func (d *GenerationDecoder) FeedLine(line string) (watsonx.Fragment, bool) {
	if d.terminal {
		return watsonx.Fragment{}, false
	}
	body, ok := dataPayload(line)
	if !ok || body == "" {
		return watsonx.Fragment{}, false
	}
	if body == doneMarker {
		d.terminal = true
		d.sawDone = true
		return watsonx.Fragment{}, false
	}
	if !gjson.Valid(body) {
		d.log.Debug().Str("line", body).Msg("skipping malformed generation event")
		return watsonx.Fragment{}, false
	}
	if m := gjson.Get(body, "model_id"); m.Type == gjson.String && m.Str != "" {
		d.modelID = m.Str
	}
	for _, path := range generationTextPaths {
		if res := gjson.Get(body, path); res.Type == gjson.String {
			d.text.WriteString(res.Str)
			return watsonx.Fragment{Text: res.Str}, true
		}
	}
	d.log.Debug().Str("line", body).Msg("generation event carries no text")
	return watsonx.Fragment{}, false
}

// Finalize returns the accumulated outcome and moves the decoder to terminal.
// Terminal on the outcome is true only when "[DONE]" was observed.
func (d *GenerationDecoder) Finalize() watsonx.StreamOutcome {
	d.terminal = true
	return watsonx.StreamOutcome{
		Text:     d.text.String(),
		Ref:      d.modelID,
		Terminal: d.sawDone,
	}
}

// dataPayload extracts the payload of a "data:" line. One space after the
// colon is optional.
func dataPayload(line string) (string, bool) {
	line = strings.TrimSpace(line)
	body, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(body), true
}
