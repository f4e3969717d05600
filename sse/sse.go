// Package sse decodes the two streaming dialects spoken by watsonx services:
// the generation dialect ("data: {json}" lines closed by "data: [DONE]") and
// the agent dialect (one {"event": ..., "data": ...} object per line).
//
// Decoders are single-session state machines. Each streaming call creates its
// own Assembler and decoder; neither is safe for concurrent use.
package sse

import (
	"github.com/fwojciec/watsonx"
	"github.com/rs/zerolog"
)

// LineDecoder turns assembled lines into fragments.
type LineDecoder interface {
	// FeedLine decodes one line and reports whether it produced a fragment.
	// Malformed lines are skipped, never reported as errors.
	FeedLine(line string) (watsonx.Fragment, bool)
	// Finalize returns the outcome built from everything fed so far.
	Finalize() watsonx.StreamOutcome
}

// Option configures a decoder.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger sets the logger used to report skipped lines at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
