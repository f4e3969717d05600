package watsonx

import "context"

// Fragment is a unit of newly available generated text. Decoders hand each
// fragment to a FragmentHandler as soon as it is decoded and never buffer it.
type Fragment struct {
	Text  string
	Final bool // set when the fragment carries a complete message
}

// FragmentHandler receives fragments in stream order. HandleFragment runs on
// the goroutine that drives the stream, so the next chunk is not read until
// it returns. A non-nil error aborts the stream.
type FragmentHandler interface {
	HandleFragment(ctx context.Context, f Fragment) error
}

// FragmentHandlerFunc adapts a function to FragmentHandler.
type FragmentHandlerFunc func(ctx context.Context, f Fragment) error

// HandleFragment calls fn.
func (fn FragmentHandlerFunc) HandleFragment(ctx context.Context, f Fragment) error {
	return fn(ctx, f)
}

// DiscardFragments is a FragmentHandler that drops every fragment.
var DiscardFragments FragmentHandler = FragmentHandlerFunc(func(context.Context, Fragment) error {
	return nil
})

// StreamOutcome is the terminal value of a streaming call. It is produced
// even when the stream ends without a terminal marker, in which case Terminal
// is false and Text holds whatever was accumulated.
type StreamOutcome struct {
	Text     string
	Ref      string // model id for generation streams, agent id for agent streams
	ThreadID string // agent streams only; empty when the service never sent one
	Terminal bool   // true when an explicit terminal marker was observed
}
