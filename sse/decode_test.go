package sse_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(frags *[]string) watsonx.FragmentHandler {
	return watsonx.FragmentHandlerFunc(func(_ context.Context, f watsonx.Fragment) error {
		*frags = append(*frags, f.Text)
		return nil
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("one byte reads", func(t *testing.T) {
		t.Parallel()
		var got []string
		r := iotest.OneByteReader(strings.NewReader(helloWorldStream))
		out, err := sse.Decode(context.Background(), r, sse.NewGenerationDecoder("m"), collect(&got))

		require.NoError(t, err)
		assert.Equal(t, []string{"Hello", " world"}, got)
		assert.Equal(t, "Hello world", out.Text)
		assert.True(t, out.Terminal)
	})

	t.Run("unterminated final line is decoded", func(t *testing.T) {
		t.Parallel()
		var got []string
		r := strings.NewReader(`{"event":"message.delta","data":{"content":[{"text":"tail"}]}}`)
		out, err := sse.Decode(context.Background(), r, sse.NewAgentDecoder("a"), collect(&got))

		require.NoError(t, err)
		assert.Equal(t, []string{"tail"}, got)
		assert.Equal(t, "tail", out.Text)
	})

	t.Run("handler error aborts with partial outcome", func(t *testing.T) {
		t.Parallel()
		stop := errors.New("sink full")
		calls := 0
		h := watsonx.FragmentHandlerFunc(func(context.Context, watsonx.Fragment) error {
			calls++
			return stop
		})
		out, err := sse.Decode(context.Background(), strings.NewReader(helloWorldStream), sse.NewGenerationDecoder(""), h)

		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "Hello", out.Text)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		out, err := sse.Decode(ctx, strings.NewReader(helloWorldStream), sse.NewGenerationDecoder(""), watsonx.DiscardFragments)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, out.Text)
	})

	t.Run("read error keeps accumulated text", func(t *testing.T) {
		t.Parallel()
		broken := errors.New("connection reset")
		r := io.MultiReader(
			strings.NewReader("data: {\"results\":[{\"generated_text\":\"partial\"}]}\n\n"),
			iotest.ErrReader(broken),
		)
		out, err := sse.Decode(context.Background(), r, sse.NewGenerationDecoder(""), watsonx.DiscardFragments)

		assert.ErrorIs(t, err, broken)
		assert.Equal(t, "partial", out.Text)
		assert.False(t, out.Terminal)
	})

	t.Run("unexpected EOF ends the stream with accumulated text", func(t *testing.T) {
		t.Parallel()
		var got []string
		r := io.MultiReader(
			strings.NewReader("data: {\"results\":[{\"generated_text\":\"Hello\"}]}\n\n"),
			iotest.ErrReader(io.ErrUnexpectedEOF),
		)
		out, err := sse.Decode(context.Background(), r, sse.NewGenerationDecoder(""), collect(&got))

		require.NoError(t, err)
		assert.Equal(t, []string{"Hello"}, got)
		assert.Equal(t, "Hello", out.Text)
		assert.False(t, out.Terminal)
	})

	t.Run("data after a final read is processed", func(t *testing.T) {
		t.Parallel()
		var got []string
		r := iotest.DataErrReader(strings.NewReader("data: {\"results\":[{\"generated_text\":\"x\"}]}\n"))
		_, err := sse.Decode(context.Background(), r, sse.NewGenerationDecoder(""), collect(&got))

		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, got)
	})
}
