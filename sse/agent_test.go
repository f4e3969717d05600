package sse_test

import (
	"testing"

	"github.com/fwojciec/watsonx/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentDecoder(t *testing.T) {
	t.Parallel()

	t.Run("deltas then created", func(t *testing.T) {
		t.Parallel()
		payload := `{"event":"run.started","data":{"thread_id":"th-1"}}` + "\n" +
			`{"event":"message.delta","data":{"delta":{"content":[{"text":"Hel"}]},"thread_id":"th-1"}}` + "\n" +
			`{"event":"message.delta","data":{"delta":{"content":[{"text":"lo"}]}}}` + "\n" +
			`{"event":"message.created","data":{"message":{"content":[{"text":"Hello"}]},"thread_id":"th-1"}}` + "\n"
		dec := sse.NewAgentDecoder("agent-1")
		frags, out := feedChunks(dec, []byte(payload))

		assert.Equal(t, []string{"Hel", "lo"}, texts(frags))
		assert.Equal(t, "Hello", out.Text)
		assert.Equal(t, "agent-1", out.Ref)
		assert.Equal(t, "th-1", out.ThreadID)
		assert.True(t, out.Terminal)
	})

	t.Run("fallback path yields the same fragment as the primary path", func(t *testing.T) {
		t.Parallel()
		primary := sse.NewAgentDecoder("a")
		fallback := sse.NewAgentDecoder("a")

		pf, ok := primary.FeedLine(`{"event":"message.delta","data":{"delta":{"content":[{"text":"same"}]}}}`)
		require.True(t, ok)
		ff, ok := fallback.FeedLine(`{"event":"message.delta","data":{"content":[{"text":"same"}]}}`)
		require.True(t, ok)

		assert.Equal(t, pf, ff)
	})

	t.Run("delta without text ignores sibling content", func(t *testing.T) {
		t.Parallel()
		dec := sse.NewAgentDecoder("a")

		frag, ok := dec.FeedLine(`{"event":"message.delta","data":{"delta":{"content":[{"type":"tool_call"}]},"content":[{"text":"stale"}]}}`)

		assert.False(t, ok)
		assert.Empty(t, frag.Text)
		assert.Empty(t, dec.Finalize().Text)
	})

	t.Run("first thread id wins", func(t *testing.T) {
		t.Parallel()
		// Known limitation: a thread rotated mid-stream is not followed.
		payload := `{"event":"message.delta","data":{"delta":{"content":[{"text":"a"}]},"thread_id":"first"}}` + "\n" +
			`{"event":"message.delta","data":{"delta":{"content":[{"text":"b"}]},"thread_id":"second"}}` + "\n"
		dec := sse.NewAgentDecoder("a")
		_, out := feedChunks(dec, []byte(payload))

		assert.Equal(t, "first", out.ThreadID)
		assert.Equal(t, "first", dec.ThreadID())
	})

	t.Run("created without deltas emits the full message", func(t *testing.T) {
		t.Parallel()
		payload := `{"event":"message.created","data":{"message":{"content":[{"text":"Full "},{"type":"image"},{"text":"answer"}]},"thread_id":"t"}}` + "\n"
		frags, out := feedChunks(sse.NewAgentDecoder("a"), []byte(payload))

		require.Len(t, frags, 1)
		assert.Equal(t, "Full answer", frags[0].Text)
		assert.True(t, frags[0].Final)
		assert.Equal(t, "Full answer", out.Text)
		assert.Equal(t, "t", out.ThreadID)
	})

	t.Run("malformed lines and unknown kinds are skipped", func(t *testing.T) {
		t.Parallel()
		payload := "not json\n" +
			`{"data":{"content":[{"text":"no kind"}]}}` + "\n" +
			`{"event":42,"data":{}}` + "\n" +
			`{"event":"run.step","data":{"content":[{"text":"ignored"}]}}` + "\n" +
			`{"event":"message.delta","data":{"delta":{}}}` + "\n" +
			"\n" +
			`{"event":"message.delta","data":{"delta":{"content":[{"text":"kept"}]}}}`
		frags, out := feedChunks(sse.NewAgentDecoder("a"), []byte(payload))

		assert.Equal(t, []string{"kept"}, texts(frags))
		assert.Equal(t, "kept", out.Text)
		assert.Empty(t, out.ThreadID)
		assert.False(t, out.Terminal)
	})

	t.Run("sse framed events", func(t *testing.T) {
		t.Parallel()
		payload := "event: message.delta\n" +
			`data: {"event":"message.delta","data":{"delta":{"content":[{"text":"x"}]}}}` + "\n\n"
		frags, _ := feedChunks(sse.NewAgentDecoder("a"), []byte(payload))
		assert.Equal(t, []string{"x"}, texts(frags))
	})

	t.Run("byte by byte feeding", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`{"event":"message.delta","data":{"delta":{"content":[{"text":"héllo"}]},"thread_id":"t"}}` + "\n")
		chunks := make([][]byte, len(payload))
		for i := range payload {
			chunks[i] = payload[i : i+1]
		}
		_, out := feedChunks(sse.NewAgentDecoder("a"), chunks...)
		assert.Equal(t, "héllo", out.Text)
		assert.Equal(t, "t", out.ThreadID)
	})
}
