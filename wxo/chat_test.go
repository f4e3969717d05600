package wxo_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/fwojciec/watsonx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agentStream = `event: message.delta
data: {"event":"message.delta","data":{"thread_id":"th-9","delta":{"content":[{"text":"Hel"}]}}}

event: message.delta
data: {"event":"message.delta","data":{"thread_id":"th-9","delta":{"content":[{"text":"lo"}]}}}

event: message.created
data: {"event":"message.created","data":{"thread_id":"th-9","message":{"content":[{"text":"Hello"}]}}}

`

func collectText(dst *[]string) watsonx.FragmentHandler {
	return watsonx.FragmentHandlerFunc(func(_ context.Context, f watsonx.Fragment) error {
		*dst = append(*dst, f.Text)
		return nil
	})
}

func TestClient_StreamMessage(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs/stream", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, agentStream)
	})
	c := newServer(t, mux)

	var got []string
	outcome, err := c.StreamMessage(context.Background(), "agent-1", "hi", "", collectText(&got))
	require.NoError(t, err)

	assert.Equal(t, []string{"Hel", "lo"}, got)
	assert.Equal(t, "Hello", outcome.Text)
	assert.Equal(t, "th-9", outcome.ThreadID)
	assert.Equal(t, "agent-1", outcome.Ref)
	assert.True(t, outcome.Terminal)

	assert.Equal(t, "agent-1", payload["agent_id"])
	assert.NotContains(t, payload, "thread_id")
	assert.Equal(t, map[string]any{"role": "user", "content": "hi"}, payload["message"])
}

func TestClient_StreamMessageKeepsCallerThread(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs/stream", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = io.WriteString(w, `{"event":"message.delta","data":{"delta":{"content":[{"text":"ok"}]}}}`+"\n")
	})
	c := newServer(t, mux)

	outcome, err := c.StreamMessage(context.Background(), "agent-1", "again", "th-1", watsonx.DiscardFragments)
	require.NoError(t, err)
	assert.Equal(t, "ok", outcome.Text)
	assert.Equal(t, "th-1", outcome.ThreadID)
	assert.Equal(t, "th-1", payload["thread_id"])
}

func TestClient_SendMessageNonIncremental(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs/stream", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = io.WriteString(w, `{"event":"run.started","data":{"thread_id":"th-2"}}
{"event":"message.created","data":{"thread_id":"th-2","message":{"content":[{"text":"Full "},{"text":"answer"}]}}}
`)
	})
	c := newServer(t, mux)

	outcome, err := c.SendMessage(context.Background(), "agent-1", "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "Full answer", outcome.Text)
	assert.Equal(t, "th-2", outcome.ThreadID)
	assert.True(t, outcome.Terminal)
}

func TestClient_SendMessageHTTPError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs/stream", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent not found", http.StatusNotFound)
	})
	c := newServer(t, mux)

	_, err := c.SendMessage(context.Background(), "missing", "hi", "")
	require.Error(t, err)
	assert.True(t, watsonx.IsNotFound(err))
}

func TestClient_StreamMessageHandlerError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs/stream", reply(agentStream))
	c := newServer(t, mux)

	stop := errors.New("stop")
	_, err := c.StreamMessage(context.Background(), "agent-1", "hi", "",
		watsonx.FragmentHandlerFunc(func(context.Context, watsonx.Fragment) error { return stop }))
	require.ErrorIs(t, err, stop)
}

func TestClient_ChatWithDocsJSONAnswer(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orchestrate/agents/a1/threads/t1/chat_with_docs", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = io.WriteString(w, `{"response":"The doc says hi.","thread_id":"t1"}`)
	})
	c := newServer(t, mux)

	var got []string
	outcome, err := c.ChatWithDocs(context.Background(), "a1", "t1", watsonx.ChatWithDocsRequest{
		Message:         "Summarize",
		DocumentContent: "hi",
	}, collectText(&got))
	require.NoError(t, err)

	assert.Equal(t, "The doc says hi.", outcome.Text)
	assert.Equal(t, "t1", outcome.ThreadID)
	assert.Equal(t, []string{"The doc says hi."}, got)
	assert.Equal(t, "Summarize", payload["message"])
	assert.Equal(t, "hi", payload["document_content"])
}

func TestClient_ChatWithDocsFallsBackToRunStream(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /agents/a1/threads/t1/runs/stream", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = io.WriteString(w, agentStream)
	})
	c := newServer(t, mux)

	var got []string
	outcome, err := c.ChatWithDocs(context.Background(), "a1", "t1", watsonx.ChatWithDocsRequest{
		Message:      "Summarize",
		DocumentPath: "docs/readme.md",
	}, collectText(&got))
	require.NoError(t, err)

	assert.Equal(t, "Hello", outcome.Text)
	assert.Equal(t, []string{"Hel", "lo"}, got)
	assert.Equal(t, "t1", payload["thread_id"])
	assert.Equal(t, "docs/readme.md", payload["document_path"])
	assert.Equal(t, map[string]any{"role": "user", "content": "Summarize"}, payload["message"])
}

func TestClient_ChatWithDocsUnavailable(t *testing.T) {
	t.Parallel()

	c := newServer(t, http.NewServeMux())

	_, err := c.ChatWithDocs(context.Background(), "a1", "t1", watsonx.ChatWithDocsRequest{Message: "x"}, watsonx.DiscardFragments)
	require.ErrorIs(t, err, watsonx.ErrEndpointUnavailable)
}
