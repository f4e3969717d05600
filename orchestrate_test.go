package watsonx_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/watsonx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgent_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("id field", func(t *testing.T) {
		t.Parallel()
		var a watsonx.Agent
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a1","name":"Helper"}`), &a))
		assert.Equal(t, watsonx.Agent{ID: "a1", Name: "Helper"}, a)
	})

	t.Run("agent_id and display_name fallbacks", func(t *testing.T) {
		t.Parallel()
		var a watsonx.Agent
		require.NoError(t, json.Unmarshal([]byte(`{"agent_id":"a2","display_name":"Other"}`), &a))
		assert.Equal(t, "a2", a.ID)
		assert.Equal(t, "Other", a.Name)
	})
}

func TestThread_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var th watsonx.Thread
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","agent_id":"a1","title":"Hi"}`), &th))
	assert.Equal(t, "t1", th.ID)
	assert.Equal(t, "a1", th.AgentID)
	assert.Equal(t, "Hi", th.Title)

	require.NoError(t, json.Unmarshal([]byte(`{"thread_id":"t2"}`), &th))
	assert.Equal(t, "t2", th.ID)
}

func TestThreadMessage_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("string content", func(t *testing.T) {
		t.Parallel()
		var m watsonx.ThreadMessage
		require.NoError(t, json.Unmarshal([]byte(`{"role":"user","content":"hello"}`), &m))
		assert.Equal(t, "hello", m.Content)
	})

	t.Run("content parts", func(t *testing.T) {
		t.Parallel()
		var m watsonx.ThreadMessage
		require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":[{"text":"Hel"},{"response_type":"text","text":"lo"}]}`), &m))
		assert.Equal(t, "assistant", m.Role)
		assert.Equal(t, "Hello", m.Content)
	})

	t.Run("missing content", func(t *testing.T) {
		t.Parallel()
		var m watsonx.ThreadMessage
		require.NoError(t, json.Unmarshal([]byte(`{"role":"user"}`), &m))
		assert.Empty(t, m.Content)
	})

	t.Run("unsupported content shape", func(t *testing.T) {
		t.Parallel()
		var m watsonx.ThreadMessage
		assert.Error(t, json.Unmarshal([]byte(`{"role":"user","content":42}`), &m))
	})
}

func TestRun_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var r watsonx.Run
	require.NoError(t, json.Unmarshal([]byte(`{"run_id":"r1","status":"completed"}`), &r))
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "completed", r.Status)
}
