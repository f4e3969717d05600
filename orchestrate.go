package watsonx

import (
	"context"
	"encoding/json"
	"strings"
)

// Orchestrator talks to conversational agents.
type Orchestrator interface {
	ListAgents(ctx context.Context) ([]Agent, error)
	// SendMessage posts message to agentID and returns the complete reply.
	// threadID continues an existing conversation; empty starts a new one.
	SendMessage(ctx context.Context, agentID, message, threadID string) (StreamOutcome, error)
	// StreamMessage is SendMessage with incremental delivery to h.
	StreamMessage(ctx context.Context, agentID, message, threadID string, h FragmentHandler) (StreamOutcome, error)
}

// Agent is a deployed conversational agent.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts both "id" and "agent_id" as the identifier.
func (a *Agent) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string `json:"id"`
		AgentID     string `json:"agent_id"`
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Agent{ID: firstNonEmpty(raw.ID, raw.AgentID), Name: firstNonEmpty(raw.Name, raw.DisplayName), Description: raw.Description}
	return nil
}

// Thread is a conversation with an agent.
type Thread struct {
	ID           string `json:"thread_id"`
	AgentID      string `json:"agent_id,omitempty"`
	Title        string `json:"title,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	MessageCount int    `json:"message_count,omitempty"`
}

// UnmarshalJSON accepts both "thread_id" and "id" as the identifier.
func (t *Thread) UnmarshalJSON(data []byte) error {
	type alias Thread
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Thread(raw.alias)
	t.ID = firstNonEmpty(t.ID, raw.AltID)
	return nil
}

// ThreadMessage is one message stored in a thread.
type ThreadMessage struct {
	ID        string `json:"id,omitempty"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at,omitempty"`
}

// UnmarshalJSON accepts content either as a plain string or as an array of
// parts carrying "text".
func (m *ThreadMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Role      string          `json:"role"`
		Content   json.RawMessage `json:"content"`
		CreatedAt string          `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ThreadMessage{ID: raw.ID, Role: raw.Role, CreatedAt: raw.CreatedAt}
	if len(raw.Content) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Content, &s); err == nil {
		m.Content = s
		return nil
	}
	var parts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw.Content, &parts); err != nil {
		return err
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	m.Content = b.String()
	return nil
}

// Run is one execution of an agent.
type Run struct {
	ID          string `json:"id"`
	AgentID     string `json:"agent_id,omitempty"`
	ThreadID    string `json:"thread_id,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// UnmarshalJSON accepts both "id" and "run_id" as the identifier.
func (r *Run) UnmarshalJSON(data []byte) error {
	type alias Run
	var raw struct {
		alias
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Run(raw.alias)
	r.ID = firstNonEmpty(r.ID, raw.RunID)
	return nil
}

// Tool is a capability an agent may invoke.
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"tool_type,omitempty"`
	Enabled     bool   `json:"enabled,omitempty"`
}

// ToolExecution asks the service to run a tool with parameters.
type ToolExecution struct {
	ToolID     string         `json:"tool_id"`
	Parameters map[string]any `json:"parameters"`
}

// ToolExecutionResult is the outcome of a ToolExecution.
type ToolExecutionResult struct {
	Success bool            `json:"success"`
	Output  json.RawMessage `json:"output,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ToolExecutionRecord is one entry of a tool's execution history.
type ToolExecutionRecord struct {
	ID         string `json:"execution_id"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// ToolVersion is one published revision of a tool.
type ToolVersion struct {
	Version     string `json:"version"`
	CreatedAt   string `json:"created_at,omitempty"`
	Description string `json:"description,omitempty"`
}

// Skill is a reusable agent capability.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled,omitempty"`
}

// Collection is a searchable set of documents.
type Collection struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status,omitempty"`
	DocumentCount int    `json:"document_count,omitempty"`
}

// SearchRequest queries a Collection.
type SearchRequest struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// SearchResult is one document hit from a SearchRequest.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Snippet    string  `json:"content_snippet"`
	Score      float64 `json:"similarity_score"`
}

// ChatWithDocsRequest sends a message together with document content that
// the agent should ground its answer in.
type ChatWithDocsRequest struct {
	Message         string `json:"message"`
	DocumentContent string `json:"document_content,omitempty"`
	DocumentPath    string `json:"document_path,omitempty"`
}

// BatchMessage is one message in a SendBatchMessages call.
type BatchMessage struct {
	AgentID  string `json:"agent_id"`
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

// BatchMessageResult is the service's answer to one BatchMessage.
type BatchMessageResult struct {
	MessageID string `json:"message_id,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
