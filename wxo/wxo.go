// Package wxo implements [watsonx.Orchestrator] for the watsonx
// Orchestrate agent API.
//
// Orchestrate deployments differ in which routes they expose and in how
// they encode list responses. Operations that have moved between releases
// try each known route in turn, and every list is decoded through
// [shape.Response] so that bare arrays and wrapped objects both work.
package wxo

const (
	defaultRegion = "us-south"
	baseURLFormat = "https://%s.watson-orchestrate.cloud.ibm.com/api/v1"

	instanceHeader = "X-Instance-ID"
)

type messagePayload struct {
	Message              chatMessage    `json:"message"`
	AdditionalProperties map[string]any `json:"additional_properties"`
	Context              map[string]any `json:"context"`
	AgentID              string         `json:"agent_id"`
	ThreadID             string         `json:"thread_id,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type docsPayload struct {
	Message         string         `json:"message"`
	DocumentContent string         `json:"document_content,omitempty"`
	DocumentPath    string         `json:"document_path,omitempty"`
	Context         map[string]any `json:"context"`
}

type docsStreamPayload struct {
	Message         chatMessage    `json:"message"`
	AgentID         string         `json:"agent_id"`
	ThreadID        string         `json:"thread_id"`
	DocumentContent string         `json:"document_content,omitempty"`
	DocumentPath    string         `json:"document_path,omitempty"`
	Context         map[string]any `json:"context"`
}

type createThreadPayload struct {
	AgentID string `json:"agent_id"`
}

type batchPayload struct {
	Messages []batchItem `json:"messages"`
}

type batchItem struct {
	AgentID  string         `json:"agent_id"`
	Message  chatMessage    `json:"message"`
	ThreadID string         `json:"thread_id,omitempty"`
	Context  map[string]any `json:"context"`
}
