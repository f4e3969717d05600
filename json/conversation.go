package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/watsonx"
)

type conversationEnvelope struct {
	header
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	ThreadID  string    `json:"thread_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Turns     []turnDTO `json:"turns"`
}

type turnDTO struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// MarshalConversation serializes a Conversation in v1 envelope format.
func MarshalConversation(c watsonx.Conversation) ([]byte, error) {
	env := conversationEnvelope{
		header:    header{Version: version, Kind: kindConversation},
		ID:        c.ID,
		AgentID:   c.AgentID,
		ThreadID:  c.ThreadID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Turns:     make([]turnDTO, len(c.Turns)),
	}
	for i, t := range c.Turns {
		env.Turns[i] = turnDTO{Role: string(t.Role), Text: t.Text, At: t.At}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalConversation deserializes a Conversation from v1 envelope
// format.
func UnmarshalConversation(data []byte) (watsonx.Conversation, error) {
	if err := checkHeader(data, kindConversation); err != nil {
		return watsonx.Conversation{}, err
	}
	var env conversationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return watsonx.Conversation{}, fmt.Errorf("unmarshal conversation: %w", err)
	}
	turns := make([]watsonx.Turn, len(env.Turns))
	for i, dto := range env.Turns {
		role := watsonx.Role(dto.Role)
		if role != watsonx.RoleUser && role != watsonx.RoleAgent {
			return watsonx.Conversation{}, fmt.Errorf("turn %d: unknown role: %q", i, dto.Role)
		}
		turns[i] = watsonx.Turn{Role: role, Text: dto.Text, At: dto.At}
	}
	return watsonx.Conversation{
		ID:        env.ID,
		AgentID:   env.AgentID,
		ThreadID:  env.ThreadID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Turns:     turns,
	}, nil
}

// SaveConversation writes a Conversation to a JSON file.
func SaveConversation(path string, c watsonx.Conversation) error {
	data, err := MarshalConversation(c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, data)
}

// LoadConversation reads a Conversation from a JSON file.
func LoadConversation(path string) (watsonx.Conversation, error) {
	data, err := readFile(path)
	if err != nil {
		return watsonx.Conversation{}, err
	}
	return UnmarshalConversation(data)
}
