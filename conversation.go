package watsonx

import "time"

// Role identifies who authored a Turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "assistant"
)

// Turn is one message of a Conversation.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// Conversation is a local transcript of a chat with one agent. ThreadID is
// the remote thread the agent assigned, empty until the first reply.
type Conversation struct {
	ID        string
	AgentID   string
	ThreadID  string
	Turns     []Turn
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Append records a turn and bumps UpdatedAt.
func (c *Conversation) Append(role Role, text string, at time.Time) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text, At: at})
	c.UpdatedAt = at
}
