package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/watsonx"
	bt "github.com/fwojciec/watsonx/bubbletea"
	wxjson "github.com/fwojciec/watsonx/json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func (a *app) chatCmd() *cobra.Command {
	var (
		convPath string
		thread   string
	)
	cmd := &cobra.Command{
		Use:   "chat AGENT",
		Short: "Chat with an agent in an interactive terminal UI",
		Long: `chat opens a full-screen conversation with AGENT. The transcript is
saved on exit to --conversation, or under ~/.watsonx/conversations when
the flag is omitted. Passing an existing transcript resumes it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.orchestrator()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			agentID := args[0]

			conv, err := loadOrCreateConversation(convPath, agentID, time.Now())
			if err != nil {
				return err
			}
			if thread != "" {
				conv.ThreadID = thread
			}

			name := agentID
			if ag, err := client.GetAgent(ctx, agentID); err == nil && ag.Name != "" {
				name = ag.Name
			} else if err != nil {
				a.log.Debug().Err(err).Str("agent", agentID).Msg("agent lookup failed")
			}

			m := bt.New(replyWith(client, agentID), &conv, a.theme, bt.Config{AgentName: name})
			if _, err := bt.Run(ctx, m); err != nil {
				return fmt.Errorf("TUI: %w", err)
			}

			if len(conv.Turns) == 0 {
				return nil
			}
			path := convPath
			if path == "" {
				path = defaultConversationPath(conv.ID)
			}
			if err := wxjson.SaveConversation(path, conv); err != nil {
				return fmt.Errorf("save conversation: %w", err)
			}
			fmt.Fprintf(a.stderr, "Conversation saved to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&convPath, "conversation", "", "Transcript file to resume and save")
	cmd.Flags().StringVar(&thread, "thread", "", "Continue an existing remote thread")
	return cmd
}

// replyWith streams each message to agentID through o.
func replyWith(o watsonx.Orchestrator, agentID string) bt.ReplyFunc {
	return func(ctx context.Context, message, threadID string, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
		return o.StreamMessage(ctx, agentID, message, threadID, h)
	}
}

// loadOrCreateConversation resumes the transcript at path when it exists.
// A transcript recorded with a different agent is rejected.
func loadOrCreateConversation(path, agentID string, now time.Time) (watsonx.Conversation, error) {
	if path != "" {
		c, err := wxjson.LoadConversation(path)
		switch {
		case err == nil:
			if c.AgentID != "" && c.AgentID != agentID {
				return watsonx.Conversation{}, fmt.Errorf("conversation %s belongs to agent %q: %w", path, c.AgentID, watsonx.ErrValidation)
			}
			c.AgentID = agentID
			return c, nil
		case errors.Is(err, os.ErrNotExist):
		default:
			return watsonx.Conversation{}, fmt.Errorf("load conversation: %w", err)
		}
	}
	return watsonx.Conversation{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func defaultConversationPath(id string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".watsonx", "conversations", id+".json")
}
