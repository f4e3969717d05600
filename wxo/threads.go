package wxo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
)

// ListThreads returns the threads of agentID, or of every agent when
// agentID is empty.
func (c *Client) ListThreads(ctx context.Context, agentID string) ([]watsonx.Thread, error) {
	return list[watsonx.Thread](ctx, c, http.MethodGet, withAgent("/threads", agentID), nil, []string{"threads"}, shape.PropagateError)
}

// CreateThread starts an empty thread with agentID.
func (c *Client) CreateThread(ctx context.Context, agentID string) (watsonx.Thread, error) {
	var t watsonx.Thread
	err := c.call(ctx, http.MethodPost, "/threads", createThreadPayload{AgentID: agentID}, &t)
	return t, err
}

// DeleteThread removes a thread and its messages.
func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	return c.call(ctx, http.MethodDelete, "/threads/"+url.PathEscape(threadID), nil, nil)
}

// ThreadMessages returns the messages stored in a thread, oldest first.
func (c *Client) ThreadMessages(ctx context.Context, threadID string) ([]watsonx.ThreadMessage, error) {
	path := "/threads/" + url.PathEscape(threadID) + "/messages"
	return list[watsonx.ThreadMessage](ctx, c, http.MethodGet, path, nil, []string{"messages"}, shape.PropagateError)
}

func withAgent(path, agentID string) string {
	if agentID == "" {
		return path
	}
	return path + "?agent_id=" + url.QueryEscape(agentID)
}
