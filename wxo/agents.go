package wxo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
)

var (
	agentPaths   = []string{"/agents", "/orchestrate/agents", "/assistants", "/orchestrate/assistants"}
	agentAliases = []string{"agents", "assistants", "data"}
)

// ListAgents returns the agents deployed on the instance. Routes are tried
// in order until one exists.
func (c *Client) ListAgents(ctx context.Context) ([]watsonx.Agent, error) {
	return firstAvailable(agentPaths, func(path string) ([]watsonx.Agent, error) {
		return list[watsonx.Agent](ctx, c, http.MethodGet, path, nil, agentAliases, shape.PropagateError)
	})
}

// GetAgent returns one agent.
func (c *Client) GetAgent(ctx context.Context, agentID string) (watsonx.Agent, error) {
	var a watsonx.Agent
	err := c.call(ctx, http.MethodGet, "/agents/"+url.PathEscape(agentID), nil, &a)
	return a, err
}
