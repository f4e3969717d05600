package wxo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
)

// ListTools returns the tools registered on the instance.
func (c *Client) ListTools(ctx context.Context) ([]watsonx.Tool, error) {
	return list[watsonx.Tool](ctx, c, http.MethodGet, "/tools", nil, []string{"tools"}, shape.PropagateError)
}

// GetTool returns one tool.
func (c *Client) GetTool(ctx context.Context, toolID string) (watsonx.Tool, error) {
	var t watsonx.Tool
	err := c.call(ctx, http.MethodGet, "/tools/"+url.PathEscape(toolID), nil, &t)
	return t, err
}

// ExecuteTool runs a tool directly, outside any agent.
func (c *Client) ExecuteTool(ctx context.Context, exec watsonx.ToolExecution) (watsonx.ToolExecutionResult, error) {
	var res watsonx.ToolExecutionResult
	if exec.Parameters == nil {
		exec.Parameters = map[string]any{}
	}
	err := c.call(ctx, http.MethodPost, "/tools/"+url.PathEscape(exec.ToolID)+"/execute", exec, &res)
	return res, err
}

// ToolHistory returns recent executions of a tool, at most limit when
// limit is positive. Instances without history support return none.
func (c *Client) ToolHistory(ctx context.Context, toolID string, limit int) ([]watsonx.ToolExecutionRecord, error) {
	path := "/orchestrate/tools/" + url.PathEscape(toolID) + "/execution-history"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	return list[watsonx.ToolExecutionRecord](ctx, c, http.MethodGet, path, nil, []string{"history", "executions"}, shape.EmptyOk)
}

// ToolVersions returns the published versions of a tool. Instances without
// versioning return none.
func (c *Client) ToolVersions(ctx context.Context, toolID string) ([]watsonx.ToolVersion, error) {
	path := "/orchestrate/tools/" + url.PathEscape(toolID) + "/versions"
	return list[watsonx.ToolVersion](ctx, c, http.MethodGet, path, nil, []string{"versions"}, shape.EmptyOk)
}
