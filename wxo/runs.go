package wxo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
)

// GetRun returns one run.
func (c *Client) GetRun(ctx context.Context, runID string) (watsonx.Run, error) {
	var r watsonx.Run
	err := c.call(ctx, http.MethodGet, "/runs/"+url.PathEscape(runID), nil, &r)
	return r, err
}

// ListRuns returns the runs of agentID, or every run when agentID is empty.
func (c *Client) ListRuns(ctx context.Context, agentID string) ([]watsonx.Run, error) {
	return list[watsonx.Run](ctx, c, http.MethodGet, withAgent("/runs", agentID), nil, []string{"runs"}, shape.PropagateError)
}

// CancelRun stops a run that is still in progress.
func (c *Client) CancelRun(ctx context.Context, runID string) error {
	return c.call(ctx, http.MethodPost, "/runs/"+url.PathEscape(runID)+"/cancel", nil, nil)
}
