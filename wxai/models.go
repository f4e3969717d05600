package wxai

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
)

var modelAliases = []string{"resources", "models"}

// ListModels returns the foundation models the service offers.
func (c *Client) ListModels(ctx context.Context) ([]watsonx.ModelInfo, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("wxai: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(modelSpecsPath), nil)
	if err != nil {
		return nil, fmt.Errorf("wxai: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wxai: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wxai: read models: %w", err)
	}

	specs, err := shape.Response[apiModel](resp.StatusCode, body, modelAliases, shape.PropagateError)
	if err != nil {
		return nil, fmt.Errorf("wxai: list models: %w", err)
	}
	models := make([]watsonx.ModelInfo, 0, len(specs))
	for _, s := range specs {
		if s.ModelID == "" {
			continue
		}
		models = append(models, watsonx.ModelInfo{
			ID:               s.ModelID,
			Label:            s.Label,
			Provider:         s.Provider,
			ShortDescription: s.ShortDescription,
			Functions:        ids(s.Functions),
			Lifecycle:        ids(s.Lifecycle),
		})
	}
	c.log.Debug().Int("count", len(models)).Msg("listed models")
	return models, nil
}

func ids(refs []apiIDRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.ID)
	}
	return out
}
