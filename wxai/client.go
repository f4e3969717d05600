package wxai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/watsonx"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Interface compliance check.
var _ watsonx.Generator = (*Client)(nil)

// Client implements [watsonx.Generator] for the watsonx.ai generation API.
// It is safe for concurrent use.
type Client struct {
	projectID  string
	tokens     watsonx.TokenSource
	baseURL    string
	apiVersion string
	httpClient *http.Client
	log        zerolog.Logger
	scoring    bool
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIVersion sets the version query parameter sent with every request.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = v }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithQualityScoring attaches [watsonx.AssessQuality] scores to results.
func WithQualityScoring() Option {
	return func(c *Client) { c.scoring = true }
}

// New creates a [Client] for projectID authenticated by tokens.
func New(projectID string, tokens watsonx.TokenSource, opts ...Option) *Client {
	c := &Client{
		projectID:  projectID,
		tokens:     tokens,
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path + "?version=" + url.QueryEscape(c.apiVersion)
}

// do sends an authenticated request. The caller owns the response body when
// the status is 2xx; otherwise the body is consumed and an error returned.
func (c *Client) do(ctx context.Context, method, path string, body any, accept, requestID string) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("wxai: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("wxai: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("wxai: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		req.Header.Set(transactionHeader, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wxai: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return resp, nil
}

func (c *Client) buildRequest(prompt string, cfg watsonx.GenerationConfig) (apiRequest, error) {
	if strings.TrimSpace(prompt) == "" {
		return apiRequest{}, fmt.Errorf("wxai: empty prompt: %w", watsonx.ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return apiRequest{}, fmt.Errorf("wxai: %w", err)
	}
	cfg = cfg.WithDefaults()
	return apiRequest{
		Input: prompt,
		Parameters: apiParameters{
			DecodingMethod:    cfg.DecodingMethod,
			MaxNewTokens:      cfg.MaxTokens,
			MinNewTokens:      cfg.MinTokens,
			TopK:              cfg.TopK,
			TopP:              cfg.TopP,
			RepetitionPenalty: cfg.RepetitionPenalty,
			Temperature:       cfg.Temperature,
			StopSequences:     cfg.StopSequences,
		},
		ModelID:   cfg.ModelID,
		ProjectID: c.projectID,
	}, nil
}

func newRequestID() string { return uuid.NewString() }

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("wxai: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	apiErr := &watsonx.APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	var env apiErrorResponse
	if json.Unmarshal(body, &env) == nil && len(env.Errors) > 0 {
		msgs := make([]string, len(env.Errors))
		for i, e := range env.Errors {
			msgs[i] = e.Code + ": " + e.Message
		}
		apiErr.Body = strings.Join(msgs, "; ")
	}
	return fmt.Errorf("wxai: %w", apiErr)
}
