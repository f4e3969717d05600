package wxo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
	"github.com/rs/zerolog"
)

// Interface compliance check.
var _ watsonx.Orchestrator = (*Client)(nil)

// Client implements [watsonx.Orchestrator]. It is safe for concurrent use.
type Client struct {
	instanceID string
	tokens     watsonx.TokenSource
	region     string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL, overriding the regional default.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithRegion selects the regional endpoint, e.g. "eu-de".
func WithRegion(region string) Option {
	return func(c *Client) { c.region = region }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a [Client] for the Orchestrate instance instanceID.
func New(instanceID string, tokens watsonx.TokenSource, opts ...Option) *Client {
	c := &Client{
		instanceID: instanceID,
		tokens:     tokens,
		region:     defaultRegion,
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.baseURL == "" {
		c.baseURL = fmt.Sprintf(baseURLFormat, c.region)
	}
	return c
}

// BaseURL returns the URL requests are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// send issues an authenticated request. The response is returned for any
// status; the caller closes its body.
func (c *Client) send(ctx context.Context, method, path string, body any, accept string) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("wxo: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("wxo: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("wxo: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.instanceID != "" {
		req.Header.Set(instanceHeader, c.instanceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wxo: %w", err)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("request")
	return resp, nil
}

// call sends a request and decodes a 2xx JSON answer into out, which may be
// nil to discard the body.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !success(resp.StatusCode) {
		return apiError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("wxo: decode %s: %w", path, err)
	}
	return nil
}

// list fetches a collection endpoint and normalizes its shape.
func list[T any](ctx context.Context, c *Client, method, path string, in any, aliases []string, avail shape.Availability) ([]T, error) {
	resp, err := c.send(ctx, method, path, in, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wxo: read %s: %w", path, err)
	}
	items, err := shape.Response[T](resp.StatusCode, body, aliases, avail)
	if err != nil {
		return nil, fmt.Errorf("wxo: %s: %w", path, err)
	}
	return items, nil
}

// firstAvailable calls try for each path until one answers something other
// than 404. It fails with [watsonx.ErrEndpointUnavailable] when none does.
func firstAvailable[T any](paths []string, try func(path string) (T, error)) (T, error) {
	var zero T
	for _, p := range paths {
		v, err := try(p)
		if watsonx.IsNotFound(err) {
			continue
		}
		return v, err
	}
	return zero, fmt.Errorf("wxo: tried %s: %w", strings.Join(paths, ", "), watsonx.ErrEndpointUnavailable)
}

func success(status int) bool { return status >= 200 && status <= 299 }

func apiError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("wxo: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	return fmt.Errorf("wxo: %w", &watsonx.APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))})
}
