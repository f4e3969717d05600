// Package iam exchanges an IBM Cloud API key for bearer tokens.
package iam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/watsonx"
)

const (
	defaultHost = "iam.cloud.ibm.com"
	tokenPath   = "/identity/token"
	grantType   = "urn:ibm:params:oauth:grant-type:apikey"

	// refreshMargin renews tokens this long before they expire.
	refreshMargin = 60 * time.Second
)

// Interface compliance checks.
var (
	_ watsonx.TokenSource = (*TokenSource)(nil)
	_ watsonx.TokenSource = Static("")
)

// TokenSource fetches and caches IAM access tokens. It is safe for
// concurrent use; concurrent callers share one refresh.
type TokenSource struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// Option configures a [TokenSource].
type Option func(*TokenSource)

// WithHost sets the IAM host, e.g. "iam.test.cloud.ibm.com". A value with a
// scheme is used as the base URL as is. Useful for testing with httptest.
func WithHost(host string) Option {
	return func(s *TokenSource) { s.endpoint = endpointFor(host) }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *TokenSource) { s.httpClient = hc }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *TokenSource) { s.now = now }
}

// New creates a [TokenSource] for apiKey.
func New(apiKey string, opts ...Option) *TokenSource {
	s := &TokenSource{
		apiKey:     apiKey,
		endpoint:   endpointFor(defaultHost),
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func endpointFor(host string) string {
	host = strings.TrimRight(host, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + tokenPath
}

// Token returns a cached token, fetching a new one when none is cached or
// the cached one is about to expire.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("iam: empty api key: %w", watsonx.ErrNotAuthenticated)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && s.now().Before(s.expiry.Add(-refreshMargin)) {
		return s.token, nil
	}
	tok, exp, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.token, s.expiry = tok, exp
	return tok, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Expiration  int64  `json:"expiration"` // unix seconds
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

func (s *TokenSource) fetch(ctx context.Context) (string, time.Time, error) {
	form := url.Values{"grant_type": {grantType}, "apikey": {s.apiKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("iam: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("iam: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("iam: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("iam: %w: %w", watsonx.ErrNotAuthenticated,
			&watsonx.APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", time.Time{}, fmt.Errorf("iam: decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("iam: response has no access_token: %w", watsonx.ErrNotAuthenticated)
	}

	var exp time.Time
	switch {
	case tr.Expiration > 0:
		exp = time.Unix(tr.Expiration, 0)
	case tr.ExpiresIn > 0:
		exp = s.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	default:
		exp = s.now().Add(time.Hour)
	}
	return tr.AccessToken, exp, nil
}

// Static is a pre-resolved bearer token.
type Static string

// Token returns the token, or ErrNotAuthenticated when it is empty.
func (s Static) Token(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("iam: empty token: %w", watsonx.ErrNotAuthenticated)
	}
	return string(s), nil
}
