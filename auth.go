package watsonx

import "context"

// TokenSource supplies bearer tokens for outgoing requests. Implementations
// must be safe for concurrent use.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
