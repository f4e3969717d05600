package wxo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/shape"
)

// ListCollections returns the document collections. Instances without
// document search return none.
func (c *Client) ListCollections(ctx context.Context) ([]watsonx.Collection, error) {
	return list[watsonx.Collection](ctx, c, http.MethodGet, "/collections", nil, []string{"collections"}, shape.EmptyOk)
}

// GetCollection returns one collection.
func (c *Client) GetCollection(ctx context.Context, collectionID string) (watsonx.Collection, error) {
	var col watsonx.Collection
	err := c.call(ctx, http.MethodGet, "/collections/"+url.PathEscape(collectionID), nil, &col)
	return col, err
}

// SearchDocuments runs a similarity search over a collection.
func (c *Client) SearchDocuments(ctx context.Context, collectionID string, req watsonx.SearchRequest) ([]watsonx.SearchResult, error) {
	path := "/collections/" + url.PathEscape(collectionID) + "/search"
	return list[watsonx.SearchResult](ctx, c, http.MethodPost, path, req, []string{"results"}, shape.PropagateError)
}
