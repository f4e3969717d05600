package iam_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/iam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, calls *atomic.Int32, expiration int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/identity/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ibm:params:oauth:grant-type:apikey", r.Form.Get("grant_type"))
		if r.Form.Get("apikey") != "good-key" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errorMessage":"Provided API key could not be found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","expiration":%d}`, n, expiration)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenSource(t *testing.T) {
	t.Parallel()

	t.Run("fetches and caches", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		now := time.Unix(1_000_000, 0)
		srv := tokenServer(t, &calls, now.Add(time.Hour).Unix())
		ts := iam.New("good-key", iam.WithHost(srv.URL), iam.WithClock(func() time.Time { return now }))

		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)

		tok, err = ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("refreshes near expiry", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		now := time.Unix(1_000_000, 0)
		srv := tokenServer(t, &calls, now.Add(90*time.Second).Unix())
		clock := now
		ts := iam.New("good-key", iam.WithHost(srv.URL), iam.WithClock(func() time.Time { return clock }))

		_, err := ts.Token(context.Background())
		require.NoError(t, err)
		clock = now.Add(45 * time.Second)
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "tok-2", tok)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("concurrent callers share one fetch", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		srv := tokenServer(t, &calls, time.Now().Add(time.Hour).Unix())
		ts := iam.New("good-key", iam.WithHost(srv.URL))

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ts.Token(context.Background())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("rejected key", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		srv := tokenServer(t, &calls, 0)
		ts := iam.New("bad-key", iam.WithHost(srv.URL))

		_, err := ts.Token(context.Background())
		assert.ErrorIs(t, err, watsonx.ErrNotAuthenticated)
		var apiErr *watsonx.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("empty key fails without a request", func(t *testing.T) {
		t.Parallel()
		_, err := iam.New("").Token(context.Background())
		assert.ErrorIs(t, err, watsonx.ErrNotAuthenticated)
	})
}

func TestStatic(t *testing.T) {
	t.Parallel()

	tok, err := iam.Static("bearer").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok)

	_, err = iam.Static("").Token(context.Background())
	assert.ErrorIs(t, err, watsonx.ErrNotAuthenticated)
}
