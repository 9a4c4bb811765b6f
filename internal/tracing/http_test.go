package tracing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leakscan/internal/tracing"
)

func TestWrapHTTPClient_PassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := tracing.WrapHTTPClient(nil)
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestWrapHTTPClient_DoesNotMutateOriginal(t *testing.T) {
	orig := &http.Client{}
	wrapped := tracing.WrapHTTPClient(orig)

	assert.Nil(t, orig.Transport)
	assert.NotNil(t, wrapped.Transport)
}
