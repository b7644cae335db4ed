package aiservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "findmypet-search/internal/platform/errors"
	"findmypet-search/internal/ports/workers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFeatures_PostsPayload(t *testing.T) {
	var got workers.FeatureExtractionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ai/extract-features", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Worker-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second})
	require.NoError(t, err)

	err = c.ExtractFeatures(context.Background(), workers.FeatureExtractionRequest{PetID: "p1", Images: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "p1", got.PetID)
	assert.Equal(t, []string{"a", "b"}, got.Images)
}

func TestExtractFeatures_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	err = c.ExtractFeatures(context.Background(), workers.FeatureExtractionRequest{PetID: "p1"})
	assert.Equal(t, perr.KindDependency, perr.KindOf(err))
}

func TestExtractFeatures_NotConfigured(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	assert.False(t, c.IsConfigured())
	assert.ErrorIs(t, c.ExtractFeatures(context.Background(), workers.FeatureExtractionRequest{}), workers.ErrNotConfigured)
}
