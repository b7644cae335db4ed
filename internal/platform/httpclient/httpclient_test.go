package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "findmypet-search/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/echo", r.URL.Path)
		assert.Equal(t, "k1", r.Header.Get("X-Worker-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", time.Second, WithHeader("X-Worker-Key", "k1"))
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, c.DoJSON(context.Background(), http.MethodPost, "api/echo", map[string]string{"msg": "hola"}, &out))
	assert.Equal(t, "hola", out["echo"])
}

func TestDoJSON_Non2xxIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "scraper down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodPost, "/x", nil, nil)
	require.Error(t, err)
	assert.Equal(t, perr.KindDependency, perr.KindOf(err))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Contains(t, err.Error(), "scraper down")
}

func TestDoJSON_RelativeWithoutBaseURL(t *testing.T) {
	c, err := New("", time.Second)
	require.NoError(t, err)
	err = c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil)
	assert.Equal(t, perr.KindDependency, perr.KindOf(err))
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("::not-a-url", time.Second)
	assert.Error(t, err)
}
