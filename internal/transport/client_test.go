package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetSendsKeyAndQuery(t *testing.T) {
	var gotKey, gotPage, gotLimit, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(APIKeyHeader)
		gotPage = r.URL.Query().Get("page")
		gotLimit = r.URL.Query().Get("limit")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zerolog.Nop())
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/patients",
		Query:  url.Values{"page": {"2"}, "limit": {"20"}},
		Key:    "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"data":[]}`, string(resp.Body))
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "2", gotPage)
	assert.Equal(t, "20", gotLimit)
	assert.Equal(t, "/patients", gotPath)
}

func TestClient_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("busy"))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zerolog.Nop())
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/patients"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Equal(t, "busy", string(resp.Body))
}

func TestClient_PostJSONBody(t *testing.T) {
	var got map[string][]string
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zerolog.Nop())
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/submit-assessment",
		Body:   map[string][]string{"fever_patients": {"A"}},
	})
	require.NoError(t, err)
	assert.Contains(t, contentType, "application/json")
	assert.Equal(t, []string{"A"}, got["fever_patients"])
}

func TestClient_ConnectFailure(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second, zerolog.Nop())
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/patients"})
	require.Error(t, err)
}
