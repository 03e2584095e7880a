package httpx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v", r.URL.Query().Get("k"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer": 42}`))
	}))
	defer srv.Close()

	c := New(Options{})

	var out struct {
		Answer int `json:"answer"`
	}
	err := c.GetJSON(context.Background(), srv.URL, url.Values{"k": {"v"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Answer)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(Options{MaxRetries: 5})

	body, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Options{MaxRetries: 2})

	_, err := c.Get(context.Background(), srv.URL, nil)
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Options{MaxRetries: 3})

	_, err := c.Get(context.Background(), srv.URL, nil)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx other than 429 must not retry")
}

func TestPostJSONRetriesWithBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"x"}`, string(body))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"echo":"x"}`))
	}))
	defer srv.Close()

	c := New(Options{MaxRetries: 3})

	var out struct {
		Echo string `json:"echo"`
	}
	err := c.PostJSON(context.Background(), srv.URL, map[string]string{"name": "x"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "x", out.Echo)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "query-text", r.PostForm.Get("data"))
		_, _ = w.Write([]byte(`done`))
	}))
	defer srv.Close()

	c := New(Options{})

	body, err := c.PostForm(context.Background(), srv.URL, url.Values{"data": {"query-text"}})
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "done", string(data))
}

func TestUserAgentHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := New(Options{UserAgent: "test-agent/1.0"})

	var out map[string]any
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, &out))
}
