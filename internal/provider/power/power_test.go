package power

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexatlas/hexatlas/internal/httpx"
)

func TestDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "AG", q.Get("community"))
		assert.Equal(t, "JSON", q.Get("format"))
		assert.Equal(t, "20250815", q.Get("start"))
		assert.Equal(t, "20250815", q.Get("end"))
		assert.Equal(t, "T2M,T2M_MAX,T2M_MIN", q.Get("parameters"))

		_, _ = w.Write([]byte(`{
			"properties": {
				"parameter": {
					"T2M":     {"20250815": 24.1},
					"T2M_MAX": {"20250815": 31.7},
					"T2M_MIN": {"20250815": -999}
				}
			}
		}`))
	}))
	defer srv.Close()

	c := New(httpx.New(httpx.Options{}), srv.URL, 0)
	date := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	got, err := c.Daily(context.Background(), 25.67, -100.31, date, []string{ParamTempMean, ParamTempMax, ParamTempMin})
	require.NoError(t, err)

	assert.InDelta(t, 24.1, got[ParamTempMean], 1e-9)
	assert.InDelta(t, 31.7, got[ParamTempMax], 1e-9)
	// Fill value means no observation; the key must be absent, not -999.
	_, ok := got[ParamTempMin]
	assert.False(t, ok)
}

func TestDailyMissingParameterBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"properties": {}}`))
	}))
	defer srv.Close()

	c := New(httpx.New(httpx.Options{}), srv.URL, 0)

	_, err := c.Daily(context.Background(), 25.67, -100.31, time.Now(), []string{ParamTempMean})
	assert.Error(t, err)
}

func TestDailyNullValueOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"properties": {"parameter": {"WS10M": {"20250815": null}}}
		}`))
	}))
	defer srv.Close()

	c := New(httpx.New(httpx.Options{}), srv.URL, 0)
	date := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	got, err := c.Daily(context.Background(), 25.67, -100.31, date, []string{ParamWindMean})
	require.NoError(t, err)
	assert.Empty(t, got)
}
