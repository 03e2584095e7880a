package boundary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexatlas/hexatlas/internal/cache"
	"github.com/hexatlas/hexatlas/internal/httpx"
	"github.com/hexatlas/hexatlas/internal/model"
)

const singleFeature = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {},
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[-100.5,25.5],[-100.0,25.5],[-100.0,26.0],[-100.5,26.0],[-100.5,25.5]]]
		}
	}]
}`

func TestParseGeoJSONSingleFeature(t *testing.T) {
	region, err := model.RegionByAbbr("NL")
	require.NoError(t, err)

	geom, err := ParseGeoJSON([]byte(singleFeature), region)
	require.NoError(t, err)

	poly, ok := geom.(orb.Polygon)
	require.True(t, ok)
	assert.Len(t, poly[0], 5)
}

func TestParseGeoJSONMultipleFeatures(t *testing.T) {
	region, err := model.RegionByAbbr("NL")
	require.NoError(t, err)

	multi := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [-100.3, 25.7]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [-100.2, 25.8]}}
		]
	}`
	geom, err := ParseGeoJSON([]byte(multi), region)
	require.NoError(t, err)

	coll, ok := geom.(orb.Collection)
	require.True(t, ok)
	assert.Len(t, coll, 2)
}

func TestParseGeoJSONEmpty(t *testing.T) {
	region, err := model.RegionByAbbr("NL")
	require.NoError(t, err)

	_, err = ParseGeoJSON([]byte(`{"type": "FeatureCollection", "features": []}`), region)
	assert.Error(t, err)
}

func TestHTTPSourceCachesRawPayload(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/19-NL.geojson", r.URL.Path)
		_, _ = w.Write([]byte(singleFeature))
	}))
	defer srv.Close()

	region, err := model.RegionByAbbr("NL")
	require.NoError(t, err)

	store := cache.NewMemory()
	src := NewHTTPSource(httpx.New(httpx.Options{}), srv.URL, store)

	first, err := src.Resolve(context.Background(), region)
	require.NoError(t, err)
	second, err := src.Resolve(context.Background(), region)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second resolve must come from cache")
}

func TestHTTPSourceFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	region, err := model.RegionByAbbr("OAX")
	require.NoError(t, err)

	src := NewHTTPSource(httpx.New(httpx.Options{}), srv.URL, cache.NewMemory())
	_, err = src.Resolve(context.Background(), region)
	assert.Error(t, err)
}
