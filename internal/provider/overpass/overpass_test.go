package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexatlas/hexatlas/internal/httpx"
)

func box() orb.Polygon {
	return orb.Polygon{orb.Ring{
		{-100.5, 25.5},
		{-100.0, 25.5},
		{-100.0, 26.0},
		{-100.5, 26.0},
		{-100.5, 25.5},
	}}
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 6)
	assert.Equal(t, "hospitals", cats[0].Key)
	assert.Equal(t, `["amenity"="hospital"]`, cats[0].Filter)

	c, ok := CategoryByKey("bus_stops")
	require.True(t, ok)
	assert.Equal(t, `["highway"="bus_stop"]`, c.Filter)

	_, ok = CategoryByKey("airports")
	assert.False(t, ok)
}

func TestFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query := r.PostForm.Get("data")
		assert.Contains(t, query, `node["amenity"="hospital"]`)
		assert.Contains(t, query, `way["amenity"="hospital"]`)
		assert.Contains(t, query, `relation["amenity"="hospital"]`)
		assert.Contains(t, query, "out center;")

		_, _ = w.Write([]byte(`{
			"elements": [
				{"type": "node", "lat": 25.7, "lon": -100.3},
				{"type": "way", "center": {"lat": 25.8, "lon": -100.2}},
				{"type": "node", "lat": 30.0, "lon": -100.3},
				{"type": "way"}
			]
		}`))
	}))
	defer srv.Close()

	c := New(httpx.New(httpx.Options{}), srv.URL, 0)
	cat, _ := CategoryByKey("hospitals")

	points, err := c.Features(context.Background(), box(), cat)
	require.NoError(t, err)

	// The out-of-box node and the center-less way are dropped.
	require.Len(t, points, 2)
	assert.Equal(t, orb.Point{-100.3, 25.7}, points[0])
	assert.Equal(t, orb.Point{-100.2, 25.8}, points[1])
}

func TestContains(t *testing.T) {
	inside := orb.Point{-100.25, 25.75}
	outside := orb.Point{-99.0, 25.75}

	assert.True(t, Contains(box(), inside))
	assert.False(t, Contains(box(), outside))

	multi := orb.MultiPolygon{box()}
	assert.True(t, Contains(multi, inside))

	coll := orb.Collection{box()}
	assert.True(t, Contains(coll, inside))
	assert.False(t, Contains(coll, outside))

	// Non-areal geometry can contain nothing.
	assert.False(t, Contains(orb.Point{-100.25, 25.75}, inside))
}
