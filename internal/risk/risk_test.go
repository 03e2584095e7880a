package risk

import (
	"context"
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/provider/elevation"
)

// fakeElevation resolves each point through fn, failing the whole batch when
// fail returns true for any point in it.
type fakeElevation struct {
	fn   func(p elevation.Point) float64
	fail func(p elevation.Point) bool
}

func (f *fakeElevation) Lookup(_ context.Context, pts []elevation.Point) ([]float64, error) {
	out := make([]float64, len(pts))
	for i, p := range pts {
		if f.fail != nil && f.fail(p) {
			return nil, eris.New("elevation backend down")
		}
		out[i] = f.fn(p)
	}
	return out, nil
}

func testCell(t *testing.T) hexgrid.Cell {
	t.Helper()
	c, err := hexgrid.FromLatLng(25.67, -100.31, 6)
	require.NoError(t, err)
	return c
}

// terrain builds an elevation function giving the given cell centerElev and
// everything else neighborElev.
func terrain(t *testing.T, c hexgrid.Cell, centerElev, neighborElev float64) func(elevation.Point) float64 {
	t.Helper()
	lat, lon, err := hexgrid.Center(c)
	require.NoError(t, err)
	return func(p elevation.Point) float64 {
		if p.Lat == lat && p.Lon == lon {
			return centerElev
		}
		return neighborElev
	}
}

func TestFloodDepression(t *testing.T) {
	c := testCell(t)
	est := NewEstimator(&fakeElevation{fn: terrain(t, c, 100, 150)})

	scores, err := est.Flood(context.Background(), []hexgrid.Cell{c})
	require.NoError(t, err)
	require.Contains(t, scores, c)
	// Neighbors average 50 m above the center: risk 50/100.
	assert.InDelta(t, 0.5, scores[c], 1e-9)
}

func TestFloodHilltopClipsToZero(t *testing.T) {
	c := testCell(t)
	est := NewEstimator(&fakeElevation{fn: terrain(t, c, 500, 100)})

	scores, err := est.Flood(context.Background(), []hexgrid.Cell{c})
	require.NoError(t, err)
	assert.Zero(t, scores[c])
}

func TestFloodDeepDepressionSaturates(t *testing.T) {
	c := testCell(t)
	est := NewEstimator(&fakeElevation{fn: terrain(t, c, 0, 300)})

	scores, err := est.Flood(context.Background(), []hexgrid.Cell{c})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores[c], 1e-9)
}

func TestFloodBatchFailureLeavesOtherBatchesIntact(t *testing.T) {
	a := testCell(t)
	b, err := hexgrid.FromLatLng(20.67, -103.35, 6)
	require.NoError(t, err)

	aLat, aLon, err := hexgrid.Center(a)
	require.NoError(t, err)

	est := NewEstimator(&fakeElevation{
		fn: func(elevation.Point) float64 { return 100 },
		fail: func(p elevation.Point) bool {
			return p.Lat == aLat && p.Lon == aLon
		},
	})
	est.batch = 1

	scores, err := est.Flood(context.Background(), []hexgrid.Cell{a, b})
	require.NoError(t, err)
	assert.NotContains(t, scores, a, "failed batch stays unestimated")
	assert.Contains(t, scores, b)
	assert.Zero(t, scores[b], "flat terrain has no flood risk")
}

func TestLandslideFlatTerrain(t *testing.T) {
	c := testCell(t)
	est := NewEstimator(&fakeElevation{fn: func(elevation.Point) float64 { return 1200 }})

	scores, err := est.Landslide(context.Background(), []hexgrid.Cell{c})
	require.NoError(t, err)
	require.Contains(t, scores, c)
	assert.Zero(t, scores[c].MaxSlopeDeg)
	assert.Zero(t, scores[c].Risk)
}

func TestLandslideSlopeNormalization(t *testing.T) {
	c := testCell(t)

	gentle := NewEstimator(&fakeElevation{fn: terrain(t, c, 100, 200)})
	steep := NewEstimator(&fakeElevation{fn: terrain(t, c, 100, 2000)})

	gs, err := gentle.Landslide(context.Background(), []hexgrid.Cell{c})
	require.NoError(t, err)
	ss, err := steep.Landslide(context.Background(), []hexgrid.Cell{c})
	require.NoError(t, err)

	assert.Greater(t, gs[c].MaxSlopeDeg, 0.0)
	assert.Greater(t, ss[c].MaxSlopeDeg, gs[c].MaxSlopeDeg)
	assert.InDelta(t, gs[c].MaxSlopeDeg/60.0, gs[c].Risk, 1e-9)
	assert.LessOrEqual(t, ss[c].Risk, 1.0)
}

func TestHaversine(t *testing.T) {
	// One degree of longitude along the equator.
	d := Haversine(0, 0, 0, 1)
	assert.InDelta(t, 111195, d, 10)

	assert.Zero(t, Haversine(25.67, -100.31, 25.67, -100.31))

	// Symmetric.
	assert.InDelta(t,
		Haversine(25.67, -100.31, 20.67, -103.35),
		Haversine(20.67, -103.35, 25.67, -100.31),
		1e-6,
	)
}

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, clip(-0.5, 0, 1))
	assert.Equal(t, 1.0, clip(1.5, 0, 1))
	assert.Equal(t, 0.25, clip(0.25, 0, 1))
	assert.True(t, math.IsNaN(clip(math.NaN(), 0, 1)))
}
