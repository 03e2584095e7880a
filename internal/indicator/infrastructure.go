package indicator

import (
	"context"
	"encoding/json"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/cache"
	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/model"
	"github.com/hexatlas/hexatlas/internal/provider/overpass"
)

// Infrastructure fetches six categories of point features clipped to the
// region boundary and returns per-cell counts, zero-filled over the whole
// grid. Raw layers are cached by (region, category) so repeated runs do not
// re-query the POI provider.
type Infrastructure struct {
	deps *Deps
}

// NewInfrastructure creates the infrastructure fetcher.
func NewInfrastructure(deps *Deps) *Infrastructure { return &Infrastructure{deps: deps} }

func (f *Infrastructure) Name() string { return "infrastructure" }

func (f *Infrastructure) Keys() []string { return model.InfrastructureKeys() }

func (f *Infrastructure) Fetch(ctx context.Context, q Query) (Result, error) {
	geom, err := f.deps.Boundary.Resolve(ctx, q.Region)
	if err != nil {
		return nil, err
	}
	cells, err := hexgrid.FromGeometry(geom, q.Resolution)
	if err != nil {
		return nil, err
	}
	inGrid := make(map[hexgrid.Cell]bool, len(cells))
	for _, c := range cells {
		inGrid[c] = true
	}

	out := make(Result, len(model.InfrastructureKeys()))
	for _, cat := range overpass.Categories() {
		points, err := f.layer(ctx, q.Region, geom, cat)
		if err != nil {
			return nil, err
		}

		counts := make(map[hexgrid.Cell]float64, len(cells))
		for _, c := range cells {
			counts[c] = 0
		}
		for _, pt := range points {
			c, err := hexgrid.FromLatLng(pt.Lat(), pt.Lon(), q.Resolution)
			if err != nil {
				continue
			}
			if inGrid[c] {
				counts[c]++
			}
		}
		out[cat.Key] = counts
	}

	zap.L().Info("infrastructure fetched",
		zap.String("region", q.Region.Abbr),
		zap.Int("grid", len(cells)),
	)
	return out, nil
}

// layer returns the cached point layer for a category, fetching and caching
// it on first use. Cache write failures propagate as hard errors.
func (f *Infrastructure) layer(ctx context.Context, region model.Region, geom orb.Geometry, cat overpass.Category) ([]orb.Point, error) {
	key := cache.Key{Region: region.Code, Category: "osm:" + cat.Key}

	if raw, ok, err := f.deps.Cache.Get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		var pts []orb.Point
		if err := json.Unmarshal(raw, &pts); err == nil {
			return pts, nil
		}
		// Unreadable entry: refetch and overwrite.
		zap.L().Warn("infrastructure: discarding corrupt cache entry",
			zap.String("key", key.String()),
		)
	}

	points, err := f.deps.Overpass.Features(ctx, geom, cat)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(points)
	if err == nil {
		if err := f.deps.Cache.Put(ctx, key, raw); err != nil {
			return nil, err
		}
	}
	return points, nil
}
