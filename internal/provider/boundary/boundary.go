// Package boundary resolves administrative region boundaries to geographic
// polygon geometries (EPSG:4326 lon/lat degrees).
package boundary

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/cache"
	"github.com/hexatlas/hexatlas/internal/httpx"
	"github.com/hexatlas/hexatlas/internal/model"
)

// Source resolves a region to its boundary geometry. Implementations must
// fail explicitly when the region is unknown or its geometry is empty.
type Source interface {
	Resolve(ctx context.Context, region model.Region) (orb.Geometry, error)
}

// HTTPSource fetches region boundaries as GeoJSON from a static file
// repository, caching the raw payload per region.
type HTTPSource struct {
	client  *httpx.Client
	baseURL string
	store   cache.Store
}

// NewHTTPSource creates a boundary source backed by the given base URL.
func NewHTTPSource(client *httpx.Client, baseURL string, store cache.Store) *HTTPSource {
	return &HTTPSource{client: client, baseURL: baseURL, store: store}
}

// Resolve fetches and parses the region's GeoJSON boundary. The raw payload
// is cached by region code; cache write failures propagate as hard errors.
func (s *HTTPSource) Resolve(ctx context.Context, region model.Region) (orb.Geometry, error) {
	key := cache.Key{Region: region.Code, Category: "boundary"}

	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		url := fmt.Sprintf("%s/%s-%s.geojson", s.baseURL, region.Code, region.GeoJSONSuffix)
		body, err := s.client.Get(ctx, url, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: fetch %s", url)
		}
		raw, err = io.ReadAll(body)
		_ = body.Close()
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: read %s", url)
		}
		if err := s.store.Put(ctx, key, raw); err != nil {
			return nil, err
		}
		zap.L().Debug("boundary fetched",
			zap.String("region", region.Abbr),
			zap.Int("bytes", len(raw)),
		)
	}

	return ParseGeoJSON(raw, region)
}

// ParseGeoJSON extracts the boundary geometry from a GeoJSON feature
// collection. A collection with a single feature yields that feature's
// geometry directly; multiple features yield a geometry collection.
func ParseGeoJSON(raw []byte, region model.Region) (orb.Geometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: parse geojson for %s", region.Abbr)
	}
	if len(fc.Features) == 0 {
		return nil, eris.Errorf("boundary: region %s-%s has no features", region.Code, region.GeoJSONSuffix)
	}

	if len(fc.Features) == 1 {
		if fc.Features[0].Geometry == nil {
			return nil, eris.Errorf("boundary: region %s has an empty geometry", region.Abbr)
		}
		return fc.Features[0].Geometry, nil
	}

	coll := make(orb.Collection, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		coll = append(coll, f.Geometry)
	}
	if len(coll) == 0 {
		return nil, eris.Errorf("boundary: region %s has only empty geometries", region.Abbr)
	}
	return coll, nil
}
