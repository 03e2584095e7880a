package boundary

import (
	"context"
	"path/filepath"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/hexatlas/hexatlas/internal/model"
)

// ShapefileSource resolves region boundaries from local shapefiles named
// {ABBR}.shp under a directory. Used when boundaries are provisioned offline
// instead of fetched over HTTP.
type ShapefileSource struct {
	dir string
}

// NewShapefileSource creates a shapefile-backed boundary source.
func NewShapefileSource(dir string) *ShapefileSource {
	return &ShapefileSource{dir: dir}
}

// Resolve reads {dir}/{ABBR}.shp and returns the union of its polygon shapes.
// Coordinates in the file must already be geographic lon/lat degrees.
func (s *ShapefileSource) Resolve(_ context.Context, region model.Region) (orb.Geometry, error) {
	path := filepath.Join(s.dir, region.Abbr+".shp")
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	var mp orb.MultiPolygon
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			continue
		}
		mp = append(mp, polygonFromShape(poly)...)
	}

	if len(mp) == 0 {
		return nil, eris.Errorf("boundary: shapefile %s has no polygon shapes", path)
	}
	if len(mp) == 1 {
		return mp[0], nil
	}
	return mp, nil
}

// polygonFromShape splits a shapefile polygon record into its parts, each
// treated as a separate single-ring polygon.
func polygonFromShape(poly *shp.Polygon) orb.MultiPolygon {
	var out orb.MultiPolygon
	n := len(poly.Points)
	for i, start := range poly.Parts {
		end := n
		if i+1 < len(poly.Parts) {
			end = int(poly.Parts[i+1])
		}
		ring := make(orb.Ring, 0, end-int(start))
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		if len(ring) < 4 {
			continue
		}
		out = append(out, orb.Polygon{ring})
	}
	return out
}
