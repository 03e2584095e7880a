// Package overpass is a client for the OSM Overpass API, the source of
// infrastructure point features.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/httpx"
)

// Category names one infrastructure layer and its OSM tag filter.
type Category struct {
	Key    string // indicator key, e.g. "hospitals"
	Filter string // Overpass QL tag filter, e.g. `["amenity"="hospital"]`
}

// Categories returns the six infrastructure layers in table-column order.
func Categories() []Category {
	return []Category{
		{Key: "hospitals", Filter: `["amenity"="hospital"]`},
		{Key: "clinics", Filter: `["amenity"="clinic"]`},
		{Key: "schools", Filter: `["amenity"="school"]`},
		{Key: "bus_stops", Filter: `["highway"="bus_stop"]`},
		{Key: "substations", Filter: `["power"="substation"]`},
		{Key: "landuse", Filter: `["landuse"]`},
	}
}

// CategoryByKey returns the category for an indicator key.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories() {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Provider retrieves point features for one category clipped to a boundary.
type Provider interface {
	Features(ctx context.Context, boundary orb.Geometry, cat Category) ([]orb.Point, error)
}

// Client queries an Overpass interpreter endpoint.
type Client struct {
	http    *httpx.Client
	baseURL string
	timeout time.Duration
}

// New creates an Overpass client.
func New(http *httpx.Client, baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: http, baseURL: baseURL, timeout: timeout}
}

type element struct {
	Type   string  `json:"type"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
}

type response struct {
	Elements []element `json:"elements"`
}

// Features queries nodes, ways, and relations matching the category filter
// within the boundary's bounding box, reduces each to a representative point
// (node position or way/relation center), and clips the result to the
// boundary polygon.
func (c *Client) Features(ctx context.Context, boundary orb.Geometry, cat Category) ([]orb.Point, error) {
	b := boundary.Bound()
	bbox := fmt.Sprintf("(%f,%f,%f,%f)", b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())

	query := fmt.Sprintf(`[out:json][timeout:%d];(node%s%s;way%s%s;relation%s%s;);out center;`,
		int(c.timeout.Seconds()),
		cat.Filter, bbox, cat.Filter, bbox, cat.Filter, bbox,
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.http.PostForm(ctx, c.baseURL, url.Values{"data": {query}})
	if err != nil {
		return nil, eris.Wrapf(err, "overpass: query %s", cat.Key)
	}
	defer body.Close() //nolint:errcheck

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "overpass: read %s response", cat.Key)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, eris.Wrapf(err, "overpass: decode %s response", cat.Key)
	}

	var points []orb.Point
	for _, el := range resp.Elements {
		var pt orb.Point
		switch {
		case el.Type == "node":
			pt = orb.Point{el.Lon, el.Lat}
		case el.Center != nil:
			pt = orb.Point{el.Center.Lon, el.Center.Lat}
		default:
			continue
		}
		if !Contains(boundary, pt) {
			continue
		}
		points = append(points, pt)
	}

	zap.L().Debug("overpass layer fetched",
		zap.String("category", cat.Key),
		zap.Int("elements", len(resp.Elements)),
		zap.Int("clipped", len(points)),
	)
	return points, nil
}

// Contains reports whether the point lies inside the boundary geometry.
func Contains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	case orb.Collection:
		for _, sub := range geom {
			if Contains(sub, pt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
