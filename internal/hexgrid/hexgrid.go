// Package hexgrid converts region geometries into H3 hexagonal cell sets and
// exposes the small slice of the H3 API the rest of the system needs.
package hexgrid

import (
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"
	"github.com/uber/h3-go/v4"
)

// Cell is an opaque H3 index string at a fixed resolution. Stable across
// calls for the same geographic location.
type Cell string

// MinResolution and MaxResolution bound the tessellation granularity the
// system accepts (0 = coarsest).
const (
	MinResolution = 0
	MaxResolution = 10
)

// ValidResolution reports whether res is within the accepted range.
func ValidResolution(res int) bool {
	return res >= MinResolution && res <= MaxResolution
}

func parse(c Cell) (h3.Cell, error) {
	idx, err := strconv.ParseUint(string(c), 16, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "hexgrid: parse cell %q", string(c))
	}
	return h3.Cell(idx), nil
}

// FromLatLng returns the cell containing the given point.
func FromLatLng(lat, lon float64, res int) (Cell, error) {
	if !ValidResolution(res) {
		return "", eris.Errorf("hexgrid: resolution %d out of range", res)
	}
	c, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, res)
	if err != nil {
		return "", eris.Wrap(err, "hexgrid: latlng to cell")
	}
	return Cell(c.String()), nil
}

// FromGeometry returns the sorted, deduplicated set of cells covering the
// geometry at the given resolution. Points map to their containing cell;
// polygons to the polygon-fill cell set. A polygon whose fill is empty
// (degenerate or too small for the resolution) falls back to the single cell
// containing its centroid, so every non-empty geometry contributes at least
// one cell. Input coordinates must be geographic lon/lat degrees.
func FromGeometry(g orb.Geometry, res int) ([]Cell, error) {
	if !ValidResolution(res) {
		return nil, eris.Errorf("hexgrid: resolution %d out of range", res)
	}

	set := make(map[Cell]struct{})
	if err := collect(g, res, set); err != nil {
		return nil, err
	}

	cells := make([]Cell, 0, len(set))
	for c := range set {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
	return cells, nil
}

func collect(g orb.Geometry, res int, set map[Cell]struct{}) error {
	switch geom := g.(type) {
	case orb.Point:
		c, err := FromLatLng(geom.Lat(), geom.Lon(), res)
		if err != nil {
			return err
		}
		set[c] = struct{}{}
		return nil
	case orb.Polygon:
		return fillPolygon(geom, res, set)
	case orb.MultiPolygon:
		for _, p := range geom {
			if err := fillPolygon(p, res, set); err != nil {
				return err
			}
		}
		return nil
	case orb.Collection:
		for _, sub := range geom {
			if err := collect(sub, res, set); err != nil {
				return err
			}
		}
		return nil
	default:
		return eris.Errorf("hexgrid: unsupported geometry type %T", g)
	}
}

func fillPolygon(poly orb.Polygon, res int, set map[Cell]struct{}) error {
	if len(poly) == 0 {
		return nil
	}

	gp := h3.GeoPolygon{GeoLoop: ringToLoop(poly[0])}
	for _, hole := range poly[1:] {
		gp.Holes = append(gp.Holes, ringToLoop(hole))
	}

	cells, err := h3.PolygonToCells(gp, res)
	if err != nil || len(cells) == 0 {
		// Centroid fallback keeps degenerate geometries on the grid.
		centroid, _ := planar.CentroidArea(poly)
		c, cerr := FromLatLng(centroid.Lat(), centroid.Lon(), res)
		if cerr != nil {
			return cerr
		}
		set[c] = struct{}{}
		return nil
	}

	for _, c := range cells {
		set[Cell(c.String())] = struct{}{}
	}
	return nil
}

func ringToLoop(ring orb.Ring) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(ring))
	for _, pt := range ring {
		loop = append(loop, h3.LatLng{Lat: pt.Lat(), Lng: pt.Lon()})
	}
	return loop
}

// Center returns the latitude and longitude of the cell's center point.
func Center(c Cell) (lat, lon float64, err error) {
	hc, err := parse(c)
	if err != nil {
		return 0, 0, err
	}
	ll, err := h3.CellToLatLng(hc)
	if err != nil {
		return 0, 0, eris.Wrap(err, "hexgrid: cell center")
	}
	return ll.Lat, ll.Lng, nil
}

// Boundary returns the cell outline as [lon, lat] pairs, closed.
func Boundary(c Cell) ([][2]float64, error) {
	hc, err := parse(c)
	if err != nil {
		return nil, err
	}
	b, err := h3.CellToBoundary(hc)
	if err != nil {
		return nil, eris.Wrap(err, "hexgrid: cell boundary")
	}
	out := make([][2]float64, 0, len(b)+1)
	for _, ll := range b {
		out = append(out, [2]float64{ll.Lng, ll.Lat})
	}
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out, nil
}

// Neighbors returns the distance-1 ring around the cell, excluding the cell
// itself.
func Neighbors(c Cell) ([]Cell, error) {
	hc, err := parse(c)
	if err != nil {
		return nil, err
	}
	disk, err := h3.GridDisk(hc, 1)
	if err != nil {
		return nil, eris.Wrap(err, "hexgrid: grid disk")
	}
	out := make([]Cell, 0, len(disk))
	for _, n := range disk {
		if n == hc {
			continue
		}
		out = append(out, Cell(n.String()))
	}
	return out, nil
}
