// Package risk derives flood and landslide risk scores from local elevation
// differentials between each hex cell and its ring-1 neighbors.
package risk

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/provider/elevation"
)

const (
	// BatchSize bounds the number of cells resolved per elevation request.
	BatchSize = 50

	// dropThreshold is the local elevation drop (m) that saturates flood
	// risk at 1.0.
	dropThreshold = 100.0

	// maxSlopeRef is the slope (degrees) that saturates landslide risk.
	maxSlopeRef = 60.0

	earthRadiusM = 6371000.0
)

// LandslideScore pairs the raw maximum slope with its normalized risk.
type LandslideScore struct {
	MaxSlopeDeg float64
	Risk        float64
}

// Estimator computes neighbor-based risk scores over a cell set.
type Estimator struct {
	elev  elevation.Provider
	batch int
}

// NewEstimator creates an estimator over the given elevation provider.
func NewEstimator(elev elevation.Provider) *Estimator {
	return &Estimator{elev: elev, batch: BatchSize}
}

// batchElevations resolves elevations for the centers of every cell in the
// batch and their ring-1 neighbors with a single deduplicated lookup.
func (e *Estimator) batchElevations(ctx context.Context, batch []hexgrid.Cell) (map[hexgrid.Cell]float64, error) {
	var pts []elevation.Point
	idx := make(map[hexgrid.Cell]int)

	add := func(c hexgrid.Cell) error {
		if _, ok := idx[c]; ok {
			return nil
		}
		lat, lon, err := hexgrid.Center(c)
		if err != nil {
			return err
		}
		idx[c] = len(pts)
		pts = append(pts, elevation.Point{Lat: lat, Lon: lon})
		return nil
	}

	for _, c := range batch {
		if err := add(c); err != nil {
			return nil, err
		}
		neighbors, err := hexgrid.Neighbors(c)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}

	elevs, err := e.elev.Lookup(ctx, pts)
	if err != nil {
		return nil, err
	}

	byCell := make(map[hexgrid.Cell]float64, len(idx))
	for c, i := range idx {
		byCell[c] = elevs[i]
	}
	return byCell, nil
}

// Flood estimates local-depression flood risk per cell:
// clip((mean(neighbor elevations) - center elevation) / 100, 0, 1).
// Cells in a failed elevation batch are left out of the result; cells with
// no neighbors score 0.
func (e *Estimator) Flood(ctx context.Context, cells []hexgrid.Cell) (map[hexgrid.Cell]float64, error) {
	out := make(map[hexgrid.Cell]float64, len(cells))

	for start := 0; start < len(cells); start += e.batch {
		end := min(start+e.batch, len(cells))
		batch := cells[start:end]

		byCell, err := e.batchElevations(ctx, batch)
		if err != nil {
			zap.L().Warn("flood: elevation batch failed, leaving cells unestimated",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		for _, c := range batch {
			z0 := byCell[c]
			neighbors, err := hexgrid.Neighbors(c)
			if err != nil {
				return nil, err
			}
			if len(neighbors) == 0 {
				out[c] = 0.0
				continue
			}
			var sum float64
			for _, n := range neighbors {
				sum += byCell[n]
			}
			diff := sum/float64(len(neighbors)) - z0
			out[c] = clip(diff/dropThreshold, 0, 1)
		}
	}

	zap.L().Info("flood risk estimated",
		zap.Int("cells", len(out)),
		zap.Int("requested", len(cells)),
	)
	return out, nil
}

// Landslide estimates slope-based landslide risk per cell: the maximum
// great-circle slope to any ring-1 neighbor, normalized against a 60°
// reference. Cells in a failed elevation batch are left out of the result.
func (e *Estimator) Landslide(ctx context.Context, cells []hexgrid.Cell) (map[hexgrid.Cell]LandslideScore, error) {
	out := make(map[hexgrid.Cell]LandslideScore, len(cells))

	for start := 0; start < len(cells); start += e.batch {
		end := min(start+e.batch, len(cells))
		batch := cells[start:end]

		byCell, err := e.batchElevations(ctx, batch)
		if err != nil {
			zap.L().Warn("landslide: elevation batch failed, leaving cells unestimated",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		for _, c := range batch {
			z0 := byCell[c]
			lat0, lon0, err := hexgrid.Center(c)
			if err != nil {
				return nil, err
			}
			neighbors, err := hexgrid.Neighbors(c)
			if err != nil {
				return nil, err
			}

			var maxSlope float64
			for _, n := range neighbors {
				lat1, lon1, err := hexgrid.Center(n)
				if err != nil {
					return nil, err
				}
				d := Haversine(lat0, lon0, lat1, lon1)
				if d <= 0 {
					continue
				}
				slope := math.Atan(math.Abs(byCell[n]-z0)/d) * 180 / math.Pi
				maxSlope = math.Max(maxSlope, slope)
			}

			out[c] = LandslideScore{
				MaxSlopeDeg: maxSlope,
				Risk:        math.Min(maxSlope/maxSlopeRef, 1.0),
			}
		}
	}

	zap.L().Info("landslide risk estimated",
		zap.Int("cells", len(out)),
		zap.Int("requested", len(cells)),
	)
	return out, nil
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat0, lon0, lat1, lon1 float64) float64 {
	rad := math.Pi / 180
	phi0 := lat0 * rad
	phi1 := lat1 * rad
	dPhi := phi1 - phi0
	dLambda := (lon1 - lon0) * rad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi0)*math.Cos(phi1)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
