package indicator

import (
	"context"

	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/model"
)

// Population accumulates rasterized population counts into the cells
// containing each pixel center. Nodata and non-positive pixels are skipped;
// in-grid cells with no raster coverage are reported with population 0, not
// omitted.
type Population struct {
	deps *Deps
}

// NewPopulation creates the population fetcher.
func NewPopulation(deps *Deps) *Population { return &Population{deps: deps} }

func (f *Population) Name() string { return "population" }

func (f *Population) Keys() []string { return []string{model.IndPopulation} }

func (f *Population) Fetch(ctx context.Context, q Query) (Result, error) {
	geom, err := f.deps.Boundary.Resolve(ctx, q.Region)
	if err != nil {
		return nil, err
	}
	cells, err := hexgrid.FromGeometry(geom, q.Resolution)
	if err != nil {
		return nil, err
	}

	grid, err := f.deps.Raster.Population(ctx, geom)
	if err != nil {
		return nil, err
	}

	totals := make(map[hexgrid.Cell]float64, len(cells))
	for _, c := range cells {
		totals[c] = 0
	}

	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			v := grid.Data[row][col]
			if v == grid.NoData || v <= 0 {
				continue
			}
			lat, lon := grid.PixelCenter(row, col)
			c, err := hexgrid.FromLatLng(lat, lon, q.Resolution)
			if err != nil {
				continue
			}
			if _, ok := totals[c]; ok {
				totals[c] += float64(int(v))
			}
		}
	}

	zap.L().Info("population accumulated",
		zap.String("region", q.Region.Abbr),
		zap.Int("grid", len(cells)),
		zap.Int("raster_rows", grid.Rows()),
		zap.Int("raster_cols", grid.Cols()),
	)
	return Result{model.IndPopulation: totals}, nil
}
