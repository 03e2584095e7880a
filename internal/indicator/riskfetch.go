package indicator

import (
	"context"

	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/model"
)

// FloodRisk estimates local-depression flood risk for every grid cell.
type FloodRisk struct {
	deps *Deps
}

// NewFloodRisk creates the flood risk fetcher.
func NewFloodRisk(deps *Deps) *FloodRisk { return &FloodRisk{deps: deps} }

func (f *FloodRisk) Name() string { return "flood_risk" }

func (f *FloodRisk) Keys() []string { return []string{model.IndFloodRisk} }

func (f *FloodRisk) Fetch(ctx context.Context, q Query) (Result, error) {
	cells, err := f.deps.grid(ctx, q)
	if err != nil {
		return nil, err
	}
	scores, err := f.deps.Risk.Flood(ctx, cells)
	if err != nil {
		return nil, err
	}
	return Result{model.IndFloodRisk: scores}, nil
}

// LandslideRisk estimates slope-based landslide risk for every grid cell.
type LandslideRisk struct {
	deps *Deps
}

// NewLandslideRisk creates the landslide risk fetcher.
func NewLandslideRisk(deps *Deps) *LandslideRisk { return &LandslideRisk{deps: deps} }

func (f *LandslideRisk) Name() string { return "landslide_risk" }

func (f *LandslideRisk) Keys() []string { return []string{model.IndLandslide} }

func (f *LandslideRisk) Fetch(ctx context.Context, q Query) (Result, error) {
	cells, err := f.deps.grid(ctx, q)
	if err != nil {
		return nil, err
	}
	scores, err := f.deps.Risk.Landslide(ctx, cells)
	if err != nil {
		return nil, err
	}

	norm := make(map[hexgrid.Cell]float64, len(scores))
	for c, s := range scores {
		norm[c] = s.Risk
	}
	return Result{model.IndLandslide: norm}, nil
}
