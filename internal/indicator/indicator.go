// Package indicator maps hex-cell grids to per-source indicator values. Each
// fetcher independently resolves the region boundary, regenerates the grid,
// and performs its remote lookups; grid generation is cheap relative to
// network I/O, so the redundancy is acceptable.
package indicator

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hexatlas/hexatlas/internal/cache"
	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/model"
	"github.com/hexatlas/hexatlas/internal/provider/boundary"
	"github.com/hexatlas/hexatlas/internal/provider/meteo"
	"github.com/hexatlas/hexatlas/internal/provider/overpass"
	"github.com/hexatlas/hexatlas/internal/provider/power"
	"github.com/hexatlas/hexatlas/internal/provider/raster"
	"github.com/hexatlas/hexatlas/internal/risk"
)

// clock is a package-level time source so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// MaxForecastOffset bounds how far forward forecast indicators may look.
const MaxForecastOffset = 30

// Query selects what one fetcher should resolve.
type Query struct {
	Region     model.Region
	Resolution int

	// HistoricalDate is the observation date for historical sources. The
	// zero value means "yesterday"; today and future dates are clamped to
	// yesterday.
	HistoricalDate time.Time

	// ForecastOffset is the number of days forward from today for forecast
	// sources, independent of HistoricalDate. Clamped to [0, 30].
	ForecastOffset int
}

// HistoricalDate returns the effective observation date for the query.
func (q Query) EffectiveHistoricalDate() time.Time {
	today := truncateDay(clock.Now().UTC())
	yesterday := today.AddDate(0, 0, -1)
	if q.HistoricalDate.IsZero() {
		return yesterday
	}
	d := truncateDay(q.HistoricalDate.UTC())
	if !d.Before(today) {
		return yesterday
	}
	return d
}

// ForecastDate returns today plus the clamped forecast offset.
func (q Query) ForecastDate() time.Time {
	off := q.ForecastOffset
	if off < 0 {
		off = 0
	}
	if off > MaxForecastOffset {
		off = MaxForecastOffset
	}
	return truncateDay(clock.Now().UTC()).AddDate(0, 0, off)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Result maps indicator key to its cell-keyed values. A fetcher owns a fixed,
// disjoint set of indicator keys, which is what makes the engine's merge
// commutative.
type Result map[string]map[hexgrid.Cell]float64

// Fetcher resolves one data source into indicator mappings.
type Fetcher interface {
	// Name identifies the fetcher in logs.
	Name() string

	// Keys lists the indicator keys this fetcher produces.
	Keys() []string

	// Fetch maps the region's hex grid to per-cell values. Per-cell lookup
	// failures are recovered locally (the cell is omitted, or marked NaN
	// for sources that distinguish "tried and failed"); only boundary
	// resolution and similar whole-source problems return an error.
	Fetch(ctx context.Context, q Query) (Result, error)
}

// Deps carries the collaborators fetchers are built from.
type Deps struct {
	Boundary    boundary.Source
	Power       *power.Client
	Meteo       *meteo.Client
	Overpass    overpass.Provider
	Raster      raster.Provider
	Risk        *risk.Estimator
	Cache       cache.Store
	CellWorkers int // per-cell lookup pool size inside one fetcher
}

func (d *Deps) cellWorkers() int {
	if d.CellWorkers <= 0 {
		return 8
	}
	return d.CellWorkers
}

// grid resolves the region boundary and generates its sorted cell set.
func (d *Deps) grid(ctx context.Context, q Query) ([]hexgrid.Cell, error) {
	geom, err := d.Boundary.Resolve(ctx, q.Region)
	if err != nil {
		return nil, err
	}
	return hexgrid.FromGeometry(geom, q.Resolution)
}
