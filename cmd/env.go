package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/aggregate"
	"github.com/hexatlas/hexatlas/internal/cache"
	"github.com/hexatlas/hexatlas/internal/httpx"
	"github.com/hexatlas/hexatlas/internal/indicator"
	"github.com/hexatlas/hexatlas/internal/provider/boundary"
	"github.com/hexatlas/hexatlas/internal/provider/elevation"
	"github.com/hexatlas/hexatlas/internal/provider/meteo"
	"github.com/hexatlas/hexatlas/internal/provider/overpass"
	"github.com/hexatlas/hexatlas/internal/provider/power"
	"github.com/hexatlas/hexatlas/internal/provider/raster"
	"github.com/hexatlas/hexatlas/internal/risk"
)

// shapefileDir, when set, reads region boundaries from local shapefiles
// instead of the remote GeoJSON source.
var shapefileDir string

// environment wires every provider, the cache and the aggregation engine from
// the loaded configuration.
type environment struct {
	Store    cache.Store
	Boundary boundary.Source
	Engine   *aggregate.Engine
}

func initEnvironment() (*environment, error) {
	var store cache.Store
	switch cfg.Cache.Driver {
	case "memory":
		store = cache.NewMemory()
	case "sqlite":
		s, err := cache.NewSQLite(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, eris.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}

	client := httpx.New(httpx.Options{
		UserAgent:    cfg.Providers.UserAgent,
		MaxRetries:   cfg.Providers.MaxRetries,
		RateLimiters: httpx.DefaultRateLimiters(),
	})

	var src boundary.Source
	if shapefileDir != "" {
		src = boundary.NewShapefileSource(shapefileDir)
	} else {
		src = boundary.NewHTTPSource(client, cfg.Providers.BoundaryBaseURL, store)
	}

	elev := elevation.New(client, cfg.Providers.ElevationBaseURL, cfg.Providers.ElevationTimeout)

	deps := &indicator.Deps{
		Boundary:    src,
		Power:       power.New(client, cfg.Providers.PowerBaseURL, cfg.Providers.PowerTimeout),
		Meteo:       meteo.New(client, cfg.Providers.MeteoBaseURL, cfg.Providers.MeteoTimeout),
		Overpass:    overpass.New(client, cfg.Providers.OverpassBaseURL, cfg.Providers.OverpassTimeout),
		Raster:      raster.NewFileProvider(client, cfg.Providers.PopulationURL, cfg.Cache.Dir),
		Risk:        risk.NewEstimator(elev),
		Cache:       store,
		CellWorkers: cfg.Workers.Cells,
	}

	engine := aggregate.New(src, indicator.NewRegistry(deps), store, cfg.Workers.Fetchers)

	return &environment{Store: store, Boundary: src, Engine: engine}, nil
}

func (e *environment) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("closing cache store", zap.Error(err))
	}
}
