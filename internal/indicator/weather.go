package indicator

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/model"
	"github.com/hexatlas/hexatlas/internal/provider/power"
)

// Temperature fetches historical daily temperature extremes from NASA POWER,
// one point lookup per cell center.
type Temperature struct {
	deps *Deps
}

// NewTemperature creates the temperature fetcher.
func NewTemperature(deps *Deps) *Temperature { return &Temperature{deps: deps} }

func (f *Temperature) Name() string { return "temperature" }

func (f *Temperature) Keys() []string { return []string{model.IndTempMax, model.IndTempMin} }

func (f *Temperature) Fetch(ctx context.Context, q Query) (Result, error) {
	cells, err := f.deps.grid(ctx, q)
	if err != nil {
		return nil, err
	}
	date := q.EffectiveHistoricalDate()

	maxes := make(map[hexgrid.Cell]float64, len(cells))
	mins := make(map[hexgrid.Cell]float64, len(cells))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.deps.cellWorkers())
	for _, c := range cells {
		g.Go(func() error {
			lat, lon, err := hexgrid.Center(c)
			if err != nil {
				return err
			}
			data, err := f.deps.Power.Daily(gctx, lat, lon, date,
				[]string{power.ParamTempMean, power.ParamTempMax, power.ParamTempMin})
			if err != nil {
				zap.L().Warn("temperature: cell lookup failed",
					zap.String("cell", string(c)),
					zap.Error(err),
				)
				return nil
			}
			tmax, okMax := data[power.ParamTempMax]
			tmin, okMin := data[power.ParamTempMin]
			if !okMax || !okMin {
				return nil
			}
			mu.Lock()
			maxes[c] = tmax
			mins[c] = tmin
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("temperature fetched",
		zap.String("region", q.Region.Abbr),
		zap.Int("cells", len(maxes)),
		zap.Int("grid", len(cells)),
	)
	return Result{model.IndTempMax: maxes, model.IndTempMin: mins}, nil
}

// WindHistorical fetches historical daily wind statistics from NASA POWER.
type WindHistorical struct {
	deps *Deps
}

// NewWindHistorical creates the historical wind fetcher.
func NewWindHistorical(deps *Deps) *WindHistorical { return &WindHistorical{deps: deps} }

func (f *WindHistorical) Name() string { return "wind_historical" }

func (f *WindHistorical) Keys() []string {
	return []string{model.IndWindMean, model.IndWindMax, model.IndWindMin}
}

func (f *WindHistorical) Fetch(ctx context.Context, q Query) (Result, error) {
	cells, err := f.deps.grid(ctx, q)
	if err != nil {
		return nil, err
	}
	date := q.EffectiveHistoricalDate()

	means := make(map[hexgrid.Cell]float64, len(cells))
	maxes := make(map[hexgrid.Cell]float64, len(cells))
	mins := make(map[hexgrid.Cell]float64, len(cells))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.deps.cellWorkers())
	for _, c := range cells {
		g.Go(func() error {
			lat, lon, err := hexgrid.Center(c)
			if err != nil {
				return err
			}
			data, err := f.deps.Power.Daily(gctx, lat, lon, date,
				[]string{power.ParamWindMean, power.ParamWindMax, power.ParamWindMin})
			if err != nil {
				zap.L().Warn("wind: cell lookup failed",
					zap.String("cell", string(c)),
					zap.Error(err),
				)
				return nil
			}
			mean, okMean := data[power.ParamWindMean]
			wmax, okMax := data[power.ParamWindMax]
			wmin, okMin := data[power.ParamWindMin]
			if !okMean || !okMax || !okMin {
				return nil
			}
			mu.Lock()
			means[c] = mean
			maxes[c] = wmax
			mins[c] = wmin
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("historical wind fetched",
		zap.String("region", q.Region.Abbr),
		zap.Int("cells", len(means)),
		zap.Int("grid", len(cells)),
	)
	return Result{
		model.IndWindMean: means,
		model.IndWindMax:  maxes,
		model.IndWindMin:  mins,
	}, nil
}
