package indicator

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/model"
	"github.com/hexatlas/hexatlas/internal/provider/meteo"
)

// windScale converts Open-Meteo wind speeds to the m/s scale the historical
// source reports.
const windScale = 10.0

// WindForecast fetches forecast wind statistics from Open-Meteo for the
// offset target date. Failed cells are inserted as NaN triples rather than
// omitted, so the table can distinguish "tried and failed" from a plain
// missing source; the formatter renders them as "N/A".
type WindForecast struct {
	deps *Deps
}

// NewWindForecast creates the forecast wind fetcher.
func NewWindForecast(deps *Deps) *WindForecast { return &WindForecast{deps: deps} }

func (f *WindForecast) Name() string { return "wind_forecast" }

func (f *WindForecast) Keys() []string {
	return []string{model.IndWindMeanOff, model.IndWindMaxOff, model.IndWindMinOff}
}

func (f *WindForecast) Fetch(ctx context.Context, q Query) (Result, error) {
	cells, err := f.deps.grid(ctx, q)
	if err != nil {
		return nil, err
	}
	date := q.ForecastDate()

	means := make(map[hexgrid.Cell]float64, len(cells))
	maxes := make(map[hexgrid.Cell]float64, len(cells))
	mins := make(map[hexgrid.Cell]float64, len(cells))
	var mu sync.Mutex
	var fetched int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.deps.cellWorkers())
	for _, c := range cells {
		g.Go(func() error {
			mean, wmax, wmin := math.NaN(), math.NaN(), math.NaN()
			ok := false

			lat, lon, err := hexgrid.Center(c)
			if err == nil {
				data, ferr := f.deps.Meteo.DailyForecast(gctx, lat, lon, date,
					[]string{meteo.VarWindMean, meteo.VarWindMax, meteo.VarWindMin})
				if ferr == nil {
					m, okMean := data[meteo.VarWindMean]
					x, okMax := data[meteo.VarWindMax]
					n, okMin := data[meteo.VarWindMin]
					if okMean && okMax && okMin {
						mean, wmax, wmin = m/windScale, x/windScale, n/windScale
						ok = true
					}
				} else {
					zap.L().Warn("wind forecast: cell lookup failed",
						zap.String("cell", string(c)),
						zap.Error(ferr),
					)
				}
			}

			mu.Lock()
			means[c] = mean
			maxes[c] = wmax
			mins[c] = wmin
			if ok {
				fetched++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("forecast wind fetched",
		zap.String("region", q.Region.Abbr),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("cells", fetched),
		zap.Int("grid", len(cells)),
	)
	return Result{
		model.IndWindMeanOff: means,
		model.IndWindMaxOff:  maxes,
		model.IndWindMinOff:  mins,
	}, nil
}

// PrecipHistorical fetches the previous day's (or a given historical date's)
// precipitation sum from Open-Meteo. Cells with missing, NaN, or negative
// values are omitted.
type PrecipHistorical struct {
	deps *Deps
}

// NewPrecipHistorical creates the historical precipitation fetcher.
func NewPrecipHistorical(deps *Deps) *PrecipHistorical { return &PrecipHistorical{deps: deps} }

func (f *PrecipHistorical) Name() string { return "precip_historical" }

func (f *PrecipHistorical) Keys() []string { return []string{model.IndPrecipHist} }

func (f *PrecipHistorical) Fetch(ctx context.Context, q Query) (Result, error) {
	cells, err := f.deps.grid(ctx, q)
	if err != nil {
		return nil, err
	}
	date := q.EffectiveHistoricalDate()

	values := make(map[hexgrid.Cell]float64, len(cells))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.deps.cellWorkers())
	for _, c := range cells {
		g.Go(func() error {
			lat, lon, err := hexgrid.Center(c)
			if err != nil {
				return err
			}
			data, err := f.deps.Meteo.DailyForecast(gctx, lat, lon, date, []string{meteo.VarPrecipSum})
			if err != nil {
				zap.L().Warn("precip: cell lookup failed",
					zap.String("cell", string(c)),
					zap.Error(err),
				)
				return nil
			}
			v, ok := data[meteo.VarPrecipSum]
			if !ok || math.IsNaN(v) || v < 0 {
				return nil
			}
			mu.Lock()
			values[c] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("historical precipitation fetched",
		zap.String("region", q.Region.Abbr),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("cells", len(values)),
		zap.Int("grid", len(cells)),
	)
	return Result{model.IndPrecipHist: values}, nil
}

// PrecipForecast fetches the offset target date's precipitation sum from
// Open-Meteo. Failed cells default to 0.0 rather than being omitted.
type PrecipForecast struct {
	deps *Deps
}

// NewPrecipForecast creates the forecast precipitation fetcher.
func NewPrecipForecast(deps *Deps) *PrecipForecast { return &PrecipForecast{deps: deps} }

func (f *PrecipForecast) Name() string { return "precip_forecast" }

func (f *PrecipForecast) Keys() []string { return []string{model.IndPrecip} }

func (f *PrecipForecast) Fetch(ctx context.Context, q Query) (Result, error) {
	cells, err := f.deps.grid(ctx, q)
	if err != nil {
		return nil, err
	}
	date := q.ForecastDate()

	values := make(map[hexgrid.Cell]float64, len(cells))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.deps.cellWorkers())
	for _, c := range cells {
		g.Go(func() error {
			var v float64
			lat, lon, err := hexgrid.Center(c)
			if err == nil {
				data, ferr := f.deps.Meteo.DailyForecast(gctx, lat, lon, date, []string{meteo.VarPrecipSum})
				if ferr != nil {
					zap.L().Warn("precip forecast: cell lookup failed",
						zap.String("cell", string(c)),
						zap.Error(ferr),
					)
				} else if pv, ok := data[meteo.VarPrecipSum]; ok {
					v = pv
				}
			}
			mu.Lock()
			values[c] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("forecast precipitation fetched",
		zap.String("region", q.Region.Abbr),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("cells", len(values)),
	)
	return Result{model.IndPrecip: values}, nil
}
