// Package aggregate fans indicator fetchers out over a region's hex grid and
// merges their results into one row-per-cell table.
package aggregate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hexatlas/hexatlas/internal/cache"
	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/indicator"
	"github.com/hexatlas/hexatlas/internal/model"
	"github.com/hexatlas/hexatlas/internal/provider/boundary"
)

// DefaultWorkers bounds how many indicator fetchers run concurrently.
const DefaultWorkers = 6

// Request selects one aggregation pass.
type Request struct {
	Indicators     []string
	Region         model.Region
	Resolution     int
	HistoricalDate time.Time
	ForecastOffset int
}

// Engine builds aggregated cell tables.
type Engine struct {
	boundary boundary.Source
	registry *indicator.Registry
	store    cache.Store
	workers  int
}

// New creates an engine. workers <= 0 selects the default pool size.
func New(src boundary.Source, registry *indicator.Registry, store cache.Store, workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{boundary: src, registry: registry, store: store, workers: workers}
}

// Aggregate resolves the region grid, runs the fetchers the indicator
// selection needs, and merges their mappings into one table. The full result
// is cached by the request tuple; identical requests never re-fetch.
func (e *Engine) Aggregate(ctx context.Context, req Request) (*model.Table, error) {
	if len(req.Indicators) == 0 {
		return nil, eris.New("aggregate: no indicators selected")
	}
	for _, k := range req.Indicators {
		if !model.ValidIndicator(k) {
			return nil, eris.Errorf("aggregate: unknown indicator %q", k)
		}
	}
	if !hexgrid.ValidResolution(req.Resolution) {
		return nil, eris.Errorf("aggregate: resolution %d out of range", req.Resolution)
	}

	q := indicator.Query{
		Region:         req.Region,
		Resolution:     req.Resolution,
		HistoricalDate: req.HistoricalDate,
		ForecastOffset: req.ForecastOffset,
	}

	key := e.cacheKey(req, q)
	if table, ok := e.cachedTable(ctx, key); ok {
		zap.L().Info("aggregation served from cache",
			zap.String("region", req.Region.Abbr),
			zap.Int("resolution", req.Resolution),
		)
		return table, nil
	}

	// Boundary failure is fatal for the whole aggregation; no partial grid.
	geom, err := e.boundary.Resolve(ctx, req.Region)
	if err != nil {
		return nil, err
	}
	cells, err := hexgrid.FromGeometry(geom, req.Resolution)
	if err != nil {
		return nil, err
	}

	mappings, err := e.fanOut(ctx, q, req.Indicators)
	if err != nil {
		return nil, err
	}

	table, err := buildTable(req, cells, mappings)
	if err != nil {
		return nil, err
	}

	if err := e.storeTable(ctx, key, table); err != nil {
		return nil, err
	}
	return table, nil
}

// fanOut runs the selected fetchers on a bounded pool and folds their
// results as each completes. Fetchers own disjoint indicator keys, so the
// fold is commutative and completion order does not matter.
func (e *Engine) fanOut(ctx context.Context, q indicator.Query, selected []string) (map[string]map[hexgrid.Cell]float64, error) {
	fetchers := e.registry.Select(selected)

	mappings := make(map[string]map[hexgrid.Cell]float64)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, f := range fetchers {
		g.Go(func() error {
			start := time.Now()
			result, err := f.Fetch(gctx, q)
			if err != nil {
				return eris.Wrapf(err, "aggregate: fetcher %s", f.Name())
			}
			mu.Lock()
			for key, values := range result {
				mappings[key] = values
			}
			mu.Unlock()
			zap.L().Debug("fetcher complete",
				zap.String("fetcher", f.Name()),
				zap.Duration("took", time.Since(start)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mappings, nil
}

// buildTable assembles the final row-per-cell table: default 0.0 for absent
// indicator/cell pairs, formatted display strings, derived lat/lon and
// sequential display identifiers, and non-negative integer coercion for
// infrastructure counts.
func buildTable(req Request, cells []hexgrid.Cell, mappings map[string]map[hexgrid.Cell]float64) (*model.Table, error) {
	records := make([]model.CellRecord, 0, len(cells))

	for i, c := range cells {
		lat, lon, err := hexgrid.Center(c)
		if err != nil {
			return nil, err
		}

		rec := model.CellRecord{
			Cell:    string(c),
			HexID:   fmt.Sprintf("%s_%03d", req.Region.Abbr, i+1),
			Lat:     lat,
			Lon:     lon,
			Values:  make(map[string]float64, len(req.Indicators)),
			Display: make(map[string]string, len(req.Indicators)),
		}

		for _, ind := range req.Indicators {
			v := 0.0
			if m, ok := mappings[ind]; ok {
				if mv, ok := m[c]; ok {
					v = mv
				}
			}
			if model.IsInfrastructure(ind) {
				n := int(v)
				if n < 0 {
					n = 0
				}
				v = float64(n)
			}
			rec.Values[ind] = v
			rec.Display[ind] = model.FormatValue(v)
		}

		records = append(records, rec)
	}

	inds := make([]string, len(req.Indicators))
	copy(inds, req.Indicators)

	return &model.Table{
		Region:     req.Region,
		Resolution: req.Resolution,
		Indicators: inds,
		Records:    records,
	}, nil
}

// cacheKey derives the structured cache key for a request. The indicator
// selection is sorted so selection order does not fragment the cache, and
// the effective (clamped) dates are used so "no date" and "yesterday" hit
// the same entry.
func (e *Engine) cacheKey(req Request, q indicator.Query) cache.Key {
	sorted := make([]string, len(req.Indicators))
	copy(sorted, req.Indicators)
	sort.Strings(sorted)

	h := sha256.Sum256([]byte(strings.Join(sorted, ",") + "|" +
		q.EffectiveHistoricalDate().Format("20060102") + "|" +
		q.ForecastDate().Format("20060102")))

	return cache.Key{
		Region:     req.Region.Code,
		Category:   "aggregate:" + hex.EncodeToString(h[:8]),
		Resolution: req.Resolution,
	}
}

func (e *Engine) cachedTable(ctx context.Context, key cache.Key) (*model.Table, bool) {
	raw, ok, err := e.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var table model.Table
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&table); err != nil {
		zap.L().Warn("aggregate: discarding corrupt cached table",
			zap.String("key", key.String()),
			zap.Error(err),
		)
		return nil, false
	}
	return &table, true
}

func (e *Engine) storeTable(ctx context.Context, key cache.Key, table *model.Table) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(table); err != nil {
		return eris.Wrap(err, "aggregate: encode table")
	}
	return e.store.Put(ctx, key, buf.Bytes())
}
