// Package raster provides the population raster: a clipped 2-D numeric grid
// with a pixel-to-geographic transform and a nodata sentinel. The concrete
// implementation reads ESRI ASCII grids, downloading the source file once
// into the local data directory.
package raster

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hexatlas/hexatlas/internal/httpx"
)

// Grid is a 2-D value grid in row-major order, row 0 at the northern edge.
type Grid struct {
	Data   [][]float64
	NoData float64

	// Affine pixel-to-geographic transform: the center of pixel (row, col)
	// is at (OriginLon + (col+0.5)*CellSize, OriginLat - (row+0.5)*CellSize).
	OriginLon float64 // west edge
	OriginLat float64 // north edge
	CellSize  float64 // degrees per pixel
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return len(g.Data) }

// Cols returns the grid width.
func (g *Grid) Cols() int {
	if len(g.Data) == 0 {
		return 0
	}
	return len(g.Data[0])
}

// PixelCenter returns the geographic coordinate of a pixel's center.
func (g *Grid) PixelCenter(row, col int) (lat, lon float64) {
	lon = g.OriginLon + (float64(col)+0.5)*g.CellSize
	lat = g.OriginLat - (float64(row)+0.5)*g.CellSize
	return lat, lon
}

// Clip returns the sub-grid covering the geometry's bounding box. The
// transform is adjusted so pixel centers keep their geographic positions.
func (g *Grid) Clip(boundary orb.Geometry) *Grid {
	b := boundary.Bound()

	colMin := int((b.Min.Lon() - g.OriginLon) / g.CellSize)
	colMax := int((b.Max.Lon()-g.OriginLon)/g.CellSize) + 1
	rowMin := int((g.OriginLat - b.Max.Lat()) / g.CellSize)
	rowMax := int((g.OriginLat-b.Min.Lat())/g.CellSize) + 1

	colMin = max(colMin, 0)
	rowMin = max(rowMin, 0)
	colMax = min(colMax, g.Cols())
	rowMax = min(rowMax, g.Rows())
	if colMin >= colMax || rowMin >= rowMax {
		return &Grid{NoData: g.NoData, CellSize: g.CellSize, OriginLon: g.OriginLon, OriginLat: g.OriginLat}
	}

	data := make([][]float64, 0, rowMax-rowMin)
	for r := rowMin; r < rowMax; r++ {
		data = append(data, g.Data[r][colMin:colMax])
	}
	return &Grid{
		Data:      data,
		NoData:    g.NoData,
		OriginLon: g.OriginLon + float64(colMin)*g.CellSize,
		OriginLat: g.OriginLat - float64(rowMin)*g.CellSize,
		CellSize:  g.CellSize,
	}
}

// Provider returns the population grid clipped to a region boundary.
type Provider interface {
	Population(ctx context.Context, boundary orb.Geometry) (*Grid, error)
}

// FileProvider downloads the population raster once and serves clipped views
// of it.
type FileProvider struct {
	http      *httpx.Client
	sourceURL string
	dir       string
}

// NewFileProvider creates a provider that caches the raster under dir.
func NewFileProvider(http *httpx.Client, sourceURL, dir string) *FileProvider {
	return &FileProvider{http: http, sourceURL: sourceURL, dir: dir}
}

// Population loads the raster (downloading it on first use) and clips it to
// the boundary's bounding box.
func (p *FileProvider) Population(ctx context.Context, boundary orb.Geometry) (*Grid, error) {
	path := filepath.Join(p.dir, filepath.Base(p.sourceURL))
	if _, err := os.Stat(path); err != nil {
		if err := os.MkdirAll(p.dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "raster: create data dir")
		}
		start := time.Now()
		n, err := p.http.DownloadToFile(ctx, p.sourceURL, path)
		if err != nil {
			return nil, eris.Wrapf(err, "raster: download %s", p.sourceURL)
		}
		zap.L().Info("population raster downloaded",
			zap.String("path", path),
			zap.Int64("bytes", n),
			zap.Duration("took", time.Since(start)),
		)
	}

	grid, err := ParseASCIIGridFile(path)
	if err != nil {
		return nil, err
	}
	return grid.Clip(boundary), nil
}

// ParseASCIIGridFile reads an ESRI ASCII grid (.asc) from disk.
func ParseASCIIGridFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	g, err := ParseASCIIGrid(bufio.NewScanner(f))
	if err != nil {
		return nil, eris.Wrapf(err, "raster: parse %s", path)
	}
	return g, nil
}

// ParseASCIIGrid parses the ESRI ASCII grid format: a six-line header
// (ncols, nrows, xllcorner, yllcorner, cellsize, NODATA_value) followed by
// nrows lines of ncols whitespace-separated values, northernmost row first.
func ParseASCIIGrid(sc *bufio.Scanner) (*Grid, error) {
	sc.Buffer(make([]byte, 0, 1<<20), 1<<24)

	header := map[string]float64{}
	var rows [][]float64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		// Header lines are "name value" pairs with a non-numeric name.
		if len(fields) == 2 {
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				v, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, eris.Wrapf(err, "header value %q", line)
				}
				header[strings.ToLower(fields[0])] = v
				continue
			}
		}

		row := make([]float64, 0, len(fields))
		for _, fv := range fields {
			v, err := strconv.ParseFloat(fv, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "data value %q", fv)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "scan")
	}

	ncols, ok := header["ncols"]
	if !ok {
		return nil, eris.New("missing ncols header")
	}
	nrows, ok := header["nrows"]
	if !ok {
		return nil, eris.New("missing nrows header")
	}
	cellSize, ok := header["cellsize"]
	if !ok {
		return nil, eris.New("missing cellsize header")
	}
	xll, ok := header["xllcorner"]
	if !ok {
		return nil, eris.New("missing xllcorner header")
	}
	yll, ok := header["yllcorner"]
	if !ok {
		return nil, eris.New("missing yllcorner header")
	}
	noData := -9999.0
	if v, ok := header["nodata_value"]; ok {
		noData = v
	}

	if len(rows) != int(nrows) {
		return nil, eris.Errorf("expected %d rows, got %d", int(nrows), len(rows))
	}
	for i, row := range rows {
		if len(row) != int(ncols) {
			return nil, eris.Errorf("row %d: expected %d cols, got %d", i, int(ncols), len(row))
		}
	}

	return &Grid{
		Data:      rows,
		NoData:    noData,
		OriginLon: xll,
		OriginLat: yll + nrows*cellSize,
		CellSize:  cellSize,
	}, nil
}
