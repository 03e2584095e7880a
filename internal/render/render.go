// Package render decorates aggregated tables with the geometry and colors a
// map layer needs: cell boundary rings and a per-cell fill derived from one
// indicator's value range.
package render

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/hexatlas/hexatlas/internal/hexgrid"
	"github.com/hexatlas/hexatlas/internal/model"
)

// Ramp endpoints for the linear min-max fill. Low values render blue-violet,
// high values render red-orange.
const (
	redLo, redHi     = 65, 220
	greenLo, greenHi = 105, 20
	blueLo, blueHi   = 225, 60
	fillAlpha        = 180
)

// fallbackColor is used when the indicator has no usable range (all values
// equal, or the cell's value is the missing-data marker).
func fallbackColor() *[4]uint8 { return &[4]uint8{0, 128, 0, 120} }

// Colorize fills each record's Color from the chosen indicator, scaling
// linearly between the indicator's minimum and maximum across the table.
// Records whose value is NaN get the fallback fill.
func Colorize(table *model.Table, indicator string) error {
	if !model.ValidIndicator(indicator) {
		return eris.Errorf("render: unknown indicator %q", indicator)
	}

	lo, hi, ok := valueRange(table, indicator)
	for i := range table.Records {
		v, has := table.Records[i].Values[indicator]
		if !has || math.IsNaN(v) || !ok {
			table.Records[i].Color = fallbackColor()
			continue
		}
		t := (v - lo) / (hi - lo)
		table.Records[i].Color = &[4]uint8{
			lerp(redLo, redHi, t),
			lerp(greenLo, greenHi, t),
			lerp(blueLo, blueHi, t),
			fillAlpha,
		}
	}
	return nil
}

// valueRange scans the table for the indicator's finite min and max. ok is
// false when no finite values exist or the range is degenerate.
func valueRange(table *model.Table, indicator string) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range table.Records {
		v, has := r.Values[indicator]
		if !has || math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, hi > lo
}

func lerp(a, b, t float64) uint8 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint8(math.Round(a + (b-a)*t))
}

// WithBoundaries fills each record's Boundary with its closed cell outline as
// [lon, lat] pairs.
func WithBoundaries(table *model.Table) error {
	for i := range table.Records {
		ring, err := hexgrid.Boundary(hexgrid.Cell(table.Records[i].Cell))
		if err != nil {
			return err
		}
		table.Records[i].Boundary = ring
	}
	return nil
}
