package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// FormatValue renders a raw indicator value the way the table displays it:
// two decimal places, or "N/A" when the value is the missing-data marker.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// CellRecord is one row of the aggregated table: a single hex cell with every
// selected indicator resolved to a value and a display string.
type CellRecord struct {
	Cell   string  `json:"cell"`
	HexID  string  `json:"hex_id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`

	// Values holds the raw numeric value per selected indicator. Missing
	// source data is defaulted to 0.0 at merge time; NaN marks "tried and
	// failed" for sources that distinguish the two.
	Values map[string]float64 `json:"values"`

	// Display holds the formatted string per selected indicator:
	// two decimal places, "N/A" for NaN.
	Display map[string]string `json:"display"`

	// Boundary is the cell outline as [lon, lat] pairs, populated on demand
	// for rendering consumers.
	Boundary [][2]float64 `json:"boundary,omitempty"`

	// Color is an RGBA fill derived from the chosen indicator's min-max
	// range, populated on demand for rendering consumers. Nil until a
	// colorize pass runs, and omitted from JSON in that state.
	Color *[4]uint8 `json:"color,omitempty"`
}

// MarshalJSON emits null for NaN values, which encoding/json would otherwise
// reject outright.
func (r CellRecord) MarshalJSON() ([]byte, error) {
	type alias CellRecord
	values := make(map[string]*float64, len(r.Values))
	for k, v := range r.Values {
		if math.IsNaN(v) {
			values[k] = nil
			continue
		}
		vv := v
		values[k] = &vv
	}
	return json.Marshal(struct {
		alias
		Values map[string]*float64 `json:"values"`
	}{alias(r), values})
}

// Table is the full aggregation result, one record per grid cell in canonical
// (sorted cell) order.
type Table struct {
	Region     Region       `json:"region"`
	Resolution int          `json:"resolution"`
	Indicators []string     `json:"indicators"`
	Records    []CellRecord `json:"records"`
}

// Find returns the record with the given display identifier (e.g. "NL_001").
func (t *Table) Find(hexID string) (CellRecord, bool) {
	for _, r := range t.Records {
		if r.HexID == hexID {
			return r, true
		}
	}
	return CellRecord{}, false
}
