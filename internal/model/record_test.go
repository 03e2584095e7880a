package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "12.35", FormatValue(12.3456))
	assert.Equal(t, "0.00", FormatValue(0))
	assert.Equal(t, "-3.10", FormatValue(-3.1))
	assert.Equal(t, "N/A", FormatValue(math.NaN()))
}

func TestCellRecordMarshalNaN(t *testing.T) {
	rec := CellRecord{
		Cell:  "8648e1d8ffffffff",
		HexID: "NL_001",
		Values: map[string]float64{
			"W_MAX_OFF": math.NaN(),
			"T2M_MAX":   31.5,
		},
		Display: map[string]string{
			"W_MAX_OFF": "N/A",
			"T2M_MAX":   "31.50",
		},
	}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded struct {
		Values map[string]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded.Values["W_MAX_OFF"])
	require.NotNil(t, decoded.Values["T2M_MAX"])
	assert.InDelta(t, 31.5, *decoded.Values["T2M_MAX"], 1e-9)
}

func TestCellRecordMarshalOmitsUnsetColor(t *testing.T) {
	rec := CellRecord{Cell: "8648e1d8ffffffff", HexID: "NL_001"}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"color"`)

	rec.Color = &[4]uint8{65, 105, 225, 180}
	raw, err = json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"color"`)
}

func TestTableFind(t *testing.T) {
	table := Table{Records: []CellRecord{
		{HexID: "NL_001"},
		{HexID: "NL_002"},
	}}

	rec, ok := table.Find("NL_002")
	assert.True(t, ok)
	assert.Equal(t, "NL_002", rec.HexID)

	_, ok = table.Find("NL_999")
	assert.False(t, ok)
}
