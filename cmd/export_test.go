package main

import (
	"bytes"
	"encoding/csv"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/hexatlas/hexatlas/internal/model"
)

func exportTable(t *testing.T) *model.Table {
	t.Helper()
	region, err := model.RegionByAbbr("NL")
	require.NoError(t, err)

	return &model.Table{
		Region:     region,
		Resolution: 6,
		Indicators: []string{model.IndHospitals, model.IndWindMaxOff},
		Records: []model.CellRecord{{
			Cell:  "8648e1d8ffffffff",
			HexID: "NL_001",
			Lat:   25.67,
			Lon:   -100.31,
			Values: map[string]float64{
				model.IndHospitals:  2,
				model.IndWindMaxOff: math.NaN(),
			},
			Display: map[string]string{
				model.IndHospitals:  "2.00",
				model.IndWindMaxOff: "N/A",
			},
		}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, exportTable(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"hex_id", "cell", "lat", "lon",
		"hospitals", "hospitals_disp",
		"W_MAX_OFF", "W_MAX_OFF_disp",
	}, rows[0])
	assert.Equal(t, "NL_001", rows[1][0])
	assert.Equal(t, "2.00", rows[1][5])
	assert.Equal(t, "N/A", rows[1][7])
}

func TestWriteXLSXUsesFoldedSheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, writeXLSX(path, exportTable(t)))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	// Sheet named after the region with diacritics folded away.
	assert.Equal(t, "Nuevo Leon", f.Sheets[0].Name)
	require.GreaterOrEqual(t, len(f.Sheets[0].Rows), 2)
	assert.Equal(t, "hex_id", f.Sheets[0].Rows[0].Cells[0].String())
	assert.Equal(t, "NL_001", f.Sheets[0].Rows[1].Cells[0].String())
}
