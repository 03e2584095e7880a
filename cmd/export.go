package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/hexatlas/hexatlas/internal/model"
)

// exportHeader builds the column layout shared by the tabular writers: cell
// identity and position first, then one raw and one display column per
// indicator.
func exportHeader(table *model.Table) []string {
	header := []string{"hex_id", "cell", "lat", "lon"}
	for _, ind := range table.Indicators {
		header = append(header, ind, ind+"_disp")
	}
	return header
}

func exportRow(table *model.Table, rec model.CellRecord) []string {
	row := []string{
		rec.HexID,
		rec.Cell,
		strconv.FormatFloat(rec.Lat, 'f', 6, 64),
		strconv.FormatFloat(rec.Lon, 'f', 6, 64),
	}
	for _, ind := range table.Indicators {
		row = append(row, strconv.FormatFloat(rec.Values[ind], 'g', -1, 64), rec.Display[ind])
	}
	return row
}

func writeCSV(w io.Writer, table *model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader(table)); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, rec := range table.Records {
		if err := cw.Write(exportRow(table, rec)); err != nil {
			return eris.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "flush csv")
}

func writeJSON(w io.Writer, table *model.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(table); err != nil {
		return eris.Wrap(err, "encode json")
	}
	return nil
}

func writeXLSX(path string, table *model.Table) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(table.Region.FoldedName())
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range exportHeader(table) {
		hr.AddCell().SetString(h)
	}
	for _, rec := range table.Records {
		row := sheet.AddRow()
		for _, v := range exportRow(table, rec) {
			row.AddCell().SetString(v)
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrap(err, "save xlsx")
	}
	return nil
}
