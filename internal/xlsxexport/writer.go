// Package xlsxexport renders merged records as an Excel workbook, mirroring
// the CSV export column layout.
package xlsxexport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"meibo/internal/csvexport"
	"meibo/internal/domain"
)

const sheetName = "名簿"

// Row pairs a merged record with its quality verdict for export.
type Row struct {
	Record  *domain.MergedRecord
	Quality domain.QualityInfo
}

// Write renders the records into a single-sheet workbook and writes it to w.
// Columns match the CSV export: 判定, 照合率, then the schema fields in order.
func Write(w io.Writer, schema *domain.FieldSchema, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName(f.GetSheetName(0), sheetName)

	header := make([]interface{}, 0, schema.Len()+2)
	header = append(header, "判定", "照合率")
	for _, field := range schema.Fields() {
		header = append(header, csvexport.FieldLabel(field))
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	for i, row := range rows {
		cells := make([]interface{}, 0, schema.Len()+2)
		cells = append(cells,
			csvexport.QualityLabel(row.Quality.Label),
			strconv.Itoa(row.Quality.Pct)+"%",
		)
		for _, field := range schema.Fields() {
			cells = append(cells, row.Record.Fields[field])
		}
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("setting row %d: %w", rowNum, err)
	}
	return nil
}
