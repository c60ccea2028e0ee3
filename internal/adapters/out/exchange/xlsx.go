package exchange

import (
	"io"

	"github.com/xuri/excelize/v2"

	"manifest/internal/core/domain/model/item"
)

// SheetName is the worksheet holding the manifest.
const SheetName = "Manifest"

// WriteXLSX writes a single-sheet workbook with the same columns as WriteCSV.
// Coordinates are numeric cells; everything else is text.
func WriteXLSX(w io.Writer, items []*item.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, it := range items {
		values := row(it)
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
		}
		if c := it.Coordinates(); c != nil {
			cells[10] = c.Lat()
			cells[11] = c.Lng()
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}
