package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/herdview/internal/domain/models"
)

const defaultSheet = "Sheet1"

// ContentTypeXLSX is the MIME type of the workbook written by WriteXLSX.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes the table's records as a single-sheet workbook: a header
// row with the column names followed by one row per record. Engine values are
// kept as-is so numbers stay numeric.
func WriteXLSX(w io.Writer, sheet string, table *models.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range table.Records {
		values := make([]interface{}, len(rec))
		for j, field := range rec {
			values[j] = field.Value
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("locate row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
