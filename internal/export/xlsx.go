// Package export renders booking records as spreadsheet files.
package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/qflow/internal/model"
)

// RecordsSheet is the name of the worksheet holding the records.
const RecordsSheet = "Records"

var recordHeaders = []string{"Day", "Province", "Program", "Sub", "Que"}

// WriteXLSX writes records as an XLSX workbook with a header row.
func WriteXLSX(w io.Writer, records []model.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// Rename the default sheet rather than leaving an empty one behind
	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range recordHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(RecordsSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{r.Date, r.Branch, r.Program, r.Sub, r.Que}
		if err := f.SetSheetRow(RecordsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(RecordsSheet, "A", "A", 12) // day
	_ = f.SetColWidth(RecordsSheet, "B", "B", 12) // branch
	_ = f.SetColWidth(RecordsSheet, "C", "D", 24) // program, sub
	_ = f.SetColWidth(RecordsSheet, "E", "E", 8)  // que

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	slog.Debug("Exported records", "rows", len(records))
	return nil
}
