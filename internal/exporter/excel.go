package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter exports aggregate tables as a single workbook, one sheet per
// table
type ExcelWriter struct {
	exportDir string
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(exportDir string) *ExcelWriter {
	return &ExcelWriter{exportDir: exportDir}
}

// WriteWorkbook writes all tables into fileName under the export directory.
// Sheet names come from the table names, truncated to Excel's 31-char limit.
func (w *ExcelWriter) WriteWorkbook(fileName string, tables []Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to export")
	}

	fullPath := fileName
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(w.exportDir, fileName)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		sheet := sheetName(table.Name)
		if i == 0 {
			// Rename the default sheet instead of leaving it empty
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
			}
		}

		if err := writeSheet(f, sheet, table); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", sheet, err)
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Wrote Excel workbook",
		slog.String("path", fullPath),
		slog.Int("sheets", len(tables)))

	return nil
}

// writeSheet fills one sheet with a header row and the table records
func writeSheet(f *excelize.File, sheet string, table Table) error {
	headers := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, record := range table.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

// sheetName truncates table names to Excel's sheet-name limit
func sheetName(name string) string {
	const maxSheetName = 31
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
