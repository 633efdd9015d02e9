package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const gridSheet = "Sizing Grid"

// WriteXLSX saves g as a single-sheet workbook. Numeric columns are
// written as numbers so they stay sortable in a spreadsheet.
func WriteXLSX(path string, g Grid) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), gridSheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F2937"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s  %s %.2f", g.Symbol, g.AccountCurrency, g.AccountSize)
	if err := fx.SetCellValue(gridSheet, "A1", title); err != nil {
		return err
	}

	records := g.Records()
	for i, rec := range records {
		rowNum := i + 3
		for j, val := range rec {
			cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
			if err != nil {
				return err
			}
			var v any = val
			if i > 0 {
				if n, err := strconv.ParseFloat(val, 64); err == nil {
					v = n
				}
			}
			if err := fx.SetCellValue(gridSheet, cell, v); err != nil {
				return err
			}
		}
	}

	last, err := excelize.CoordinatesToCellName(len(Header()), 3)
	if err != nil {
		return err
	}
	if err := fx.SetCellStyle(gridSheet, "A3", last, headerStyle); err != nil {
		return err
	}

	if err := fx.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
