package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"oppmap-go/internal/model"
)

const sheetName = "Opportunities"

// Score color bands for the spreadsheet export: above 8 green, 6 and up
// yellow, everything else red.
const (
	fillHigh   = "C6F5D3"
	fillMedium = "FFF3B3"
	fillLow    = "F8D3D3"
)

// XLSX writes the records as a single-sheet workbook with a bold header
// row and the Score column color-coded by priority band.
func XLSX(w io.Writer, records []model.Opportunity) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, col := range model.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("resolving header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("styling header: %w", err)
		}
	}

	fills := map[string]int{}
	for _, color := range []string{fillHigh, fillMedium, fillLow} {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return fmt.Errorf("creating fill style: %w", err)
		}
		fills[color] = style
	}

	scoreCol := columnIndex(model.ColScore) + 1

	for i, rec := range records {
		row := i + 2
		values := []any{
			rec.ID, rec.UUID, rec.Opportunity, rec.RelatedTo, rec.Area,
			string(rec.Type), rec.Topic, rec.Impact, rec.Complexity,
			rec.Score, string(rec.Status), rec.Created, rec.Modified,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return fmt.Errorf("resolving cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
		}

		scoreCell, err := excelize.CoordinatesToCellName(scoreCol, row)
		if err != nil {
			return fmt.Errorf("resolving score cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, scoreCell, scoreCell, fills[scoreFill(rec.Score)]); err != nil {
			return fmt.Errorf("styling score cell: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "C", "C", 40); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "L", "M", 18); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("exporting xlsx: %w", err)
	}
	return nil
}

func scoreFill(score float64) string {
	switch {
	case score > 8:
		return fillHigh
	case score >= 6:
		return fillMedium
	default:
		return fillLow
	}
}

func columnIndex(name string) int {
	for i, col := range model.Columns {
		if col == name {
			return i
		}
	}
	return -1
}
