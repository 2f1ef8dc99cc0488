package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/octobees/leadscout/internal/entity"
)

const sheetName = "Leads"

// WriteXLSX writes the leads as a single styled sheet using the CSV column order.
func WriteXLSX(path string, leads []entity.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, header := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for r, lead := range leads {
		row := r + 2
		values := []any{
			lead.Name,
			deref(lead.Phone),
			deref(lead.Email),
			deref(lead.Address),
			deref(lead.Website),
			string(lead.Verdict.Status),
			lead.Verdict.Reason,
			mobileCell(lead.Verdict.MobileResponsive),
			floatCell(lead.Rating),
			intCell(lead.ReviewCount),
			lead.Source.Label(),
			lead.Score,
			string(lead.Hotness),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range CSVHeader {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}
	f.SetActiveSheet(index)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("encode xlsx: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}

func mobileCell(v *bool) any {
	if v == nil {
		return ""
	}
	return *v
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
