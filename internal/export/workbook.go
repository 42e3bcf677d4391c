package export

import (
	"fmt"
	"io"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	reportSheet = "Report"
	dataSheet   = "Data"
	headerRow   = 3
)

// WriteWorkbook writes the report as an XLSX workbook. The first sheet mirrors the rendered
// table; the second holds the numeric series so amounts can be summed in a spreadsheet.
func WriteWorkbook(w io.Writer, report *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellValue(reportSheet, "A1", report.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(reportSheet, "A1", "A1", titleStyle); err != nil {
		return err
	}

	if err := writeRow(f, reportSheet, headerRow, report.Headers); err != nil {
		return err
	}
	if len(report.Headers) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(report.Headers), headerRow)
		if err := f.SetCellStyle(reportSheet, first, last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(report.Headers))
		if err := f.SetColWidth(reportSheet, "A", lastCol, 18); err != nil {
			return err
		}
	}

	for i, row := range report.Rows {
		if err := writeRow(f, reportSheet, headerRow+1+i, row); err != nil {
			return err
		}
	}

	if len(report.Series) > 0 {
		if err := writeSeries(f, report.Series, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func writeSeries(f *excelize.File, series []domain.ReportPoint, headerStyle int) error {
	if _, err := f.NewSheet(dataSheet); err != nil {
		return fmt.Errorf("failed to create data sheet: %w", err)
	}
	if err := writeRow(f, dataSheet, 1, []string{"Label", "Amount"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(dataSheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	for i, p := range series {
		row := i + 2
		if err := f.SetCellValue(dataSheet, fmt.Sprintf("A%d", row), p.Label); err != nil {
			return err
		}
		if err := f.SetCellValue(dataSheet, fmt.Sprintf("B%d", row), p.Value.InexactFloat64()); err != nil {
			return err
		}
	}
	return f.SetColWidth(dataSheet, "A", "B", 18)
}
