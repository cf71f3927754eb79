// Package export renders weekly recaps as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"semainier/internal/recap"
)

// WeekReport is everything needed to render one shop week.
type WeekReport struct {
	Shop      string
	WeekStart string
	// Dates are the seven calendar days of the week, in order.
	Dates []string
	// Days maps each date to its team rows, already in roster order.
	Days map[string][]recap.TeamRow
	// Totals holds one weekly recap per employee, in roster order.
	Totals []recap.Week
}

var dayHeader = []string{"Employee", "Arrival", "Exit 1", "Return 1", "Exit 2", "Return 2", "Departure", "Hours"}

// BuildWorkbook renders the report: one sheet per day plus a totals sheet.
func BuildWorkbook(report WeekReport) (*excelize.File, error) {
	w := newSheetWriter()

	for _, date := range report.Dates {
		if err := w.addSheet(date); err != nil {
			return nil, err
		}
		if err := w.writeHeader(dayHeader); err != nil {
			return nil, err
		}
		for _, row := range report.Days[date] {
			d := row.Day
			cells := []interface{}{
				row.Employee, d.Arrival, d.Exit1, d.Return1, d.Exit2, d.Return2,
				d.Departure, recap.FormatHours(d.HoursWorked),
			}
			if err := w.writeRow(cells); err != nil {
				return nil, err
			}
		}
	}

	if err := w.addSheet("Week total"); err != nil {
		return nil, err
	}
	if err := w.writeHeader([]string{"Employee", "Hours"}); err != nil {
		return nil, err
	}
	for _, week := range report.Totals {
		if err := w.writeRow([]interface{}{week.Employee, recap.FormatHours(week.TotalHours)}); err != nil {
			return nil, err
		}
	}

	return w.file, nil
}

// WriteWeek renders the report and writes the workbook to wr.
func WriteWeek(report WeekReport, wr io.Writer) error {
	file, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	return file.Write(wr)
}

// sheetWriter keeps a cursor per sheet so rows append sequentially.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

func (w *sheetWriter) addSheet(name string) error {
	// Excel caps sheet names at 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		// Rename the default sheet instead of leaving it dangling.
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

func (w *sheetWriter) writeHeader(columns []string) error {
	row := make([]interface{}, len(columns))
	for i, col := range columns {
		row[i] = col
	}
	headerRow := w.currentRow
	if err := w.writeRow(row); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, headerRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}
	return nil
}

func (w *sheetWriter) writeRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}
