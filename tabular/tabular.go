// Package tabular provides a minimal rows/columns table read from and
// written to XLSX workbooks.
//
// Only the first sheet is consumed; the first row is treated as the header.
package tabular

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ContentType is the media type used when uploading XLSX workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Table is an in-memory spreadsheet table. Rows are padded to the header
// width so every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows in the table.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Cell returns the value at the given row for the named column.
// The second return value is false when the column does not exist.
func (t *Table) Cell(row int, column string) (string, bool) {
	for i, c := range t.Columns {
		if c == column {
			if row < 0 || row >= len(t.Rows) {
				return "", false
			}
			return t.Rows[row][i], true
		}
	}
	return "", false
}

// ReadWorkbook parses the first sheet of an XLSX workbook.
// The first row becomes the column header; remaining rows become data rows.
func ReadWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("tabular: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("tabular: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("tabular: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	table := &Table{Columns: rows[0]}
	width := len(table.Columns)

	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		// excelize trims trailing empty cells, pad back to the header width
		padded := make([]string, width)
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}

	return table, nil
}

// WriteWorkbook emits the table as a single-sheet XLSX workbook.
func (t *Table) WriteWorkbook(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("tabular: write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("tabular: cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("tabular: set row %d: %w", row, err)
	}
	return nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
