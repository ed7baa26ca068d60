package codec

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet excelize creates in a new workbook.
const DefaultSheet = "Sheet1"

// ExcelOptions configures workbook reading and writing.
type ExcelOptions struct {
	// Sheet names the sheet to read or write. On read, empty means the
	// first sheet; on write, empty means DefaultSheet.
	Sheet string
	// NoHeader treats every row as data.
	NoHeader bool
}

// DecodeExcel reads one sheet of an .xlsx workbook into a Table.
func DecodeExcel(r io.Reader, opts ExcelOptions) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	t := &Table{}
	if !opts.NoHeader && len(rows) > 0 {
		t.Header = rows[0]
		rows = rows[1:]
	}
	// excelize drops trailing empty cells, so rows are padded back out.
	width := len(t.Header)
	if width == 0 {
		for _, r := range rows {
			width = max(width, len(r))
		}
	}
	for _, row := range rows {
		if len(t.Header) > 0 && len(row) > width {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", len(t.Rows)+1, len(row), width)
		}
		t.Rows = append(t.Rows, pad(row, width))
	}
	return t, nil
}

// EncodeExcel writes t as a single-sheet .xlsx workbook.
func EncodeExcel(w io.Writer, t *Table, opts ExcelOptions) error {
	if err := t.Validate(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet %q: %w", sheet, err)
		}
	}

	line := 1
	writeRow := func(cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", line, err)
		}
		line++
		return nil
	}

	if !opts.NoHeader && len(t.Header) > 0 {
		if err := writeRow(t.Header); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
