package codec

import (
	"fmt"
	"slices"
)

// Format names, used in error details and log fields.
const (
	FormatCSV     = "csv"
	FormatExcel   = "excel"
	FormatParquet = "parquet"
	FormatYAML    = "yaml"
	FormatJSON    = "json"
	FormatRaw     = "raw"
)

var contentTypes = map[string]string{
	FormatCSV:     "text/csv",
	FormatExcel:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatParquet: "application/vnd.apache.parquet",
	FormatYAML:    "application/yaml",
	FormatJSON:    "application/json",
}

// ContentType returns the MIME type written alongside objects of the given
// format, or "" when the format has none.
func ContentType(format string) string {
	return contentTypes[format]
}

// Table is a rectangular set of string cells with an optional header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable returns a table with the given header and no rows.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// Append adds a row.
func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the number of columns: the header length, or the widest row
// when there is no header.
func (t *Table) Width() int {
	if len(t.Header) > 0 {
		return len(t.Header)
	}
	w := 0
	for _, r := range t.Rows {
		w = max(w, len(r))
	}
	return w
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := slices.Index(t.Header, name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		if idx < len(r) {
			out[i] = r[idx]
		}
	}
	return out, true
}

// Equal reports whether two tables hold the same header and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if !slices.Equal(t.Header, o.Header) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Rows {
		if !slices.Equal(t.Rows[i], o.Rows[i]) {
			return false
		}
	}
	return true
}

// Validate checks that every row is as wide as the header.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("table is nil")
	}
	if len(t.Header) == 0 {
		return nil
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Header) {
			return fmt.Errorf("row %d has %d cells, header has %d", i, len(r), len(t.Header))
		}
	}
	return nil
}

// pad extends row to width with empty cells.
func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
