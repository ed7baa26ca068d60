package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSVOptions configures CSV reading and writing. The zero value reads and
// writes comma-separated files whose first record is the header.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Comment, when set, marks lines to skip on read.
	Comment rune
	// NoHeader treats every record as data.
	NoHeader bool
	// LazyQuotes tolerates quotes in unquoted fields on read.
	LazyQuotes bool
	// UseCRLF ends written lines with \r\n.
	UseCRLF bool
}

func (o CSVOptions) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

// DecodeCSV reads a CSV stream into a Table. Short records are padded to the
// header width.
func DecodeCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.comma()
	cr.Comment = opts.Comment
	cr.LazyQuotes = opts.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	t := &Table{}
	first := !opts.NoHeader
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if first {
			t.Header = rec
			first = false
			continue
		}
		if len(t.Header) > 0 && len(rec) > len(t.Header) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", len(t.Rows)+1, len(rec), len(t.Header))
		}
		t.Rows = append(t.Rows, pad(rec, len(t.Header)))
	}
	return t, nil
}

// EncodeCSV writes t as CSV. The header is written unless opts.NoHeader is set.
func EncodeCSV(w io.Writer, t *Table, opts CSVOptions) error {
	if err := t.Validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = opts.comma()
	cw.UseCRLF = opts.UseCRLF

	if !opts.NoHeader && len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
