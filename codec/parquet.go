package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

// columnsMetadataKey stores the header order in the file's key/value
// metadata. Parquet groups sort their fields by name, so the physical column
// order alone does not reproduce the caller's header.
const columnsMetadataKey = "columns"

// ParquetOptions configures Parquet writing.
type ParquetOptions struct {
	// Compression is one of "snappy" (default), "gzip", "zstd" or "none".
	Compression string
}

func (o ParquetOptions) codec() (compress.Codec, error) {
	switch o.Compression {
	case "", "snappy":
		return &parquet.Snappy, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "zstd":
		return &parquet.Zstd, nil
	case "none":
		return &parquet.Uncompressed, nil
	default:
		return nil, fmt.Errorf("unsupported parquet compression %q", o.Compression)
	}
}

// EncodeParquet writes t as a Parquet file with one required string column
// per header entry.
func EncodeParquet(w io.Writer, t *Table, opts ParquetOptions) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if len(t.Header) == 0 {
		return errors.New("parquet requires a header")
	}
	codec, err := opts.codec()
	if err != nil {
		return err
	}

	group := parquet.Group{}
	for _, name := range t.Header {
		if name == "" {
			return errors.New("parquet column names must not be empty")
		}
		if _, dup := group[name]; dup {
			return fmt.Errorf("duplicate parquet column %q", name)
		}
		group[name] = parquet.String()
	}
	schema := parquet.NewSchema("table", group)

	order, err := json.Marshal(t.Header)
	if err != nil {
		return err
	}

	// Map each header position to its leaf column index in the schema.
	leaf := make(map[string]int, len(t.Header))
	for i, path := range schema.Columns() {
		leaf[path[0]] = i
	}

	rows := make([]parquet.Row, len(t.Rows))
	for i, r := range t.Rows {
		row := make(parquet.Row, len(t.Header))
		for j, name := range t.Header {
			col := leaf[name]
			row[col] = parquet.ValueOf(r[j]).Level(0, 0, col)
		}
		rows[i] = row
	}

	pw := parquet.NewWriter(w, schema,
		parquet.Compression(codec),
		parquet.KeyValueMetadata(columnsMetadataKey, string(order)),
	)
	if _, err := pw.WriteRows(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// DecodeParquet reads a Parquet file into a Table. Every leaf column becomes
// a string column; nulls become empty cells.
func DecodeParquet(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	columns := f.Schema().Columns()
	names := make([]string, len(columns))
	for i, path := range columns {
		names[i] = path[len(path)-1]
	}

	header := names
	if meta, ok := f.Lookup(columnsMetadataKey); ok {
		var ordered []string
		if err := json.Unmarshal([]byte(meta), &ordered); err == nil && len(ordered) == len(names) {
			header = ordered
		}
	}

	// position[leaf] is where leaf's value lands in a table row.
	position := make([]int, len(names))
	for i, name := range names {
		position[i] = i
		for j, h := range header {
			if h == name {
				position[i] = j
				break
			}
		}
	}

	t := &Table{Header: header}
	buf := make([]parquet.Row, 128)
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				cells := make([]string, len(header))
				for _, v := range row {
					col := v.Column()
					if col < 0 || col >= len(position) || v.IsNull() {
						continue
					}
					cells[position[col]] = cellString(v)
				}
				t.Rows = append(t.Rows, cells)
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("read parquet rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("close parquet rows: %w", err)
		}
	}
	return t, nil
}

func cellString(v parquet.Value) string {
	switch v.Kind() {
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
