package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kbukum/cloudstore/codec"
	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/logger"
)

// read opens key, hands the stream to decode and closes it on every path.
// decode errors become DECODE_FAILED unless the stream itself broke.
func (b *Bucket) read(ctx context.Context, format, key string, decode func(io.Reader) error) error {
	return b.observe(ctx, "read_"+format, key, func(ctx context.Context) error {
		b.log.Debug("reading object", map[string]interface{}{logger.FieldKey: key})

		rc, err := b.backend.Get(ctx, key)
		if err != nil {
			return Translate("get", key, err)
		}
		defer rc.Close()

		cr := &countingReader{r: rc}
		err = decode(cr)
		b.metrics.RecordBytes(ctx, b.backend.Provider(), "read", cr.n)
		switch {
		case cr.err != nil:
			return Translate("get", key, cr.err)
		case err != nil:
			return errors.Decode(format, key, err)
		}
		return nil
	})
}

// write encodes into a buffer and stores it with a single put.
func (b *Bucket) write(ctx context.Context, format, key string, encode func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return errors.Encode(format, err)
	}
	return b.put(ctx, "write_"+format, key, &buf, PutOptions{
		ContentType: codec.ContentType(format),
		Size:        int64(buf.Len()),
		Kind:        BodyEncoded,
	})
}

func (b *Bucket) put(ctx context.Context, op, key string, body io.Reader, opts PutOptions) error {
	opts.Transfer = b.transfer
	return b.observe(ctx, op, key, func(ctx context.Context) error {
		b.log.Debug("writing object", map[string]interface{}{logger.FieldKey: key, logger.FieldBytes: opts.Size})
		if err := b.backend.Put(ctx, key, body, opts); err != nil {
			return Translate("put", key, err)
		}
		b.metrics.RecordBytes(ctx, b.backend.Provider(), "write", opts.Size)
		return nil
	})
}

// ReadCSV reads a CSV object into a table.
func (b *Bucket) ReadCSV(ctx context.Context, filename, folder string, opts codec.CSVOptions) (*codec.Table, error) {
	var t *codec.Table
	err := b.read(ctx, codec.FormatCSV, b.FullPath(filename, folder), func(r io.Reader) (err error) {
		t, err = codec.DecodeCSV(r, opts)
		return err
	})
	return t, err
}

// ReadExcel reads one sheet of an .xlsx object into a table.
func (b *Bucket) ReadExcel(ctx context.Context, filename, folder string, opts codec.ExcelOptions) (*codec.Table, error) {
	var t *codec.Table
	err := b.read(ctx, codec.FormatExcel, b.FullPath(filename, folder), func(r io.Reader) (err error) {
		t, err = codec.DecodeExcel(r, opts)
		return err
	})
	return t, err
}

// ReadParquet reads a Parquet object into a table.
func (b *Bucket) ReadParquet(ctx context.Context, filename, folder string) (*codec.Table, error) {
	var t *codec.Table
	err := b.read(ctx, codec.FormatParquet, b.FullPath(filename, folder), func(r io.Reader) (err error) {
		t, err = codec.DecodeParquet(r)
		return err
	})
	return t, err
}

// ReadYAML decodes a YAML object into out.
func (b *Bucket) ReadYAML(ctx context.Context, filename, folder string, out any) error {
	return b.read(ctx, codec.FormatYAML, b.FullPath(filename, folder), func(r io.Reader) error {
		return codec.DecodeYAML(r, out)
	})
}

// ReadJSON decodes a JSON object into out.
func (b *Bucket) ReadJSON(ctx context.Context, filename, folder string, out any, opts codec.JSONOptions) error {
	return b.read(ctx, codec.FormatJSON, b.FullPath(filename, folder), func(r io.Reader) error {
		return codec.DecodeJSON(r, out, opts)
	})
}

// ReadObject returns the raw content of an object.
func (b *Bucket) ReadObject(ctx context.Context, filename, folder string) ([]byte, error) {
	var data []byte
	err := b.read(ctx, codec.FormatRaw, b.FullPath(filename, folder), func(r io.Reader) (err error) {
		data, err = io.ReadAll(r)
		return err
	})
	return data, err
}

// WriteCSV stores table as CSV.
func (b *Bucket) WriteCSV(ctx context.Context, table *codec.Table, filename, folder string, opts codec.CSVOptions) error {
	return b.write(ctx, codec.FormatCSV, b.FullPath(filename, folder), func(w io.Writer) error {
		return codec.EncodeCSV(w, table, opts)
	})
}

// WriteExcel stores table as a single-sheet .xlsx workbook.
func (b *Bucket) WriteExcel(ctx context.Context, table *codec.Table, filename, folder string, opts codec.ExcelOptions) error {
	return b.write(ctx, codec.FormatExcel, b.FullPath(filename, folder), func(w io.Writer) error {
		return codec.EncodeExcel(w, table, opts)
	})
}

// WriteParquet stores table as Parquet.
func (b *Bucket) WriteParquet(ctx context.Context, table *codec.Table, filename, folder string, opts codec.ParquetOptions) error {
	return b.write(ctx, codec.FormatParquet, b.FullPath(filename, folder), func(w io.Writer) error {
		return codec.EncodeParquet(w, table, opts)
	})
}

// WriteYAML stores value as YAML.
func (b *Bucket) WriteYAML(ctx context.Context, value any, filename, folder string, opts codec.YAMLOptions) error {
	return b.write(ctx, codec.FormatYAML, b.FullPath(filename, folder), func(w io.Writer) error {
		return codec.EncodeYAML(w, value, opts)
	})
}

// WriteJSON stores value as JSON.
func (b *Bucket) WriteJSON(ctx context.Context, value any, filename, folder string, opts codec.JSONOptions) error {
	return b.write(ctx, codec.FormatJSON, b.FullPath(filename, folder), func(w io.Writer) error {
		return codec.EncodeJSON(w, value, opts)
	})
}

// WriteObject stores raw content. A []byte is put as-is with no content
// type; an io.Reader goes through the backend's streaming upload path.
func (b *Bucket) WriteObject(ctx context.Context, data any, filename, folder string) error {
	key := b.FullPath(filename, folder)
	switch v := data.(type) {
	case []byte:
		return b.put(ctx, "write_raw", key, bytes.NewReader(v), PutOptions{Size: int64(len(v)), Kind: BodyBytes})
	case io.Reader:
		return b.put(ctx, "write_raw", key, v, PutOptions{Size: -1, Kind: BodyStream})
	default:
		return errors.InvalidInput("data", fmt.Sprintf("expected []byte or io.Reader, got %T", data))
	}
}
