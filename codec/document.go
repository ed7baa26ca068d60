package codec

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// YAMLOptions configures YAML writing.
type YAMLOptions struct {
	// Indent is the number of spaces per nesting level. Zero means 2.
	Indent int
}

// DecodeYAML decodes the first YAML document in r into out. An empty stream
// leaves out untouched.
func DecodeYAML(r io.Reader, out any) error {
	err := yaml.NewDecoder(r).Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// EncodeYAML writes v as a single YAML document.
func EncodeYAML(w io.Writer, v any, opts YAMLOptions) error {
	enc := yaml.NewEncoder(w)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// JSONOptions configures JSON reading and writing.
type JSONOptions struct {
	// Indent, when set, pretty-prints output with this indent string.
	Indent string
	// UseNumber decodes numbers into json.Number instead of float64.
	UseNumber bool
	// DisallowUnknownFields rejects object keys with no matching struct field.
	DisallowUnknownFields bool
}

// DecodeJSON decodes a single JSON value from r into out.
func DecodeJSON(r io.Reader, out any, opts JSONOptions) error {
	dec := json.NewDecoder(r)
	if opts.UseNumber {
		dec.UseNumber()
	}
	if opts.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// EncodeJSON writes v as JSON without a trailing newline.
func EncodeJSON(w io.Writer, v any, opts JSONOptions) error {
	var (
		data []byte
		err  error
	)
	if opts.Indent != "" {
		data, err = json.MarshalIndent(v, "", opts.Indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = w.Write(data)
	return err
}
