package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/cloudstore/codec"
	"github.com/kbukum/cloudstore/storage"
)

var catFormats = []string{codec.FormatRaw, codec.FormatCSV, codec.FormatExcel, codec.FormatParquet, codec.FormatJSON, codec.FormatYAML}

// formatFromName guesses the codec from a file extension, falling back to raw.
func formatFromName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return codec.FormatCSV
	case ".xlsx":
		return codec.FormatExcel
	case ".parquet":
		return codec.FormatParquet
	case ".json":
		return codec.FormatJSON
	case ".yaml", ".yml":
		return codec.FormatYAML
	}
	return codec.FormatRaw
}

func newCatCmd(opts *globalOptions) *cobra.Command {
	var (
		folder string
		format string
		sheet  string
	)
	cmd := &cobra.Command{
		Use:   "cat <name>",
		Short: "Print an object to stdout",
		Long: "Print an object to stdout. Tabular formats (csv, excel, parquet) are\n" +
			"decoded and printed as CSV; json and yaml documents are decoded and\n" +
			"printed back in their own format.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if format == "" {
				format = formatFromName(name)
			}
			out := cmd.OutOrStdout()

			return withBucket(cmd, opts, func(ctx context.Context, b *storage.Bucket) error {
				var (
					table *codec.Table
					err   error
				)
				switch format {
				case codec.FormatRaw:
					data, err := b.ReadObject(ctx, name, folder)
					if err != nil {
						return err
					}
					_, err = out.Write(data)
					return err
				case codec.FormatJSON:
					var doc any
					if err := b.ReadJSON(ctx, name, folder, &doc, codec.JSONOptions{UseNumber: true}); err != nil {
						return err
					}
					return codec.EncodeJSON(out, doc, codec.JSONOptions{Indent: "  "})
				case codec.FormatYAML:
					var doc any
					if err := b.ReadYAML(ctx, name, folder, &doc); err != nil {
						return err
					}
					return codec.EncodeYAML(out, doc, codec.YAMLOptions{})
				case codec.FormatCSV:
					table, err = b.ReadCSV(ctx, name, folder, codec.CSVOptions{})
				case codec.FormatExcel:
					table, err = b.ReadExcel(ctx, name, folder, codec.ExcelOptions{Sheet: sheet})
				case codec.FormatParquet:
					table, err = b.ReadParquet(ctx, name, folder)
				default:
					return fmt.Errorf("unknown format %q, want one of %s", format, strings.Join(catFormats, ", "))
				}
				if err != nil {
					return err
				}
				return codec.EncodeCSV(out, table, codec.CSVOptions{})
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "folder holding the object")
	cmd.Flags().StringVarP(&format, "format", "f", "", "decode as: "+strings.Join(catFormats, ", ")+" (default: from the extension)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet to print (default: the first sheet)")
	return cmd
}
