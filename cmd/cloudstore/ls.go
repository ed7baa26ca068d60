package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/cloudstore/storage"
)

type listFlags struct {
	contains   string
	extensions []string
	dirs       bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.contains, "contains", "", "keep keys containing this text")
	cmd.Flags().StringSliceVar(&f.extensions, "ext", nil, "keep keys ending in one of these suffixes (repeatable)")
	cmd.Flags().BoolVar(&f.dirs, "dirs", false, "include directory markers")
}

func (f *listFlags) options(folder string, pageSize int) storage.ListOptions {
	var opts []storage.ListOption
	if f.contains != "" {
		opts = append(opts, storage.WithFilenameContains(f.contains))
	}
	if len(f.extensions) > 0 {
		opts = append(opts, storage.WithExtensions(f.extensions...))
	}
	if f.dirs {
		opts = append(opts, storage.WithDirectories())
	}
	if pageSize > 0 {
		opts = append(opts, storage.WithPageSize(pageSize))
	}
	return storage.NewListOptions(folder, opts...)
}

func newLsCmd(opts *globalOptions) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "ls [folder]",
		Short: "List object keys under a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) == 1 {
				folder = args[0]
			}
			return withBucket(cmd, opts, func(ctx context.Context, b *storage.Bucket) error {
				it := b.List(ctx, lf.options(folder, opts.pageSize))
				defer it.Close()
				for {
					key, ok, err := it.Next(ctx)
					if err != nil {
						return err
					}
					if !ok {
						return nil
					}
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
			})
		},
	}
	lf.register(cmd)
	return cmd
}
