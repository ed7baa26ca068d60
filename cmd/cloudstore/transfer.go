package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kbukum/cloudstore/storage"
)

func newGetCmd(opts *globalOptions) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "get <name> [local-path]",
		Short: "Download an object to a local file",
		Long: "Download an object to a local file. Without a local path the resolved\n" +
			"object key is reused, relative to the working directory.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local := ""
			if len(args) == 2 {
				local = args[1]
			}
			return withBucket(cmd, opts, func(ctx context.Context, b *storage.Bucket) error {
				path, err := b.ReadObjectToFile(ctx, args[0], local, folder)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "folder holding the object")
	return cmd
}

func newPutCmd(opts *globalOptions) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "put <local-path> [name]",
		Short: "Upload a local file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := filepath.Base(args[0])
			if len(args) == 2 {
				name = args[1]
			}
			return withBucket(cmd, opts, func(ctx context.Context, b *storage.Bucket) error {
				if err := b.WriteObjectFromFile(ctx, args[0], name, folder); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), b.FullPath(name, folder))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "destination folder")
	return cmd
}

func newMbCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mb",
		Short: "Create the configured bucket or container",
		Long: "Create the configured bucket or container. A bucket that already\n" +
			"exists is reported as a warning, not an error.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBucket(cmd, opts, func(ctx context.Context, b *storage.Bucket) error {
				if err := b.CreateBucket(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s://%s\n", b.Provider(), b.Name())
				return nil
			})
		},
	}
}
