package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/cloudstore/storage"
)

// newCpCmd builds "cp", or "mv" when remove is set. Without keys the command
// works on every key listed under --folder.
func newCpCmd(opts *globalOptions, remove bool) *cobra.Command {
	var (
		lf     listFlags
		folder string
		rename string
	)
	use, short := "cp", "Copy objects to another bucket"
	if remove {
		use, short = "mv", "Move objects to another bucket"
	}

	cmd := &cobra.Command{
		Use:   use + " <destination-bucket> [key...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination, keys := args[0], args[1:]
			if rename != "" && len(keys) != 1 {
				return fmt.Errorf("--rename needs exactly one key, got %d", len(keys))
			}
			moved := 0
			moveOpts := storage.MoveOptions{
				DestinationName: rename,
				RemoveSource:    remove,
				OnMoved:         func(_, _ string) { moved++ },
			}

			return withBucket(cmd, opts, func(ctx context.Context, b *storage.Bucket) error {
				var err error
				if len(keys) > 0 {
					err = b.Move(ctx, destination, keys, moveOpts)
				} else {
					err = b.MoveFrom(ctx, destination, b.List(ctx, lf.options(folder, opts.pageSize)), moveOpts)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d object(s) -> %s\n", moved, destination)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "list this folder when no keys are given")
	cmd.Flags().StringVar(&rename, "rename", "", "destination key for a single object")
	lf.register(cmd)
	return cmd
}
