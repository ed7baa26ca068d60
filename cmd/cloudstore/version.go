package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/cloudstore/storage"
	"github.com/kbukum/cloudstore/version"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version and the compiled-in providers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Short())
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, info.String())
			fmt.Fprintf(cmd.OutOrStdout(), "providers: %v\n", storage.Providers())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version")
	return cmd
}
