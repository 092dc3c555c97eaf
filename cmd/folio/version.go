package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of folio",
		Args:  cobra.NoArgs,
		// No site needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "folio version %s\n", folio.Version)
		},
	}
}
