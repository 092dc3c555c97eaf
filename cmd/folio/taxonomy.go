package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/internal/config"
	"github.com/aretw0/folio/pkg/core"
)

func newTaxonomyCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		drafts bool
	)

	cmd := &cobra.Command{
		Use:       "taxonomy tags|categories",
		Short:     "Group published documents by tag or category",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"tags", "categories"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := core.ParseTaxonomyKind(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}

			tax, err := svc.Taxonomy(cmd.Context(), kind, core.ListOptions{
				IncludeDrafts: drafts,
				IncludeFuture: a.v.GetBool(config.KeyIncludeFuture),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, tax)
			}
			for _, term := range tax.Terms {
				fmt.Fprintf(out, "%s (%s) %d\n", term.Name, term.Slug, len(term.Documents))
				for _, id := range term.Documents {
					fmt.Fprintf(out, "  %s\n", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "Include drafts")
	return cmd
}
