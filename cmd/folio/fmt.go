package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/pkg/core"
)

func newFmtCmd(a *app) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt [id...]",
		Short: "Rewrite document headers in canonical form",
		Long: `Render front matter with labels trimmed and deduplicated and keys in stable
order. Prints the IDs that would change; with --write the files are updated.
Documents without a readable header are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				docs, err := svc.Repository().List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list documents: %w", err)
				}
				for _, d := range docs {
					ids = append(ids, d.ID)
				}
			}

			out := cmd.OutOrStdout()
			changed := 0
			for _, id := range ids {
				res, err := svc.Normalize(cmd.Context(), id, write)
				if errors.Is(err, core.ErrNoFrontMatter) || errors.Is(err, core.ErrMalformedFrontMatter) {
					a.logger.Debug("skipping document", "id", id, "error", err)
					continue
				}
				if err != nil {
					return err
				}
				if res.Changed {
					changed++
					fmt.Fprintln(out, res.ID)
				}
			}

			if write {
				a.logger.Info("headers normalized", "changed", changed)
			} else if changed > 0 {
				a.logger.Info("run with --write to apply", "changed", changed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the canonical form back to the files")
	return cmd
}
