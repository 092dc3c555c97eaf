package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/pkg/core"
)

type showOutput struct {
	ID          string           `json:"id"`
	Path        string           `json:"path"`
	Format      core.Format      `json:"format"`
	Metadata    core.Metadata    `json:"metadata"`
	FrontMatter core.FrontMatter `json:"front_matter"`
	Inspection  *core.Inspection `json:"inspection,omitempty"`
	Issues      []core.Issue     `json:"issues,omitempty"`
	Content     string           `json:"content"`
}

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a document, drafts included",
		Long:  `Show a document by its ID. Outputs the raw file by default, or the decoded header, inspection and issues with --json.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			id := args[0]

			if !asJSON {
				raw, err := svc.Repository().Raw(cmd.Context(), id)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			}

			doc, err := svc.Document(cmd.Context(), id)
			if err != nil {
				return err
			}
			res, err := svc.Check(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", id, err)
			}

			return writeJSON(cmd.OutOrStdout(), showOutput{
				ID:          doc.ID,
				Path:        doc.Path,
				Format:      doc.Format,
				Metadata:    doc.Metadata,
				FrontMatter: res.FrontMatter,
				Inspection:  res.Inspection,
				Issues:      res.Issues,
				Content:     doc.Content,
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
