package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/internal/config"
	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/git"
)

type listItem struct {
	core.Entry
	GitLastmod *time.Time `json:"git_lastmod,omitempty"`
}

func newListCmd(a *app) *cobra.Command {
	var (
		opts    core.ListOptions
		asJSON  bool
		gitInfo bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published documents in date order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			opts.IncludeFuture = a.v.GetBool(config.KeyIncludeFuture)
			entries, err := svc.Published(cmd.Context(), opts)
			if err != nil {
				return err
			}

			items := make([]listItem, len(entries))
			for i, e := range entries {
				items[i].Entry = e
			}
			if gitInfo {
				a.addGitInfo(cmd, items)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, items)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, item := range items {
				fm := item.FrontMatter
				marker := ""
				if fm.Draft {
					marker = " (draft)"
				}
				line := fmt.Sprintf("%s\t%s\t%s%s", fm.Date.Format("2006-01-02"), item.ID, fm.Title, marker)
				if item.GitLastmod != nil {
					line += "\t" + item.GitLastmod.Format("2006-01-02")
				}
				fmt.Fprintln(tw, line)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "Only documents filed under this tag")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Only documents filed under this category")
	cmd.Flags().BoolVar(&opts.IncludeDrafts, "drafts", false, "Include drafts")
	cmd.Flags().Bool("future", false, "Include documents dated in the future")
	cmd.Flags().BoolVar(&opts.Reverse, "reverse", false, "Newest first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&gitInfo, "git-info", false, "Add the last commit date of each document")
	bindFlag(a.v, config.KeyIncludeFuture, cmd.Flags().Lookup("future"))
	return cmd
}

func (a *app) addGitInfo(cmd *cobra.Command, items []listItem) {
	client := git.NewClient(a.cfg.ContentDir, a.logger)
	if !git.IsInstalled() || !client.IsRepo(cmd.Context()) {
		a.logger.Warn("git info unavailable: content is not in a git work tree")
		return
	}
	for i := range items {
		t, ok, err := client.LastCommitTime(cmd.Context(), items[i].Path)
		if err != nil {
			a.logger.Warn("failed to read git history", "path", items[i].Path, "error", err)
			continue
		}
		if ok {
			items[i].GitLastmod = &t
		}
	}
}
