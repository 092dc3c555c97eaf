package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/pkg/adapters/lifecycle"
	"github.com/aretw0/folio/pkg/core"
)

func newWatchCmd(a *app) *cobra.Command {
	var recheck bool

	cmd := &cobra.Command{
		Use:   "watch [pattern]",
		Short: "Report content changes as they happen",
		Long: `Watch the content tree and print one line per change. The optional pattern
is a glob over document paths (default: everything). With --check each
changed document is validated again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			pattern := ""
			if len(args) > 0 {
				pattern = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := svc.Watch(ctx, pattern)
			if err != nil {
				return err
			}
			src := lifecycle.NewSource(events)
			if err := src.Start(ctx); err != nil {
				return err
			}

			a.logger.Info("watching content", "dir", a.cfg.ContentDir)
			out := cmd.OutOrStdout()
			for e := range src.Events() {
				fmt.Fprintln(out, e.String())
				ce, ok := e.(core.Event)
				if !recheck || !ok || ce.Type == core.EventDelete {
					continue
				}
				res, err := svc.Check(ctx, ce.ID)
				if err != nil {
					a.logger.Warn("failed to check document", "id", ce.ID, "error", err)
					continue
				}
				for _, issue := range res.Issues {
					fmt.Fprintf(out, "  %s\n", issue)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&recheck, "check", false, "Validate documents as they change")
	return cmd
}
