package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio/internal/config"
	"github.com/aretw0/folio/internal/metrics"
	"github.com/aretw0/folio/pkg/core"
)

func newCheckCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check [id...]",
		Short: "Validate documents against the content contract",
		Long: `Validate every document (or the named ones) against the content contract.
Exits non-zero when a document is invalid, or with --strict when any
warning is reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			var report core.Report
			if len(args) > 0 {
				report, err = svc.CheckIDs(cmd.Context(), args)
			} else {
				report, err = svc.CheckAll(cmd.Context())
			}
			if err != nil {
				return err
			}

			if a.cfg.MetricsFile != "" {
				rec := metrics.NewRecorder()
				rec.Observe(report)
				if err := rec.WriteTextfile(a.cfg.MetricsFile); err != nil {
					return fmt.Errorf("failed to write metrics: %w", err)
				}
				a.logger.Debug("metrics written", "path", a.cfg.MetricsFile)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				printReport(out, report)
			}

			if !report.OK(a.cfg.Strict) {
				if !asJSON {
					fmt.Fprintln(cmd.ErrOrStderr(), "check failed")
				}
				return errCheckFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the report as JSON")
	cmd.Flags().Bool("strict", false, "Fail on warnings too")
	cmd.Flags().Bool("check-refs", false, "Verify that local links and images exist")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
	bindFlag(a.v, config.KeyStrict, cmd.Flags().Lookup("strict"))
	bindFlag(a.v, config.KeyCheckRefs, cmd.Flags().Lookup("check-refs"))
	bindFlag(a.v, config.KeyMetricsFile, cmd.Flags().Lookup("metrics-file"))
	return cmd
}

func printReport(w io.Writer, report core.Report) {
	for _, res := range report.Results {
		if len(res.Issues) == 0 {
			continue
		}
		fmt.Fprintln(w, res.Path)
		for _, issue := range res.Issues {
			fmt.Fprintf(w, "  %-7s %-22s %s\n", issue.Severity, issue.Code, issue.Message)
		}
	}
	s := report.Summary
	fmt.Fprintf(w, "%d documents, %d invalid, %d drafts, %d errors, %d warnings\n",
		s.Documents, s.Invalid, s.Drafts, s.Errors, s.Warnings)
}
