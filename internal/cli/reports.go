package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/inferbench/internal/report"
)

func newCompareCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "compare <base.json> <candidate.json>",
		Short: "Show metric changes between two run reports",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := report.Load(args[0])
			if err != nil {
				return err
			}
			candidate, err := report.Load(args[1])
			if err != nil {
				return err
			}
			deltas, err := report.CompareFiles(args[0], args[1])
			if err != nil {
				return err
			}

			console := report.NewConsole(report.ConsoleConfig{Writer: cmd.OutOrStdout(), NoColor: noColor})
			console.Infof("Base:      %s", describeReport(base))
			console.Infof("Candidate: %s", describeReport(candidate))
			if base.Model != candidate.Model || base.Config.Threads != candidate.Config.Threads {
				console.Warnf("reports differ in model or thread count")
			}
			console.PrintComparison(deltas)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func describeReport(r *report.Report) string {
	return fmt.Sprintf("%s, %d threads, %d requests", r.Model, r.Config.Threads, r.Config.Requests)
}

func newValidateReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-report <report.json>",
		Short: "Check a saved report against the report schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}

			kind, err := report.Validate(data)
			var schemaErrs report.SchemaErrors
			if errors.As(err, &schemaErrs) {
				w := cmd.ErrOrStderr()
				for _, e := range schemaErrs {
					fmt.Fprintf(w, "  %v\n", e)
				}
				return fmt.Errorf("%s is not a valid %s report (%d problems)", args[0], kind, len(schemaErrs))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s report\n", args[0], kind)
			return nil
		},
	}
}
