package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"knipclean/internal/output"
)

var outputFormat string

func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Run knip once and print the findings",
		Long: `Run knip on the project that contains path and print unused files,
dependencies and exports.

Examples:
  # Human readable summary
  knipclean scan

  # Machine readable output for another tool
  knipclean scan ./packages/web -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format ("+strings.Join(output.Formats, ", ")+")")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	if !slices.Contains(output.Formats, outputFormat) {
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
	ctx := cmd.Context()
	e, err := setup(ctx, "scan", args)
	if err != nil {
		return err
	}
	defer e.Close()

	s := newSpinner("Running knip...")
	s.Start()
	report, notice, err := e.scan(ctx, spinnerSink{s})
	s.Stop()
	if err != nil {
		return err
	}
	if e.settings.ShowNotifications {
		printSuccess(notice.Text)
	}

	return output.DisplayReport(os.Stdout, e.root, report, outputFormat)
}
