package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"knipclean/internal/output"
)

var historyLimit int

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List past scans of a project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}

	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of scans to show")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx, "history", args)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.history == nil {
		printWarning("Scan history is disabled (history: false in settings) or unavailable.")
		return nil
	}
	entries, err := e.history.Recent(ctx, e.root, historyLimit)
	if err != nil {
		return err
	}
	output.DisplayHistory(os.Stdout, e.root, entries)
	return nil
}
