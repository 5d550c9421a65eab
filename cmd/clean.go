package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var assumeYes bool

func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [path]",
		Short: "Let knip remove everything it reports (knip --fix)",
		Long: `Run knip --fix on the project that contains path. This deletes unused
files and removes unused dependencies from package.json in one go. Run
"knipclean scan" first to see what will be removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClean,
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx, "clean", args)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.history != nil {
		if last, _ := e.history.Last(ctx, e.root); last == nil {
			printWarning("No scan recorded for this project yet. Run `knipclean scan` first to see what will be removed.")
		} else {
			fmt.Fprintf(os.Stderr, "Last scan found %d issues.\n", last.Issues())
		}
	}

	if !assumeYes && !confirm(cmd.InOrStdin(), fmt.Sprintf("This will delete unused files and edit package.json in %s. Continue?", e.root)) {
		fmt.Fprintln(os.Stderr, "Aborted.")
		return nil
	}

	s := newSpinner("Running knip --fix...")
	s.Start()
	err = e.analyzer.Clean(ctx, e.root)
	s.Stop()
	if err != nil {
		return err
	}
	e.logger.Info("cleanup complete")
	printSuccess("Cleanup complete")
	return nil
}

func confirm(in io.Reader, question string) bool {
	color.New(color.FgYellow, color.Bold).Fprintf(os.Stderr, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
