package cmd

import (
	"github.com/spf13/cobra"

	"knipclean/internal/remedy"
	"knipclean/internal/review"
	"knipclean/internal/tui"
)

func NewReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review [path]",
		Short: "Scan a project and review the findings interactively",
		Long: `Run knip on the project that contains path (default: the current
directory) and open an interactive review of unused files, dependencies and
exports. Files can be opened or deleted and dependencies removed from
package.json; destructive actions ask for confirmation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunReview,
	}
}

// RunReview is also the root command's default action.
func RunReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx, "review", args)
	if err != nil {
		return err
	}
	defer e.Close()

	panel := tui.NewPanel(e.root)
	notifier := review.Quiet(panel, e.settings.ShowNotifications)
	viewer := panel.Viewer(e.settings.Editor)
	if e.settings.Opener != "" {
		viewer = remedy.SystemViewer{Opener: e.settings.Opener}
	}

	manager := review.NewManager(review.Deps{
		Notifier: notifier,
		Executor: remedy.NewExecutor(viewer, e.logger),
		Scanner:  scannerFor(e, panel, notifier),
		Logger:   e.logger,
	})

	go func() {
		report, notice, err := e.scan(ctx, panel)
		if err != nil {
			panel.Fail(err)
			return
		}
		select {
		case <-panel.Done():
			e.logger.Debug("review closed before the scan finished")
			return
		default:
		}
		if manager.Show(ctx, e.root, report, panel) != nil {
			notifier.Notify(notice)
		}
	}()

	err = panel.Run()
	manager.Close()
	return err
}
