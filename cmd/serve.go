package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"knipclean/internal/remedy"
	"knipclean/internal/review"
	"knipclean/internal/web"
)

var webAddr string

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [path]",
		Short: "Review the findings in a browser",
		Long: `Scan the project that contains path and serve the review UI over HTTP
until interrupted. Files open with the system viewer.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}

	cmd.Flags().StringVar(&webAddr, "addr", "", "Listen address (default from settings, localhost:8080)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx, "serve", args)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := webAddr
	if addr == "" {
		addr = e.settings.WebAddr
	}

	s := newSpinner("Running knip...")
	s.Start()
	report, notice, err := e.scan(ctx, spinnerSink{s})
	s.Stop()
	if err != nil {
		return err
	}
	printSuccess(notice.Text)

	server := web.NewServer(e.root, addr, e.logger)
	notifier := review.Quiet(server, e.settings.ShowNotifications)
	manager := review.NewManager(review.Deps{
		Notifier: notifier,
		Executor: remedy.NewExecutor(remedy.SystemViewer{Opener: e.settings.Opener}, e.logger),
		Scanner:  scannerFor(e, nil, notifier),
		Logger:   e.logger,
	})
	manager.Show(ctx, e.root, report, server)
	defer manager.Close()

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()

	fmt.Fprintf(os.Stderr, "Serving review of %s at %s (ctrl+c to stop)\n",
		e.root, color.CyanString("http://"+addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		manager.Close()
		<-errc
		return nil
	}
}
