// Package cmd holds the knipclean subcommands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"knipclean/internal/history"
	"knipclean/internal/knip"
	"knipclean/internal/logging"
	"knipclean/internal/model"
	"knipclean/internal/review"
	"knipclean/internal/settings"
	"knipclean/internal/workspace"
)

var (
	verbose        bool
	commandFlag    []string
	analyzeTimeout time.Duration
)

// AddGlobalFlags registers the flags shared by every subcommand.
func AddGlobalFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&verbose, "verbose", "v", false, "Write debug records to the log file")
	fs.StringSliceVar(&commandFlag, "knip-command", nil, "Command that runs knip, e.g. pnpm,exec,knip (default: detect from lockfile)")
	fs.DurationVar(&analyzeTimeout, "timeout", 0, "Analysis timeout (default from settings, 60s)")
}

// env is what every command needs once the project is known.
type env struct {
	root     string
	settings settings.Settings
	run      *logging.Run
	logger   *slog.Logger
	analyzer *knip.Analyzer
	history  *history.Store
}

func setup(ctx context.Context, command string, args []string) (*env, error) {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	root, err := workspace.Root(ref)
	if err != nil {
		return nil, err
	}

	run, logErr := logging.Open(command, verbose)
	if logErr != nil {
		printWarning(fmt.Sprintf("logging disabled: %v", logErr))
	}
	logger := run.Logger.With("root", root)

	s, err := settings.Load(root)
	if err != nil {
		run.Close()
		return nil, err
	}
	if len(commandFlag) > 0 {
		s.Command = commandFlag
	}
	if analyzeTimeout > 0 {
		s.AnalyzeTimeout = analyzeTimeout
	}
	logger.Debug("settings loaded", "sources", s.Sources, "command", s.Command)

	a := knip.NewAnalyzer(logger)
	a.Command = s.Command
	a.AnalyzeTimeout = s.AnalyzeTimeout
	a.CleanTimeout = s.CleanTimeout

	e := &env{root: root, settings: s, run: run, logger: logger, analyzer: a}
	if s.History {
		e.history = openHistory(ctx, logger)
	}
	return e, nil
}

func openHistory(ctx context.Context, logger *slog.Logger) *history.Store {
	path, err := history.DefaultPath()
	if err != nil {
		logger.Warn("history disabled", "error", err)
		return nil
	}
	store, err := history.Open(ctx, path)
	if err != nil {
		logger.Warn("history disabled", "path", path, "error", err)
		return nil
	}
	return store
}

func (e *env) Close() {
	if e.history != nil {
		e.history.Close()
	}
	e.run.Close()
}

// scan runs the analyzer and records the result. The notice summarizes the
// scan and, when there is an earlier one, how the issue count changed.
func (e *env) scan(ctx context.Context, sink knip.ProgressSink) (*model.Report, model.Notice, error) {
	report, err := e.analyzer.Analyze(ctx, e.root, sink)
	if err != nil {
		e.logger.Error("scan failed", "error", err, "kind", model.KindOf(err).String())
		return nil, model.Notice{}, err
	}

	text := fmt.Sprintf("Scan complete: %d issues", report.Issues())
	if e.history != nil {
		prev, err := e.history.Last(ctx, e.root)
		if err != nil {
			e.logger.Warn("read history", "error", err)
		}
		if prev != nil {
			text += " (" + history.Compare(*prev, report).String() + ")"
		}
		if _, err := e.history.Record(ctx, e.root, report, time.Now()); err != nil {
			e.logger.Warn("record history", "error", err)
		}
	}
	return report, model.Info("%s", text), nil
}

// scannerFor returns the refresh scanner of a review session. The scan
// summary goes to notifier when one is given.
func scannerFor(e *env, sink knip.ProgressSink, notifier review.Notifier) review.Scanner {
	return func(ctx context.Context, root string) (*model.Report, error) {
		report, notice, err := e.scan(ctx, sink)
		if err == nil && notifier != nil {
			notifier.Notify(notice)
		}
		return report, err
	}
}

// spinnerSink shows analysis phases as the spinner suffix.
type spinnerSink struct {
	s *spinner.Spinner
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	return s
}

func (p spinnerSink) Report(ph knip.Phase) bool {
	p.s.Lock()
	p.s.Suffix = fmt.Sprintf(" %s (%d%%)", ph.Label, ph.Percent)
	p.s.Unlock()
	return true
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printWarning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(os.Stderr, "! %s\n", msg)
}
