// Package knip runs the knip analyzer as a subprocess and turns its output
// into a model.Report.
package knip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"knipclean/internal/config"
	"knipclean/internal/manifest"
	"knipclean/internal/model"
)

const (
	// ToolName is the package that has to be declared in package.json.
	ToolName = "knip"

	DefaultAnalyzeTimeout = 60 * time.Second
	DefaultCleanTimeout   = 120 * time.Second
)

// Analyzer invokes knip for a project root.
type Analyzer struct {
	Runner         Runner
	Resolver       *config.Resolver
	Logger         *slog.Logger
	AnalyzeTimeout time.Duration
	CleanTimeout   time.Duration
	// Command overrides lockfile detection, e.g. ["pnpm", "exec", "knip"].
	Command []string
}

func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		Runner:         ExecRunner{},
		Resolver:       config.NewResolver(logger),
		Logger:         logger,
		AnalyzeTimeout: DefaultAnalyzeTimeout,
		CleanTimeout:   DefaultCleanTimeout,
	}
}

// Analyze runs `knip --reporter json` in root. The sink (may be nil) is
// consulted between phases; once it returns false no further phase starts
// and a Canceled fault is returned. A running knip process is only bounded
// by AnalyzeTimeout, never interrupted by ctx cancellation.
func (a *Analyzer) Analyze(ctx context.Context, root string, sink ProgressSink) (*model.Report, error) {
	if sink == nil {
		sink = nopSink{}
	}
	advance := func(p Phase) error {
		a.Logger.Debug("analysis phase", "root", root, "percent", p.Percent, "phase", p.Label)
		if !sink.Report(p) || ctx.Err() != nil {
			a.Logger.Info("analysis canceled", "root", root, "phase", p.Label)
			return model.NewFault(model.Canceled, "analyze", errors.New("analysis canceled"))
		}
		return nil
	}

	if err := advance(PhaseInit); err != nil {
		return nil, err
	}
	if err := a.verifyInstalled(root); err != nil {
		return nil, err
	}

	if err := advance(PhaseConfig); err != nil {
		return nil, err
	}
	path, created, err := a.Resolver.Ensure(root)
	if err != nil {
		return nil, err
	}
	if created {
		a.Logger.Info("synthesized knip configuration", "path", path)
	}

	if err := advance(PhaseRunning); err != nil {
		return nil, err
	}
	timeStart := time.Now()
	res, err := a.run(ctx, root, a.timeout(a.AnalyzeTimeout, DefaultAnalyzeTimeout), "--reporter", "json")
	if err != nil {
		return nil, err
	}
	a.Logger.Info("knip finished",
		"root", root,
		"exit_code", res.ExitCode,
		"stdout_bytes", len(res.Stdout),
		"duration", time.Since(timeStart))

	if err := advance(PhaseParsing); err != nil {
		return nil, err
	}
	report, err := DecodeReport(res)
	if err != nil {
		a.Logger.Error("knip output unusable", "root", root, "error", err)
		return nil, err
	}

	if err := advance(PhaseDone); err != nil {
		return nil, err
	}
	return report, nil
}

// Clean runs `knip --fix` in root.
func (a *Analyzer) Clean(ctx context.Context, root string) error {
	if err := a.verifyInstalled(root); err != nil {
		return err
	}
	res, err := a.run(ctx, root, a.timeout(a.CleanTimeout, DefaultCleanTimeout), "--fix")
	if err != nil {
		return err
	}
	a.Logger.Info("knip --fix finished", "root", root, "exit_code", res.ExitCode)
	return CleanOutcome(res)
}

// CommandLine returns the argv used to run knip in root.
func (a *Analyzer) CommandLine(root string, args ...string) []string {
	if len(a.Command) > 0 {
		return FixedRunner(a.Command).Command(ToolName, args...)
	}
	return DetectRunner(root).Command(ToolName, args...)
}

func (a *Analyzer) verifyInstalled(root string) error {
	m, err := manifest.Load(root)
	if err == nil && m.Declares(ToolName) {
		return nil
	}
	if err != nil {
		a.Logger.Warn("cannot read manifest", "root", root, "error", err)
	}
	return model.NewFault(model.ToolNotInstalled, "",
		fmt.Errorf("knip is not installed in %s; run: npm install -D knip", root))
}

func (a *Analyzer) run(ctx context.Context, root string, timeout time.Duration, args ...string) (RunResult, error) {
	argv := a.CommandLine(root, args...)
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	a.Logger.Debug("running knip", "root", root, "argv", argv, "timeout", timeout)
	res, err := a.Runner.Run(tctx, root, argv[0], argv[1:]...)
	if tctx.Err() == context.DeadlineExceeded {
		return res, model.NewFault(model.ProcessTimeout, argv[0],
			fmt.Errorf("knip did not finish within %s", timeout))
	}
	if err != nil {
		return res, model.NewFault(model.ProcessFailed, argv[0], err)
	}
	return res, nil
}

func (a *Analyzer) timeout(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
