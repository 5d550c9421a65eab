// Package review drives an interactive review of a knip report: it renders
// the report into a View and applies the actions the user picks.
package review

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"knipclean/internal/model"
)

// View is a presentation surface for a report.
type View interface {
	// Render shows the snapshot. It must be a pure function of its argument.
	Render(model.Snapshot)
	// OnAction registers the handler for user actions. The view calls it for
	// every action message, possibly from another goroutine.
	OnAction(func(model.Action))
	// Dispose tears the view down. It is called at most once.
	Dispose()
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(model.Notice)
}

// Executor applies a remediation in a project root.
type Executor interface {
	Execute(ctx context.Context, root string, action model.Action) (model.Notice, error)
}

// Scanner produces a fresh report for a refresh.
type Scanner func(ctx context.Context, root string) (*model.Report, error)

// State of a session.
type State int32

const (
	Rendering State = iota
	AwaitingAction
	Applying
	Closed
)

func (s State) String() string {
	switch s {
	case Rendering:
		return "rendering"
	case AwaitingAction:
		return "awaiting action"
	case Applying:
		return "applying"
	}
	return "closed"
}

// Session binds one report to one view.
type Session struct {
	ctx      context.Context
	root     string
	view     View
	notifier Notifier
	executor Executor
	scanner  Scanner
	logger   *slog.Logger

	mu       sync.Mutex // serializes action handling
	snapshot model.Snapshot

	state       atomic.Int32
	disposeOnce sync.Once
}

// Deps are the collaborators a session needs.
type Deps struct {
	Notifier Notifier
	Executor Executor
	Scanner  Scanner
	Logger   *slog.Logger
}

// NewSession renders report into view and starts accepting actions.
func NewSession(ctx context.Context, root string, report *model.Report, view View, deps Deps) *Session {
	if report == nil {
		report = model.EmptyReport()
	}
	s := &Session{
		ctx:      ctx,
		root:     root,
		view:     view,
		notifier: deps.Notifier,
		executor: deps.Executor,
		scanner:  deps.Scanner,
		logger:   deps.Logger,
		snapshot: model.Snapshot{Root: root, Report: report, ScannedAt: time.Now()},
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.state.Store(int32(Rendering))
	view.OnAction(s.handle)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.render()
	s.setState(AwaitingAction)
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Snapshot returns what was rendered last.
func (s *Session) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Dispose closes the session and its view. It is safe to call from any
// goroutine and more than once; messages arriving afterwards are ignored.
func (s *Session) Dispose() {
	s.disposeOnce.Do(func() {
		s.state.Store(int32(Closed))
		s.logger.Debug("review session closed", "root", s.root)
		s.view.Dispose()
	})
}

func (s *Session) handle(action model.Action) {
	if s.State() == Closed {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Disposed while waiting for the previous action.
	if s.State() == Closed {
		return
	}

	s.setState(Applying)
	if action.Kind == model.ActionRefresh {
		s.refresh()
	} else {
		s.apply(action)
	}
	if s.State() == Closed {
		return
	}
	s.render()
	s.setState(AwaitingAction)
}

func (s *Session) apply(action model.Action) {
	if s.executor == nil {
		return
	}
	notice, err := s.executor.Execute(s.ctx, s.root, action)
	if err != nil {
		s.logger.Warn("action failed", "action", action.String(), "error", err)
		s.notify(model.Error(err))
		return
	}
	s.notify(notice)
	if notice.Level == model.LevelInfo && action.Kind != model.ActionOpenFile {
		s.snapshot.Applied = append(s.snapshot.Applied, action)
	}
}

func (s *Session) refresh() {
	if s.scanner == nil {
		return
	}
	report, err := s.scanner(s.ctx, s.root)
	if err != nil {
		s.logger.Warn("refresh failed", "root", s.root, "error", err)
		s.notify(model.Error(err))
		return
	}
	s.snapshot = model.Snapshot{Root: s.root, Report: report, ScannedAt: time.Now()}
}

func (s *Session) render() {
	s.setState(Rendering)
	s.view.Render(s.snapshot)
}

// setState never leaves Closed.
func (s *Session) setState(next State) {
	for {
		cur := s.state.Load()
		if State(cur) == Closed {
			return
		}
		if s.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

func (s *Session) notify(n model.Notice) {
	if s.notifier != nil && n.Text != "" {
		s.notifier.Notify(n)
	}
}
