// Package tui is the terminal presentation of a review: a bubbletea program
// that shows scan progress, then the report, and forwards the user's picks
// to the review session.
package tui

import (
	"errors"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"knipclean/internal/knip"
	"knipclean/internal/model"
	"knipclean/internal/remedy"
)

// Panel adapts a bubbletea program to the review and scan interfaces. All
// of its methods may be called from any goroutine.
type Panel struct {
	program *tea.Program

	mu      sync.Mutex
	handler func(model.Action)

	canceled atomic.Bool
	finished chan struct{}
}

// NewPanel builds the program for root. Run must be called to show it.
func NewPanel(root string, opts ...tea.ProgramOption) *Panel {
	p := &Panel{finished: make(chan struct{})}
	m := InitialModel(root, p.dispatch, p.cancel)
	p.program = tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	return p
}

// Run shows the program until the user quits or the panel is disposed.
func (p *Panel) Run() error {
	defer close(p.finished)
	_, err := p.program.Run()
	return err
}

// Done is closed once Run has returned.
func (p *Panel) Done() <-chan struct{} {
	return p.finished
}

// Render implements review.View.
func (p *Panel) Render(s model.Snapshot) {
	p.program.Send(MsgSnapshot(s))
}

// OnAction implements review.View.
func (p *Panel) OnAction(h func(model.Action)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

// Dispose implements review.View.
func (p *Panel) Dispose() {
	p.program.Quit()
}

// Notify implements review.Notifier.
func (p *Panel) Notify(n model.Notice) {
	p.program.Send(MsgNotice(n))
}

// Report implements knip.ProgressSink. It returns false once the user asked
// to cancel the scan or left the program.
func (p *Panel) Report(phase knip.Phase) bool {
	if phase == knip.PhaseInit {
		p.canceled.Store(false)
	}
	select {
	case <-p.finished:
		return false
	default:
	}
	p.program.Send(MsgProgress(phase))
	return !p.canceled.Load()
}

// Fail shows a scan failure that left nothing to review.
func (p *Panel) Fail(err error) {
	p.program.Send(MsgFailed{Err: err})
}

// Viewer returns a viewer that suspends the program and runs a terminal
// editor on the file.
func (p *Panel) Viewer(editor string) remedy.Viewer {
	return remedy.ViewerFunc(func(path string) error {
		done := make(chan error, 1)
		p.program.Send(msgEdit{path: path, editor: editor, done: done})
		select {
		case err := <-done:
			return err
		case <-p.finished:
			return errors.New("terminal closed")
		}
	})
}

func (p *Panel) dispatch(a model.Action) {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h(a)
	}
}

func (p *Panel) cancel() {
	p.canceled.Store(true)
}
