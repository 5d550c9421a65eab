package review

import (
	"context"
	"sync"

	"knipclean/internal/model"
)

// Manager owns the single live review session of a process.
type Manager struct {
	deps Deps

	mu      sync.Mutex
	current *Session
	closed  bool
}

func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps}
}

// Show disposes the current session, if any, and opens a new one for report.
// After Close it only disposes view and returns nil.
func (m *Manager) Show(ctx context.Context, root string, report *model.Report, view View) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		view.Dispose()
		return nil
	}
	if m.current != nil {
		m.current.Dispose()
	}
	m.current = NewSession(ctx, root, report, view, m.deps)
	return m.current
}

// Current returns the live session or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close disposes the live session. The manager opens no sessions afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.current != nil {
		m.current.Dispose()
		m.current = nil
	}
}
