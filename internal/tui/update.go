package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"knipclean/internal/knip"
	"knipclean/internal/manifest"
	"knipclean/internal/model"
	"knipclean/internal/remedy"
	"knipclean/internal/workspace"
)

// MsgSnapshot carries a rendered snapshot from the review session.
type MsgSnapshot model.Snapshot

// MsgNotice carries a notice for the status line.
type MsgNotice model.Notice

// MsgProgress reports a scan phase.
type MsgProgress knip.Phase

// MsgFailed reports a scan that produced no report.
type MsgFailed struct{ Err error }

type msgActionDone struct{}

type msgClearNotice struct{ at time.Time }

type msgEdit struct {
	path   string
	editor string
	done   chan<- error
}

type msgEditDone struct {
	err  error
	done chan<- error
}

const noticeTTL = 4 * time.Second

// previewLines bounds how much of a file the preview pane reads.
const previewLines = 500

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.resize()
		return m, nil

	case MsgProgress:
		m.Phase = knip.Phase(msg)
		if !m.Ready || m.Busy {
			m.Loading = true
		}
		return m, m.Progress.SetPercent(float64(m.Phase.Percent) / 100)

	case progress.FrameMsg:
		pm, cmd := m.Progress.Update(msg)
		m.Progress = pm.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case MsgSnapshot:
		m.Snapshot = model.Snapshot(msg)
		m.Ready = true
		m.Loading = false
		m.Err = nil
		m.rows = buildRows(m.Snapshot)
		m.applyFilter()
		m.refreshPreview()
		return m, nil

	case MsgNotice:
		m.Message = model.Notice(msg)
		m.MessageTime = time.Now()
		at := m.MessageTime
		return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return msgClearNotice{at: at} })

	case msgClearNotice:
		if msg.at.Equal(m.MessageTime) {
			m.Message = model.Notice{}
		}
		return m, nil

	case MsgFailed:
		if errors.Is(msg.Err, model.ErrCanceled) {
			return m, tea.Quit
		}
		m.Loading = false
		m.Err = msg.Err
		return m, nil

	case msgActionDone:
		m.Busy = false
		m.Loading = false
		m.refreshPreview()
		return m, nil

	case msgEdit:
		c := remedy.EditorCommand(msg.editor, msg.path)
		done := msg.done
		return m, tea.ExecProcess(c, func(err error) tea.Msg { return msgEditDone{err: err, done: done} })

	case msgEditDone:
		msg.done <- msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.Confirming != nil {
		switch msg.String() {
		case "y", "Y":
			action := *m.Confirming
			m.Confirming = nil
			return m.run(action)
		case "n", "N", "esc":
			m.Confirming = nil
		}
		return m, nil
	}

	if m.Filtering {
		switch msg.String() {
		case "enter", "esc":
			m.Filtering = false
			m.FilterInput.Blur()
			if msg.String() == "esc" {
				m.FilterInput.SetValue("")
			}
			m.applyFilter()
			m.refreshPreview()
			return m, nil
		}
		m.FilterInput, cmd = m.FilterInput.Update(msg)
		m.applyFilter()
		m.refreshPreview()
		return m, cmd
	}

	if m.ShowHelp {
		if key.Matches(msg, m.Keys.Help, m.Keys.Cancel, m.Keys.Quit) {
			m.ShowHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Cancel):
		if m.Loading {
			if m.cancelScan != nil {
				m.cancelScan()
			}
			m.Phase.Label = "Canceling..."
			return m, nil
		}
		if m.FilterInput.Value() != "" {
			m.FilterInput.SetValue("")
			m.applyFilter()
			m.refreshPreview()
		}
		return m, nil
	case key.Matches(msg, m.Keys.Help):
		m.ShowHelp = true
		return m, nil
	}

	if !m.Ready || m.Loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Up):
		if m.RightFocus {
			m.Preview.LineUp(1)
		} else if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.refreshPreview()
		}
	case key.Matches(msg, m.Keys.Down):
		if m.RightFocus {
			m.Preview.LineDown(1)
		} else if m.SelectedIdx < len(m.visible)-1 {
			m.SelectedIdx++
			m.refreshPreview()
		}
	case key.Matches(msg, m.Keys.Focus):
		m.RightFocus = !m.RightFocus
	case key.Matches(msg, m.Keys.Filter):
		m.Filtering = true
		m.FilterInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.Keys.Open):
		if r := m.selected(); r != nil {
			return m.run(r.open)
		}
	case key.Matches(msg, m.Keys.Remove):
		r := m.selected()
		switch {
		case r == nil || m.Busy:
		case r.remove == nil:
			return m.note(model.Warning("Unused exports are fixed in the file itself; press enter to open it"))
		case m.Snapshot.IsApplied(*r.remove):
			return m.note(model.Info("%s is already done", r.remove))
		default:
			action := *r.remove
			m.Confirming = &action
		}
	case key.Matches(msg, m.Keys.Refresh):
		if m.Busy {
			return m, nil
		}
		m.Loading = true
		m.Phase = knip.PhaseInit
		m.Progress.SetPercent(0)
		next, run := m.run(model.RequestRefresh())
		return next, tea.Batch(run, m.Spinner.Tick)
	}
	return m, nil
}

// run hands action to the session on a command goroutine. Only one action
// is in flight at a time.
func (m AppModel) run(action model.Action) (tea.Model, tea.Cmd) {
	if m.Busy || m.dispatch == nil {
		return m, nil
	}
	m.Busy = true
	dispatch := m.dispatch
	return m, func() tea.Msg {
		dispatch(action)
		return msgActionDone{}
	}
}

func (m AppModel) note(n model.Notice) (tea.Model, tea.Cmd) {
	return m.Update(MsgNotice(n))
}

func (m *AppModel) resize() {
	netWidth := m.WindowSize.Width - 6
	if netWidth < 20 {
		netWidth = 20
	}
	rightWidth := netWidth - netWidth/2
	boxHeight := m.WindowSize.Height - 6
	if boxHeight < 6 {
		boxHeight = 6
	}
	// Title and blank line above the preview text
	m.Preview.Width = rightWidth
	m.Preview.Height = boxHeight - 2 - 2
	if m.Preview.Height < 1 {
		m.Preview.Height = 1
	}

	m.Progress.Width = m.WindowSize.Width - 10
	if m.Progress.Width > 60 {
		m.Progress.Width = 60
	}
	m.Help.Width = m.WindowSize.Width
}

func buildRows(s model.Snapshot) []row {
	var rows []row
	if s.Report == nil {
		return rows
	}
	r := s.Report
	for _, f := range r.Files {
		del := model.DeleteFile(f)
		rows = append(rows, row{section: sectionFiles, label: f, remove: &del, open: model.OpenFile(f)})
	}
	for _, d := range r.Dependencies {
		rm := model.RemoveDependency(d, false)
		rows = append(rows, row{section: sectionDependencies, label: d, remove: &rm, open: model.OpenFile(manifest.FileName)})
	}
	for _, d := range r.DevDependencies {
		rm := model.RemoveDependency(d, true)
		rows = append(rows, row{section: sectionDevDependencies, label: d, remove: &rm, open: model.OpenFile(manifest.FileName)})
	}
	for _, g := range r.Exports {
		rows = append(rows, row{
			section: sectionExports,
			label:   fmt.Sprintf("%s: %s", g.File, strings.Join(g.Names, ", ")),
			open:    model.OpenFile(g.File),
		})
	}
	return rows
}

func (m *AppModel) applyFilter() {
	term := strings.ToLower(strings.TrimSpace(m.FilterInput.Value()))
	m.visible = nil
	for i, r := range m.rows {
		if term == "" || strings.Contains(strings.ToLower(r.label), term) {
			m.visible = append(m.visible, i)
		}
	}

	// Bounds check
	if m.SelectedIdx >= len(m.visible) {
		if len(m.visible) > 0 {
			m.SelectedIdx = len(m.visible) - 1
		} else {
			m.SelectedIdx = 0
		}
	}
}

func (m AppModel) selected() *row {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.visible) {
		return nil
	}
	return &m.rows[m.visible[m.SelectedIdx]]
}

func (m *AppModel) refreshPreview() {
	m.Preview.SetContent(m.previewText())
	m.Preview.GotoTop()
}

func (m AppModel) previewText() string {
	r := m.selected()
	if r == nil {
		return ""
	}

	switch r.section {
	case sectionDependencies, sectionDevDependencies:
		mf, err := manifest.Load(m.Root)
		if err != nil {
			return err.Error()
		}
		if mf.Has(r.remove.Section(), r.remove.Name) {
			return fmt.Sprintf("%s is declared in %s of %s.\n\nknip found no import of it.", r.remove.Name, r.remove.Section(), manifest.FileName)
		}
		return fmt.Sprintf("%s is no longer declared in %s.", r.remove.Name, r.remove.Section())
	}

	abs, err := workspace.Resolve(m.Root, r.open.Path)
	if err != nil {
		return err.Error()
	}
	var b strings.Builder
	if names := m.Snapshot.Report.ExportNames(r.open.Path); r.section == sectionExports && len(names) > 0 {
		fmt.Fprintf(&b, "Unused: %s\n\n", strings.Join(names, ", "))
	}
	b.WriteString(model.ReadPreview(abs, previewLines).String())
	return b.String()
}
