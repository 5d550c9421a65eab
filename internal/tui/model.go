package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"knipclean/internal/knip"
	"knipclean/internal/model"
)

// section groups the rows of the report list.
type section int

const (
	sectionFiles section = iota
	sectionDependencies
	sectionDevDependencies
	sectionExports
)

func (s section) title() string {
	switch s {
	case sectionDependencies:
		return "Unused dependencies"
	case sectionDevDependencies:
		return "Unused devDependencies"
	case sectionExports:
		return "Unused exports"
	}
	return "Unused files"
}

func (s section) icon() string {
	switch s {
	case sectionDependencies:
		return model.IconDep
	case sectionDevDependencies:
		return model.IconDevDep
	case sectionExports:
		return model.IconExport
	}
	return model.IconFile
}

// row is one selectable line of the report list.
type row struct {
	section section
	label   string
	// remove is the destructive action of the row, if any.
	remove *model.Action
	// open is the file the row refers to.
	open model.Action
}

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Root     string
	Snapshot model.Snapshot
	Ready    bool // a report has been rendered
	Err      error

	// Scan progress
	Loading  bool
	Phase    knip.Phase
	Progress progress.Model
	Spinner  spinner.Model

	// UI State
	rows        []row
	visible     []int // indices into rows after filtering
	SelectedIdx int
	RightFocus  bool
	WindowSize  tea.WindowSizeMsg
	ShowHelp    bool

	// Filter State
	Filtering   bool
	FilterInput textinput.Model

	// Pending destructive action awaiting y/n
	Confirming *model.Action

	// An action handler is running; action keys are ignored meanwhile.
	Busy bool

	// Last notice
	Message     model.Notice
	MessageTime time.Time

	// Components
	Preview viewport.Model
	Help    help.Model
	Keys    keyMap

	dispatch   func(model.Action)
	cancelScan func()
}

// InitialModel returns the state shown while the first scan runs. dispatch
// runs an action to completion; cancel asks the running scan to stop.
func InitialModel(root string, dispatch func(model.Action), cancel func()) AppModel {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.CharLimit = 80
	ti.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return AppModel{
		Root:        root,
		Loading:     true,
		Phase:       knip.PhaseInit,
		Progress:    progress.New(progress.WithDefaultGradient()),
		Spinner:     sp,
		FilterInput: ti,
		Preview:     viewport.New(0, 0),
		Help:        help.New(),
		Keys:        defaultKeys(),
		dispatch:    dispatch,
		cancelScan:  cancel,
	}
}
