package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Focus   key.Binding
	Open    key.Binding
	Remove  key.Binding
	Refresh key.Binding
	Filter  key.Binding
	Help    key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
		Open:    key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "open")),
		Remove:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete/remove")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Remove, k.Refresh, k.Filter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus},
		{k.Open, k.Remove, k.Refresh},
		{k.Filter, k.Cancel, k.Help, k.Quit},
	}
}
