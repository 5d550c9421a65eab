package model

import (
	"encoding/json"
	"fmt"
)

// ActionKind tags the shape of an Action.
type ActionKind int

const (
	ActionDeleteFile ActionKind = iota + 1
	ActionOpenFile
	ActionRemoveDependency
	ActionRefresh
)

func (k ActionKind) String() string {
	switch k {
	case ActionDeleteFile:
		return "delete-file"
	case ActionOpenFile:
		return "open-file"
	case ActionRemoveDependency:
		return "remove-dependency"
	case ActionRefresh:
		return "refresh"
	}
	return "unknown"
}

// Action is a user-approved remediation. It never carries a project root;
// the session that dispatches it supplies one.
type Action struct {
	Kind ActionKind
	Path string // DeleteFile, OpenFile
	Name string // RemoveDependency
	Dev  bool   // RemoveDependency: devDependencies instead of dependencies
}

func DeleteFile(path string) Action { return Action{Kind: ActionDeleteFile, Path: path} }

func OpenFile(path string) Action { return Action{Kind: ActionOpenFile, Path: path} }

func RemoveDependency(name string, dev bool) Action {
	return Action{Kind: ActionRemoveDependency, Name: name, Dev: dev}
}

func RequestRefresh() Action { return Action{Kind: ActionRefresh} }

// Section returns the manifest section a RemoveDependency targets.
func (a Action) Section() string {
	if a.Dev {
		return "devDependencies"
	}
	return "dependencies"
}

func (a Action) String() string {
	switch a.Kind {
	case ActionDeleteFile, ActionOpenFile:
		return fmt.Sprintf("%s %s", a.Kind, a.Path)
	case ActionRemoveDependency:
		return fmt.Sprintf("%s %s (%s)", a.Kind, a.Name, a.Section())
	}
	return a.Kind.String()
}

// Wire commands exchanged with presentation layers.
const (
	CommandDeleteFile          = "deleteFile"
	CommandOpenFile            = "openFile"
	CommandRemoveDependency    = "removeDependency"
	CommandRemoveDevDependency = "removeDevDependency"
	CommandRefresh             = "refresh"
)

// Message is the inbound action message of a presentation layer.
type Message struct {
	Command    string `json:"command"`
	FilePath   string `json:"filePath,omitempty"`
	Dependency string `json:"dependency,omitempty"`
}

// Action converts a wire message into an Action.
func (m Message) Action() (Action, error) {
	switch m.Command {
	case CommandDeleteFile, CommandOpenFile:
		if m.FilePath == "" {
			return Action{}, NewFault(ParseError, "decode message", fmt.Errorf("%s: filePath is required", m.Command))
		}
		if m.Command == CommandDeleteFile {
			return DeleteFile(m.FilePath), nil
		}
		return OpenFile(m.FilePath), nil
	case CommandRemoveDependency, CommandRemoveDevDependency:
		if m.Dependency == "" {
			return Action{}, NewFault(ParseError, "decode message", fmt.Errorf("%s: dependency is required", m.Command))
		}
		return RemoveDependency(m.Dependency, m.Command == CommandRemoveDevDependency), nil
	case CommandRefresh:
		return RequestRefresh(), nil
	}
	return Action{}, NewFault(ParseError, "decode message", fmt.Errorf("unknown command %q", m.Command))
}

// Message converts an Action into its wire message.
func (a Action) Message() Message {
	switch a.Kind {
	case ActionDeleteFile:
		return Message{Command: CommandDeleteFile, FilePath: a.Path}
	case ActionOpenFile:
		return Message{Command: CommandOpenFile, FilePath: a.Path}
	case ActionRemoveDependency:
		if a.Dev {
			return Message{Command: CommandRemoveDevDependency, Dependency: a.Name}
		}
		return Message{Command: CommandRemoveDependency, Dependency: a.Name}
	}
	return Message{Command: CommandRefresh}
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Message())
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	act, err := m.Action()
	if err != nil {
		return err
	}
	*a = act
	return nil
}
