// Package remedy applies user-approved remediations to a project.
package remedy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"knipclean/internal/manifest"
	"knipclean/internal/model"
	"knipclean/internal/workspace"
)

// Executor applies one action at a time. Actions are independent: a failed
// action leaves nothing half done for the next one.
type Executor struct {
	Viewer Viewer
	Logger *slog.Logger
}

func NewExecutor(viewer Viewer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{Viewer: viewer, Logger: logger}
}

// Execute applies action in root. Conditions the user should hear about but
// that are not failures (a file already gone, a dependency already removed)
// come back as a Warning notice with a nil error.
func (e *Executor) Execute(ctx context.Context, root string, action model.Action) (model.Notice, error) {
	if err := ctx.Err(); err != nil {
		return model.Notice{}, model.NewFault(model.Canceled, action.String(), err)
	}
	e.Logger.Info("applying action", "root", root, "action", action.String())

	switch action.Kind {
	case model.ActionDeleteFile:
		return e.deleteFile(root, action.Path)
	case model.ActionOpenFile:
		return e.openFile(root, action.Path)
	case model.ActionRemoveDependency:
		return e.removeDependency(root, action.Name, action.Section())
	}
	return model.Notice{}, model.NewFault(model.ParseError, "execute",
		fmt.Errorf("%s is not a remediation", action.Kind))
}

func (e *Executor) deleteFile(root, rel string) (model.Notice, error) {
	abs, err := workspace.Resolve(root, rel)
	if err != nil {
		return model.Notice{}, err
	}
	if _, err := os.Lstat(abs); errors.Is(err, fs.ErrNotExist) {
		return model.Warning("File not found: %s", rel), nil
	}
	if err := os.Remove(abs); err != nil {
		e.Logger.Error("delete failed", "path", abs, "error", err)
		return model.Notice{}, model.NewFault(model.FileSystemError, "delete "+rel, err)
	}
	return model.Info("Deleted %s", rel), nil
}

func (e *Executor) openFile(root, rel string) (model.Notice, error) {
	abs, err := workspace.Resolve(root, rel)
	if err != nil {
		return model.Notice{}, err
	}
	if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) {
		return model.Warning("File not found: %s", rel), nil
	}
	if e.Viewer == nil {
		return model.Notice{}, model.NewFault(model.FileSystemError, "open "+rel, errors.New("no viewer available"))
	}
	if err := e.Viewer.Open(abs); err != nil {
		return model.Notice{}, model.NewFault(model.FileSystemError, "open "+rel, err)
	}
	return model.Info("Opened %s", rel), nil
}

func (e *Executor) removeDependency(root, name, section string) (model.Notice, error) {
	m, err := manifest.Load(root)
	if err != nil {
		return model.Notice{}, err
	}
	removed, err := m.Remove(section, name)
	if err != nil {
		return model.Notice{}, err
	}
	if !removed {
		return model.Warning("%s is not listed in %s", name, section), nil
	}
	if err := m.Save(); err != nil {
		e.Logger.Error("manifest write failed", "path", m.Path, "error", err)
		return model.Notice{}, err
	}
	return model.Info("Removed %s from %s", name, section), nil
}
