// Package logging sets up the per-run JSON log file. Nothing is logged to
// the terminal so that the interactive UI stays intact.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/uuid"
)

// Run is the logger of one invocation.
type Run struct {
	ID     string
	Path   string // empty when logging is discarded
	Logger *slog.Logger
	closer io.Closer
}

func (r *Run) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Open creates knipclean-<timestamp>-<id>.log in the log directory. When
// the directory is unusable it returns a discarding logger and the error.
func Open(command string, verbose bool) (*Run, error) {
	id := uuid.Must(uuid.NewV4()).String()
	run := &Run{ID: id, Logger: slog.New(slog.DiscardHandler)}

	dir, err := Dir()
	if err != nil {
		return run, err
	}
	name := fmt.Sprintf("knipclean-%s-%s.log", time.Now().Format("20060102-150405"), id[:8])
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return run, fmt.Errorf("open log file: %w", err)
	}

	run.Path = path
	run.closer = f
	run.Logger = New(f, verbose).With("run_id", id, "command", command)
	return run, nil
}

// New returns a JSON logger writing to w.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Dir returns the platform log directory, creating it if needed.
// - macOS: ~/Library/Logs/knipclean/
// - Linux: ~/.local/state/knipclean/ (XDG Base Directory spec)
// - Windows: %LOCALAPPDATA%\knipclean\logs\
func Dir() (string, error) {
	var logDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		logDir = filepath.Join(home, "Library", "Logs", "knipclean")

	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		logDir = filepath.Join(localAppData, "knipclean", "logs")

	default:
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			stateHome = filepath.Join(home, ".local", "state")
		}
		logDir = filepath.Join(stateHome, "knipclean")
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create log directory %s: %w", logDir, err)
	}
	return logDir, nil
}
