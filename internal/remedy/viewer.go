package remedy

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Viewer opens a file for the user.
type Viewer interface {
	Open(path string) error
}

// ViewerFunc adapts a function to Viewer.
type ViewerFunc func(path string) error

func (f ViewerFunc) Open(path string) error { return f(path) }

// SystemViewer hands the file to the desktop's default application.
type SystemViewer struct {
	// Opener replaces the platform default, e.g. "code -r".
	Opener string
}

func (v SystemViewer) Open(path string) error {
	argv := v.command(path)
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// The opener may outlive us; reap it in the background.
	go cmd.Wait()
	return nil
}

func (v SystemViewer) command(path string) []string {
	if fields := strings.Fields(v.Opener); len(fields) > 0 {
		return append(fields, path)
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{"open", path}
	case "windows":
		return []string{"cmd", "/c", "start", "", path}
	default:
		return []string{"xdg-open", path}
	}
}

// EditorCommand builds the command that edits path in a terminal editor:
// the given editor, else $VISUAL, else $EDITOR, else vi.
func EditorCommand(editor, path string) *exec.Cmd {
	for _, candidate := range []string{editor, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return exec.Command(fields[0], append(fields[1:], path)...)
		}
	}
	return exec.Command("vi", path)
}
