// Package workspace locates the project a command operates on.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"knipclean/internal/manifest"
	"knipclean/internal/model"
)

// Root returns the nearest directory at or above ref that contains a
// package.json. ref may be a file or a directory; empty means the working
// directory.
func Root(ref string) (string, error) {
	if ref == "" {
		ref = "."
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return "", model.NewFault(model.FileSystemError, "resolve "+ref, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", model.NewFault(model.NoWorkspace, "",
			fmt.Errorf("%s does not exist; open a project folder", ref))
	}
	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for {
		if _, err := os.Stat(manifest.PathIn(dir)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", model.NewFault(model.NoWorkspace, "",
				fmt.Errorf("no %s found at or above %s; open a project folder", manifest.FileName, abs))
		}
		dir = parent
	}
}

// ErrOutsideRoot is wrapped by Resolve when a path leaves the project.
var ErrOutsideRoot = errors.New("path is outside the project")

// Resolve joins a project-relative, slash separated path onto root. Paths
// that would end up outside root are rejected with a FileSystemError.
func Resolve(root, rel string) (string, error) {
	if rel == "" {
		return "", model.NewFault(model.FileSystemError, "resolve path", errors.New("empty path"))
	}
	native := filepath.FromSlash(rel)
	if filepath.IsAbs(native) {
		return "", model.NewFault(model.FileSystemError, "resolve "+rel, ErrOutsideRoot)
	}
	abs := filepath.Join(root, native)
	back, err := filepath.Rel(root, abs)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", model.NewFault(model.FileSystemError, "resolve "+rel, ErrOutsideRoot)
	}
	return abs, nil
}
