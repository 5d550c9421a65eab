// Package settings loads user preferences from YAML files.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectFile is looked up in the project root.
const ProjectFile = ".knipclean.yaml"

// Settings are the user preferences.
type Settings struct {
	// Command runs knip, e.g. [pnpm, exec, knip]. Empty means detect from
	// the lockfile.
	Command           []string      `yaml:"command"`
	AnalyzeTimeout    time.Duration `yaml:"analyzeTimeout"`
	CleanTimeout      time.Duration `yaml:"cleanTimeout"`
	ShowNotifications bool          `yaml:"showNotifications"`
	History           bool          `yaml:"history"`
	Editor            string        `yaml:"editor"`
	Opener            string        `yaml:"opener"`
	WebAddr           string        `yaml:"webAddr"`

	// Sources lists the files that were applied, in order.
	Sources []string `yaml:"-"`
}

func Defaults() Settings {
	return Settings{
		AnalyzeTimeout:    60 * time.Second,
		CleanTimeout:      120 * time.Second,
		ShowNotifications: true,
		History:           true,
		WebAddr:           "localhost:8080",
	}
}

// Load applies the user file and then the project file of root on top of
// the defaults. Missing files are skipped.
func Load(root string) (Settings, error) {
	s := Defaults()
	var paths []string
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	if root != "" {
		paths = append(paths, filepath.Join(root, ProjectFile))
	}
	for _, p := range paths {
		if err := s.apply(p); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (s *Settings) apply(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if s.AnalyzeTimeout < 0 || s.CleanTimeout < 0 {
		return fmt.Errorf("parse %s: timeouts must not be negative", path)
	}
	s.Sources = append(s.Sources, path)
	return nil
}

// ConfigDir returns the per-user configuration directory.
// - macOS: ~/Library/Application Support/knipclean
// - elsewhere: $XDG_CONFIG_HOME/knipclean or ~/.config/knipclean
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("config directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "knipclean"), nil
}
