package knip

import (
	"os"
	"path/filepath"
)

// PackageRunner knows how a package manager executes a locally installed
// binary.
type PackageRunner interface {
	Command(tool string, args ...string) []string
	Name() string
}

// NpxRunner runs tools through npx.
type NpxRunner struct{}

func (NpxRunner) Command(tool string, args ...string) []string {
	return append([]string{"npx", tool}, args...)
}

func (NpxRunner) Name() string { return "npm" }

// PnpmRunner runs tools through pnpm exec.
type PnpmRunner struct{}

func (PnpmRunner) Command(tool string, args ...string) []string {
	return append([]string{"pnpm", "exec", tool}, args...)
}

func (PnpmRunner) Name() string { return "pnpm" }

// YarnRunner runs tools through yarn.
type YarnRunner struct{}

func (YarnRunner) Command(tool string, args ...string) []string {
	return append([]string{"yarn", tool}, args...)
}

func (YarnRunner) Name() string { return "yarn" }

// BunRunner runs tools through bunx.
type BunRunner struct{}

func (BunRunner) Command(tool string, args ...string) []string {
	return append([]string{"bunx", tool}, args...)
}

func (BunRunner) Name() string { return "bun" }

// FixedRunner uses a command prefix from the settings, e.g. ["pnpm", "exec", "knip"].
type FixedRunner []string

func (f FixedRunner) Command(_ string, args ...string) []string {
	return append(append([]string(nil), f...), args...)
}

func (f FixedRunner) Name() string { return "custom" }

// DetectRunner picks the package runner from the lockfile in root,
// defaulting to npx.
func DetectRunner(root string) PackageRunner {
	lockfiles := []struct {
		name   string
		runner PackageRunner
	}{
		{"pnpm-lock.yaml", PnpmRunner{}},
		{"yarn.lock", YarnRunner{}},
		{"bun.lockb", BunRunner{}},
		{"bun.lock", BunRunner{}},
	}
	for _, lf := range lockfiles {
		if _, err := os.Stat(filepath.Join(root, lf.name)); err == nil {
			return lf.runner
		}
	}
	return NpxRunner{}
}
