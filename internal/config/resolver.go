// Package config locates the knip configuration of a project and writes a
// default one when none exists.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"knipclean/internal/manifest"
	"knipclean/internal/model"
)

// Filenames are the configuration files knip recognizes, in lookup order.
var Filenames = []string{
	"knip.config.ts",
	"knip.config.js",
	"knip.json",
	".kniprc.json",
}

// DefaultFilename is the file written by Synthesize.
const DefaultFilename = "knip.config.ts"

// DefaultEntries seed the entry list of a synthesized configuration.
var DefaultEntries = []string{"src/index.ts", "src/main.tsx", "src/main.ts", "src/app.ts"}

// ErrNotFound is returned by Resolve when no configuration file exists.
var ErrNotFound = errors.New("no knip configuration found")

//go:embed knip.config.ts.tmpl
var configTemplate string

var tmpl = template.Must(template.New("knip.config.ts").
	Funcs(template.FuncMap{"quote": quoteTS}).
	Parse(configTemplate))

// Resolver finds or creates knip configuration files.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{logger: logger}
}

// Resolve returns the first recognized configuration file in root.
// Files are not parsed.
func (r *Resolver) Resolve(root string) (string, error) {
	for _, name := range Filenames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// Synthesize writes a default configuration unless one already exists and
// returns the path of the configuration in effect. Calling it again never
// writes a second file.
func (r *Resolver) Synthesize(root string) (string, error) {
	if existing, err := r.Resolve(root); err == nil {
		return existing, nil
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Entries []string }{r.entries(root)}); err != nil {
		return "", model.NewFault(model.FileSystemError, "render config", err)
	}

	path := filepath.Join(root, DefaultFilename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		// Someone else created it between Resolve and now.
		return path, nil
	}
	if err != nil {
		return "", model.NewFault(model.FileSystemError, "create config", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(path)
		return "", model.NewFault(model.FileSystemError, "write config", err)
	}
	if err := f.Close(); err != nil {
		return "", model.NewFault(model.FileSystemError, "write config", err)
	}

	r.logger.Info("created default knip configuration", "path", path)
	return path, nil
}

// Ensure resolves the configuration of root, synthesizing one if needed.
func (r *Resolver) Ensure(root string) (path string, created bool, err error) {
	if path, err := r.Resolve(root); err == nil {
		return path, false, nil
	}
	path, err = r.Synthesize(root)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

// entries builds the entry list from the defaults plus the manifest's
// "main" (first) and "types" (last). An unreadable manifest leaves the
// defaults unchanged.
func (r *Resolver) entries(root string) []string {
	entries := append([]string(nil), DefaultEntries...)

	m, err := manifest.Load(root)
	if err != nil {
		if !errors.Is(err, model.ErrManifestMissing) {
			r.logger.Warn("using default entries",
				"fault", model.ConfigSynthesisFailed.String(),
				"error", err)
		}
		return entries
	}
	if main := m.Field("main"); main != "" {
		entries = append([]string{main}, entries...)
	}
	if types := m.Field("types"); types != "" {
		entries = append(entries, types)
	}
	return dedupe(entries)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// quoteTS renders s as a single-quoted TypeScript string literal.
func quoteTS(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return fmt.Sprintf("'%s'", r.Replace(s))
}
