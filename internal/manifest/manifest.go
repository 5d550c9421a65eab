// Package manifest reads and edits package.json without disturbing keys it
// does not touch.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"knipclean/internal/model"
)

// FileName is the manifest file looked up in a project root.
const FileName = "package.json"

const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
)

// Manifest is a loaded package.json. Edits are applied to the raw bytes, so
// key order and unrelated values are kept.
type Manifest struct {
	Path string
	raw  []byte
	mode fs.FileMode
}

// PathIn returns the manifest path for a project root.
func PathIn(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the manifest of root. A missing file is a ManifestMissing fault,
// a file that is not a JSON object is a ParseError fault.
func Load(root string) (*Manifest, error) {
	path := PathIn(root)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.NewFault(model.ManifestMissing, "load manifest", fmt.Errorf("%s not found in %s", FileName, root))
	}
	if err != nil {
		return nil, model.NewFault(model.FileSystemError, "load manifest", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewFault(model.FileSystemError, "load manifest", err)
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, model.NewFault(model.ParseError, "load manifest", fmt.Errorf("%s is not a JSON object", path))
	}
	return &Manifest{Path: path, raw: raw, mode: info.Mode().Perm()}, nil
}

// Bytes returns the current manifest content.
func (m *Manifest) Bytes() []byte {
	return m.raw
}

// Field returns a top-level string field such as "main" or "types".
func (m *Manifest) Field(name string) string {
	res := gjson.GetBytes(m.raw, escapeKey(name))
	if res.Type != gjson.String {
		return ""
	}
	return res.Str
}

// Has reports whether name is a key of the given section.
func (m *Manifest) Has(section, name string) bool {
	found := false
	m.section(section).ForEach(func(key, _ gjson.Result) bool {
		if key.Str == name {
			found = true
			return false
		}
		return true
	})
	return found
}

// Declares reports whether name is listed in dependencies or devDependencies.
func (m *Manifest) Declares(name string) bool {
	return m.Has(SectionDependencies, name) || m.Has(SectionDevDependencies, name)
}

// Names lists the keys of a section in file order.
func (m *Manifest) Names(section string) []string {
	var names []string
	m.section(section).ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.Str)
		return true
	})
	return names
}

func (m *Manifest) section(section string) gjson.Result {
	res := gjson.GetBytes(m.raw, escapeKey(section))
	if !res.IsObject() {
		return gjson.Result{}
	}
	return res
}

// Remove deletes name from section. It reports false, and leaves the
// manifest untouched, when the entry is not there.
func (m *Manifest) Remove(section, name string) (bool, error) {
	if !m.Has(section, name) {
		return false, nil
	}
	out, err := sjson.DeleteBytes(m.raw, escapeKey(section)+"."+escapeKey(name))
	if err != nil {
		return false, model.NewFault(model.ManifestWriteFailed, "remove "+name, err)
	}
	m.raw = reformat(out, m.raw)
	return true, nil
}

// Save writes the manifest atomically: a temporary file in the same
// directory is renamed over the original.
func (m *Manifest) Save() error {
	dir := filepath.Dir(m.Path)
	tmp, err := os.CreateTemp(dir, ".package.json-*")
	if err != nil {
		return model.NewFault(model.ManifestWriteFailed, "save manifest", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(m.raw); err != nil {
		tmp.Close()
		return model.NewFault(model.ManifestWriteFailed, "save manifest", err)
	}
	if err := tmp.Close(); err != nil {
		return model.NewFault(model.ManifestWriteFailed, "save manifest", err)
	}
	mode := m.mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return model.NewFault(model.ManifestWriteFailed, "save manifest", err)
	}
	if err := os.Rename(tmpName, m.Path); err != nil {
		return model.NewFault(model.ManifestWriteFailed, "save manifest", err)
	}
	return nil
}

// reformat pretty-prints edited JSON with the indentation of the original
// and keeps (or omits) its trailing newline. Key order is never changed.
func reformat(edited, original []byte) []byte {
	out := pretty.PrettyOptions(edited, &pretty.Options{
		// Width 1 expands every non-empty array, like npm writes package.json.
		Width:    1,
		Indent:   DetectIndent(original),
		SortKeys: false,
	})
	out = bytes.TrimRight(out, "\n")
	if bytes.HasSuffix(original, []byte("\n")) {
		out = append(out, '\n')
	}
	return out
}

// DetectIndent returns the indentation unit used by a JSON document,
// defaulting to two spaces.
func DetectIndent(doc []byte) string {
	for _, line := range strings.Split(string(doc), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		if strings.HasPrefix(indent, "\t") {
			return "\t"
		}
		return indent
	}
	return "  "
}

// escapeKey escapes characters that have a meaning in gjson/sjson paths.
// Scoped names like "@types/node" and dotted names like "lodash.merge" are
// common in dependency sections.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@', '!', ':', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
