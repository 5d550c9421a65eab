package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Report is the normalized result of one knip run. It is never mutated after
// it has been decoded.
type Report struct {
	Files           []string      // Unused files, project-relative
	Dependencies    []string      // Unused entries of "dependencies"
	DevDependencies []string      // Unused entries of "devDependencies"
	Exports         []ExportGroup // Unused exports, grouped by file in analyzer order
}

// ExportGroup lists the unused exports of a single file.
type ExportGroup struct {
	File  string   `json:"file"`
	Names []string `json:"names"`
}

// EmptyReport returns the canonical "nothing found" report.
func EmptyReport() *Report {
	return &Report{
		Files:           []string{},
		Dependencies:    []string{},
		DevDependencies: []string{},
		Exports:         []ExportGroup{},
	}
}

// IsClean reports whether all four collections are empty.
func (r *Report) IsClean() bool {
	return len(r.Files) == 0 && len(r.Dependencies) == 0 &&
		len(r.DevDependencies) == 0 && len(r.Exports) == 0
}

// Issues counts files, both dependency kinds and files with unused exports.
func (r *Report) Issues() int {
	return len(r.Files) + len(r.Dependencies) + len(r.DevDependencies) + len(r.Exports)
}

// ExportNames returns the unused exports of file, or nil.
func (r *Report) ExportNames(file string) []string {
	for _, g := range r.Exports {
		if g.File == file {
			return g.Names
		}
	}
	return nil
}

// wireReport is the shape of `knip --reporter json`.
type wireReport struct {
	Files           []string        `json:"files"`
	Dependencies    []string        `json:"dependencies"`
	DevDependencies []string        `json:"devDependencies"`
	Exports         json.RawMessage `json:"exports"`
}

// UnmarshalJSON decodes the knip JSON reporter output. The exports object is
// walked token by token so that file order survives decoding.
func (r *Report) UnmarshalJSON(data []byte) error {
	var w wireReport
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	exports, err := decodeExports(w.Exports)
	if err != nil {
		return fmt.Errorf("exports: %w", err)
	}

	*r = *EmptyReport()
	if w.Files != nil {
		r.Files = w.Files
	}
	if w.Dependencies != nil {
		r.Dependencies = w.Dependencies
	}
	if w.DevDependencies != nil {
		r.DevDependencies = w.DevDependencies
	}
	r.Exports = exports
	return nil
}

// MarshalJSON writes the report back in the knip reporter shape.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"files":`)
	if err := writeJSON(&buf, nonNil(r.Files)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"dependencies":`)
	if err := writeJSON(&buf, nonNil(r.Dependencies)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"devDependencies":`)
	if err := writeJSON(&buf, nonNil(r.DevDependencies)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"exports":{`)
	for i, g := range r.Exports {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, g.File); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, nonNil(g.Names)); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// MarshalYAML keeps the YAML form aligned with the JSON one.
func (r Report) MarshalYAML() (interface{}, error) {
	exports := make(map[string][]string, len(r.Exports))
	for _, g := range r.Exports {
		exports[g.File] = g.Names
	}
	return struct {
		Files           []string            `yaml:"files"`
		Dependencies    []string            `yaml:"dependencies"`
		DevDependencies []string            `yaml:"devDependencies"`
		Exports         map[string][]string `yaml:"exports"`
	}{nonNil(r.Files), nonNil(r.Dependencies), nonNil(r.DevDependencies), exports}, nil
}

func decodeExports(raw json.RawMessage) ([]ExportGroup, error) {
	groups := []ExportGroup{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return groups, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		file, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected file name, got %v", tok)
		}
		var names []string
		if err := dec.Decode(&names); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		// Duplicate keys fold into the first occurrence.
		if i, seen := index[file]; seen {
			groups[i].Names = append(groups[i].Names, names...)
			continue
		}
		index[file] = len(groups)
		groups = append(groups, ExportGroup{File: file, Names: nonNil(names)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return groups, nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Snapshot is what a presentation renders: a report plus the remediations
// that succeeded since the report was produced.
type Snapshot struct {
	Root      string    `json:"root"`
	Report    *Report   `json:"report"`
	Applied   []Action  `json:"applied"`
	ScannedAt time.Time `json:"scannedAt"`
}

// IsApplied reports whether an equivalent action already succeeded.
func (s Snapshot) IsApplied(a Action) bool {
	for _, done := range s.Applied {
		if done == a {
			return true
		}
	}
	return false
}
