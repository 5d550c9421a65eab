package model

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// FilePreview holds the first lines of a file for display next to a report entry
type FilePreview struct {
	Path      string   // Absolute path that was read
	Lines     []string // Leading lines of the file
	Total     int      // Number of lines read before stopping
	Truncated bool     // Whether the file has more lines than were kept
	Binary    bool     // File does not look like text
	ErrorMsg  string   // Error message if file couldn't be read
}

// ReadPreview reads up to maxLines lines of filePath.
func ReadPreview(filePath string, maxLines int) FilePreview {
	result := FilePreview{Path: filePath}

	file, err := os.Open(filePath)
	if err != nil {
		result.ErrorMsg = fmt.Sprintf("Could not read file: %v", err)
		return result
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Minified bundles have very long lines
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !utf8.ValidString(line) || strings.ContainsRune(line, 0) {
			result.Binary = true
			result.Lines = nil
			return result
		}
		result.Total++
		if len(result.Lines) >= maxLines {
			result.Truncated = true
			break
		}
		result.Lines = append(result.Lines, strings.ReplaceAll(line, "\t", "    "))
	}

	if err := scanner.Err(); err != nil {
		result.ErrorMsg = fmt.Sprintf("Error reading file: %v", err)
	}
	return result
}

// String renders the preview as plain text.
func (p FilePreview) String() string {
	switch {
	case p.ErrorMsg != "":
		return p.ErrorMsg
	case p.Binary:
		return "(binary file)"
	case len(p.Lines) == 0:
		return "(empty file)"
	}
	var b strings.Builder
	for i, l := range p.Lines {
		fmt.Fprintf(&b, "%4d  %s\n", i+1, l)
	}
	if p.Truncated {
		b.WriteString("      ...\n")
	}
	return b.String()
}
