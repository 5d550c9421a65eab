package knip

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"knipclean/internal/model"
)

// DecodeReport turns a finished `knip --reporter json` run into a report.
//
// knip exits non-zero whenever it finds issues, so the exit code alone says
// nothing. Output is parsed first; the exit code only decides which fault
// an unusable result becomes.
func DecodeReport(res RunResult) (*model.Report, error) {
	stdout := bytes.TrimSpace(res.Stdout)
	stderr := strings.TrimSpace(string(res.Stderr))

	if len(stdout) == 0 {
		if res.ExitCode != 0 && stderr != "" {
			return nil, model.NewFault(model.ProcessFailed, "knip",
				fmt.Errorf("exit %d: %s", res.ExitCode, firstLines(stderr, 5)))
		}
		return model.EmptyReport(), nil
	}

	report, err := parseReport(stdout)
	if err == nil {
		return report, nil
	}
	if res.ExitCode != 0 {
		msg := stderr
		if msg == "" {
			msg = err.Error()
		}
		return nil, model.NewFault(model.ProcessFailed, "knip",
			fmt.Errorf("exit %d: %s", res.ExitCode, firstLines(msg, 5)))
	}
	return nil, model.NewFault(model.ParseError, "parse knip output", err)
}

// parseReport decodes the JSON report. Lines printed around the JSON object
// (npx notices, deprecation warnings) are ignored.
func parseReport(out []byte) (*model.Report, error) {
	var report model.Report
	err := json.Unmarshal(out, &report)
	if err == nil {
		return &report, nil
	}

	start := jsonStart(out)
	end := bytes.LastIndexByte(out, '}')
	if start < 0 || end <= start || (start == 0 && end == len(out)-1) {
		return nil, err
	}
	if err2 := json.Unmarshal(out[start:end+1], &report); err2 != nil {
		return nil, err
	}
	return &report, nil
}

// jsonStart returns the offset of the first line that opens a JSON object.
// Braces inside warning text on earlier lines are skipped.
func jsonStart(out []byte) int {
	offset := 0
	for _, line := range bytes.SplitAfter(out, []byte("\n")) {
		trimmed := bytes.TrimLeft(line, " \t")
		if len(trimmed) > 0 && trimmed[0] == '{' {
			return offset + len(line) - len(trimmed)
		}
		offset += len(line)
	}
	return -1
}

// removalPhrases are printed by `knip --fix` when it changed something.
var removalPhrases = []string{"files removed", "dependencies removed"}

// CleanOutcome decides whether a `knip --fix` run succeeded. knip --fix
// exits non-zero after a successful removal, so a failing exit code counts
// as success when the output mentions removed items.
func CleanOutcome(res RunResult) error {
	if res.ExitCode == 0 {
		return nil
	}
	combined := strings.ToLower(string(res.Stdout) + "\n" + string(res.Stderr))
	for _, phrase := range removalPhrases {
		if strings.Contains(combined, phrase) {
			return nil
		}
	}
	msg := strings.TrimSpace(string(res.Stderr))
	if msg == "" {
		msg = strings.TrimSpace(string(res.Stdout))
	}
	return model.NewFault(model.ProcessFailed, "knip --fix",
		fmt.Errorf("exit %d: %s", res.ExitCode, firstLines(msg, 5)))
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + "\n..."
}
