// Package output prints reports and notices for the non-interactive commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"knipclean/internal/history"
	"knipclean/internal/model"
)

// Formats accepted by DisplayReport.
var Formats = []string{"human", "json", "yaml"}

// DisplayReport writes report to w in the given format.
func DisplayReport(w io.Writer, root string, report *model.Report, format string) error {
	switch format {
	case "json":
		return displayJSON(w, report)
	case "yaml":
		return displayYAML(w, report)
	case "human", "":
		displayHuman(w, root, report)
		return nil
	}
	return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

func displayJSON(w io.Writer, report *model.Report) error {
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, report *model.Report) error {
	out, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(out))
	return nil
}

func displayHuman(w io.Writer, root string, report *model.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	bold.Fprintf(w, "knip report for %s\n\n", root)

	if report.IsClean() {
		green.Fprintf(w, "%s No unused files, dependencies or exports.\n", model.IconClean)
		return
	}

	section := func(title, icon string, items []string) {
		if len(items) == 0 {
			return
		}
		yellow.Fprintf(w, "%s %s (%d)\n", icon, title, len(items))
		for _, item := range items {
			fmt.Fprintf(w, "   %s\n", item)
		}
		fmt.Fprintln(w)
	}
	section("Unused files", model.IconFile, report.Files)
	section("Unused dependencies", model.IconDep, report.Dependencies)
	section("Unused devDependencies", model.IconDevDep, report.DevDependencies)

	if len(report.Exports) > 0 {
		cyan.Fprintf(w, "%s Unused exports (%d files)\n", model.IconExport, len(report.Exports))
		for _, g := range report.Exports {
			fmt.Fprintf(w, "   %s: %s\n", g.File, color.CyanString(strings.Join(g.Names, ", ")))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%d issues. %s\n", report.Issues(),
		color.HiBlackString("Run `knipclean review` to fix them interactively, or -o json for machine-readable output"))
}

// DisplayNotice prints a one-line notice colored by level.
func DisplayNotice(w io.Writer, n model.Notice) {
	switch n.Level {
	case model.LevelError:
		color.New(color.FgRed).Fprintf(w, "✗ %s\n", n.Text)
	case model.LevelWarning:
		color.New(color.FgYellow).Fprintf(w, "! %s\n", n.Text)
	default:
		color.New(color.FgGreen).Fprintf(w, "✓ %s\n", n.Text)
	}
}

// DisplayHistory prints past scans, newest first.
func DisplayHistory(w io.Writer, root string, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No scans recorded for %s\n", root)
		return
	}
	color.New(color.Bold).Fprintf(w, "Scans of %s\n", root)
	for i, e := range entries {
		change := ""
		if i+1 < len(entries) {
			change = history.Compare(entries[i+1], e.Report).String()
		}
		fmt.Fprintf(w, "  %s  %3d issues  (%d files, %d deps, %d devDeps, %d exports)  %s\n",
			e.ScannedAt.Local().Format(time.DateTime), e.Issues(),
			e.Files, e.Dependencies, e.DevDependencies, e.Exports,
			color.HiBlackString(change))
	}
}
