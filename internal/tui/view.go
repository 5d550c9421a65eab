package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"knipclean/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dimmedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	activeColor = lipgloss.Color("205")
	borderColor = lipgloss.Color("63")
)

func (m AppModel) View() string {
	if m.Err != nil && !m.Ready {
		return fmt.Sprintf("\n  %s %v\n\n  %s\n",
			errorStyle.Render("Scan failed:"), m.Err, dimmedStyle.Render("Press q to quit."))
	}
	if !m.Ready {
		return m.renderLoading()
	}
	if m.ShowHelp {
		return m.renderHelpDialog()
	}

	width := m.WindowSize.Width
	height := m.WindowSize.Height

	// Horizontal margin: borders x2 + buffer
	netWidth := width - 6
	if netWidth < 20 {
		netWidth = 20
	}
	leftWidth := netWidth / 2
	rightWidth := netWidth - leftWidth

	// Title and footer take the remaining lines
	boxHeight := height - 6
	if boxHeight < 6 {
		boxHeight = 6
	}
	interiorHeight := boxHeight - 2
	if interiorHeight < 2 {
		interiorHeight = 2
	}

	title := titleStyle.Render("knip review") + " " + dimmedStyle.Render(m.Root)
	if m.Loading {
		title += "  " + m.Spinner.View() + " " + m.Phase.Label
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(m.borderFor(!m.RightFocus)).
		Render(m.renderList(leftWidth, interiorHeight))

	var rightView strings.Builder
	rightView.WriteString(headerStyle.Render("Preview"))
	rightView.WriteString("\n\n")
	rightView.WriteString(m.Preview.View())
	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(m.borderFor(m.RightFocus)).
		Render(rightView.String())

	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + m.renderFooter()
}

func (m AppModel) borderFor(focused bool) lipgloss.TerminalColor {
	if focused {
		return activeColor
	}
	return borderColor
}

func (m AppModel) renderLoading() string {
	var b strings.Builder
	b.WriteString("\n  " + m.Spinner.View() + " " + m.Phase.Label + "\n\n")
	b.WriteString("  " + m.Progress.View() + "\n\n")
	b.WriteString(dimmedStyle.Render("  esc: cancel • q: quit"))
	if m.Message.Text != "" {
		b.WriteString("\n\n  " + renderNotice(m.Message))
	}
	return b.String() + "\n"
}

func (m AppModel) renderList(width, height int) string {
	if m.Snapshot.Report != nil && m.Snapshot.Report.IsClean() {
		return headerStyle.Render(model.IconClean+" Nothing to clean up") + "\n\n" +
			dimmedStyle.Render("No unused files, dependencies or exports.")
	}
	if len(m.visible) == 0 {
		return dimmedStyle.Render("No entries match the filter.")
	}

	// One line per row plus a header line whenever the section changes.
	type line struct {
		text   string
		header bool
		pos    int // position in m.visible, -1 for headers
	}
	var lines []line
	selectedLine := 0
	prev := section(-1)
	for pos, idx := range m.visible {
		r := m.rows[idx]
		if r.section != prev {
			if prev != -1 {
				lines = append(lines, line{pos: -1})
			}
			lines = append(lines, line{
				text:   fmt.Sprintf("%s %s (%d)", r.section.icon(), r.section.title(), m.sectionCount(r.section)),
				header: true,
				pos:    -1,
			})
			prev = r.section
		}
		if pos == m.SelectedIdx {
			selectedLine = len(lines)
		}
		lines = append(lines, line{text: r.label, pos: pos})
	}

	// Keep the selection in the middle of the window
	startIdx := 0
	endIdx := len(lines)
	if len(lines) > height {
		if selectedLine >= height/2 {
			startIdx = selectedLine - height/2
		}
		if startIdx+height > len(lines) {
			startIdx = len(lines) - height
		}
		endIdx = startIdx + height
	}

	var b strings.Builder
	for i := startIdx; i < endIdx; i++ {
		l := lines[i]
		if l.header {
			b.WriteString(headerStyle.Render(truncate(l.text, width-2)))
			b.WriteString("\n")
			continue
		}
		if l.pos < 0 {
			b.WriteString("\n")
			continue
		}

		r := m.rows[m.visible[l.pos]]
		icon := " "
		style := normalStyle
		if r.remove != nil && m.Snapshot.IsApplied(*r.remove) {
			icon = model.IconResolved
			style = dimmedStyle
		}
		text := truncate(fmt.Sprintf(" %s %s", icon, r.label), width-2)
		if l.pos == m.SelectedIdx {
			style = selectedStyle
		}
		b.WriteString(style.Render(text))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m AppModel) sectionCount(s section) int {
	n := 0
	for _, r := range m.rows {
		if r.section == s {
			n++
		}
	}
	return n
}

func (m AppModel) renderFooter() string {
	switch {
	case m.Confirming != nil:
		prompt := fmt.Sprintf(" %s? [y/n] ", confirmText(*m.Confirming))
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("160")).
			Bold(true).
			Padding(0, 1).
			Render(prompt)
	case m.Filtering:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("57")).Render(" / ") + m.FilterInput.View()
	}

	var parts []string
	if m.Message.Text != "" && time.Since(m.MessageTime) < noticeTTL {
		parts = append(parts, renderNotice(m.Message))
	} else if v := m.FilterInput.Value(); v != "" {
		parts = append(parts, dimmedStyle.Render(" Filter: "+v))
	}
	parts = append(parts, m.Help.View(m.Keys))
	return strings.Join(parts, "\n")
}

func confirmText(a model.Action) string {
	switch a.Kind {
	case model.ActionDeleteFile:
		return "Delete " + a.Path
	case model.ActionRemoveDependency:
		return fmt.Sprintf("Remove %s from %s", a.Name, a.Section())
	}
	return a.String()
}

func renderNotice(n model.Notice) string {
	bg := lipgloss.Color("57")
	switch n.Level {
	case model.LevelWarning:
		bg = lipgloss.Color("208")
	case model.LevelError:
		bg = lipgloss.Color("160")
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("229")).
		Background(bg).
		Padding(0, 1).
		Render(n.Text)
}

func (m AppModel) renderHelpDialog() string {
	w, h := m.WindowSize.Width, m.WindowSize.Height
	if w < 20 || h < 10 {
		return "Window too small"
	}

	helpWidth := w * 80 / 100
	if helpWidth < 40 {
		helpWidth = 40
	}
	if helpWidth > w-4 {
		helpWidth = w - 4
	}

	full := m.Help
	full.ShowAll = true
	content := titleStyle.Render("Keys") + "\n\n" + full.View(m.Keys) + "\n\n" +
		dimmedStyle.Render("Deleting a file or removing a dependency asks for confirmation.\n"+
			"Resolved entries are marked "+model.IconResolved+" until the next refresh.")

	dialog := lipgloss.NewStyle().
		Width(helpWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		Render(content)

	return lipgloss.Place(w, h,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

func truncate(s string, width int) string {
	if width < 4 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-3 {
		r = r[:width-3]
	}
	return string(r) + "..."
}

func (m AppModel) Init() tea.Cmd {
	return m.Spinner.Tick
}
