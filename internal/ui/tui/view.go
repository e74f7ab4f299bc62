package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"mpvglue/internal/osdlog"
)

const headerHeight = 2

func (m *model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	sections := []string{
		m.renderHeader(width),
		m.renderPanel("OSD", m.renderOverlay(width-panelStyle.GetHorizontalFrameSize()), width),
		m.renderPanel("Log", m.logView.View(), width),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) renderHeader(width int) string {
	style, ok := statusStyles[m.kind]
	if !ok {
		style = mutedStyle
	}
	title := titleStyle.Render("mpv glue") + mutedStyle.Render(" "+m.buildVersion)
	status := style.Render("● " + m.status)
	first := title + "  " + status
	second := mutedStyle.Render("socket " + m.opts.Socket)
	if m.lastErr != "" {
		second = errorStyle.Render(fitWidth(m.lastErr, width))
	}
	return fitWidth(first, width) + "\n" + fitWidth(second, width)
}

func (m *model) renderPanel(title string, body string, width int) string {
	inner := max(width-panelStyle.GetHorizontalFrameSize(), 1)
	content := titleStyle.Render(title) + "\n" + body
	return panelStyle.Width(inner).Render(content)
}

// renderOverlay shows the newest overlay lines that fit the panel, coloured
// by level.
func (m *model) renderOverlay(width int) string {
	lines := osdlog.SplitLines(m.overlay)
	rows := osdPanelHeight - 1
	if len(lines) == 0 {
		return mutedStyle.Render("nothing on screen") + strings.Repeat("\n", rows-1)
	}
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	out := make([]string, 0, rows)
	for _, line := range lines {
		level, text := osdlog.ParseLine(line)
		text = fitWidth(text, width)
		if style, ok := osdLevelStyles[level]; ok {
			text = style.Render(text)
		}
		out = append(out, text)
	}
	for len(out) < rows {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func fitWidth(value string, width int) string {
	if width <= 0 || ansi.StringWidth(value) <= width {
		return value
	}
	return ansi.Truncate(value, width, "…")
}
