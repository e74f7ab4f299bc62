package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"mpvglue/internal/logging"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	case logMsg:
		m.appendLog(string(msg))
		return m, waitForLog(m.logCh)
	case statusMsg:
		m.applyRuntimeStatus(string(msg))
		return m, waitForStatus(m.statusCh)
	case overlayMsg:
		m.overlay = string(msg)
		return m, waitForOverlay(m.overlayCh)
	case startResultMsg:
		m.starting = false
		if msg.err != nil {
			m.status = "Not started"
			m.kind = statusFailed
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.running = true
		return m, nil
	case runDoneMsg:
		m.running = false
		m.starting = false
		m.overlay = ""
		if msg.err != nil {
			m.status = "Stopped (error)"
			m.kind = statusFailed
			m.lastErr = msg.err.Error()
		} else {
			m.status = "Idle"
			m.kind = statusIdle
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cleanup()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		if m.running || m.starting {
			m.stop()
			return m, nil
		}
		return m, m.startCmd()
	case key.Matches(msg, m.keys.Debug):
		enabled := !m.logger.DebugEnabled()
		m.logger.SetDebugEnabled(enabled)
		m.logger.Info("debug logging toggled", logging.Field("enabled", enabled))
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.logText = ""
		m.logView.SetContent("")
		m.logView.GotoTop()
		m.follow = true
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logView.GotoBottom()
		m.follow = true
		return m, nil
	case key.Matches(msg, m.keys.ShowHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	m.follow = m.logView.AtBottom()
	return m, cmd
}

func (m *model) appendLog(line string) {
	wasAtBottom := m.logView.AtBottom()
	m.logText = appendLogLinesWithLimit(m.logText, line, logLineLimit)
	m.logView.SetContent(m.logText)
	if m.follow || wasAtBottom {
		m.logView.GotoBottom()
		m.follow = true
	}
}

func (m *model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	frame := panelStyle.GetHorizontalFrameSize()
	m.logView.Width = max(m.width-frame, 1)
	reserved := headerHeight + osdPanelHeight + panelStyle.GetVerticalFrameSize()*2 + m.helpHeight()
	m.logView.Height = max(m.height-reserved, minLogHeight)
	if m.follow {
		m.logView.GotoBottom()
	}
}

func (m *model) helpHeight() int {
	if m.help.ShowAll {
		return len(m.keys.FullHelp()[0])
	}
	return 1
}

func appendLogLinesWithLimit(current string, next string, limit int) string {
	if limit <= 0 {
		return ""
	}
	lines := splitLogLines(current)
	lines = append(lines, splitLogLines(next)...)
	if len(lines) > limit {
		lines = append([]string(nil), lines[len(lines)-limit:]...)
	}
	return strings.Join(lines, "\n")
}

func splitLogLines(input string) []string {
	if input == "" {
		return nil
	}
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(strings.TrimSuffix(normalized, "\n"), "\n")
}
