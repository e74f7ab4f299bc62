package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"mpvglue/internal/runstatus"
	"mpvglue/internal/runtime"
)

func (m *model) startCmd() tea.Cmd {
	if m.running || m.starting {
		return nil
	}
	m.starting = true
	m.status = "Starting"
	m.kind = statusWaiting
	m.lastErr = ""
	opts := m.opts
	return func() tea.Msg {
		err := m.runner.Start(opts, m.logger, runtime.StartHooks{
			OnStatus:  m.onRuntimeStatus,
			OnOverlay: m.onRuntimeOverlay,
			OnExit:    m.onRuntimeExit,
		})
		return startResultMsg{err: err}
	}
}

func (m *model) stop() {
	if !m.running && !m.starting {
		return
	}
	m.runner.Stop()
	m.status = "Stopping"
	m.kind = statusStopping
}

func (m *model) onRuntimeStatus(status string) {
	sendDropOldest(m.statusCh, status)
}

func (m *model) onRuntimeOverlay(buffer string) {
	sendDropOldest(m.overlayCh, buffer)
}

func (m *model) onRuntimeExit(runErr error) {
	if m.send == nil {
		return
	}
	m.send(runDoneMsg{err: runErr})
}

func (m *model) applyRuntimeStatus(status string) {
	switch runstatus.Key(status) {
	case runstatus.KeyWaitingForPlayer:
		m.status = runstatus.WaitingForPlayer
		m.kind = statusWaiting
	case runstatus.KeyConnected:
		m.status = runstatus.Connected
		m.kind = statusConnected
		m.running = true
		m.starting = false
	case runstatus.KeyReconnecting:
		m.status = runstatus.Reconnecting
		m.kind = statusWaiting
		m.overlay = ""
	case runstatus.KeyDisconnected:
		m.status = runstatus.Disconnected
		m.kind = statusIdle
		m.overlay = ""
	default:
		m.status = status
	}
}

func (m *model) cleanup() {
	m.cleanupOnce.Do(func() {
		m.logger.Debug("dashboard cleanup started")
		if m.rootCancel != nil {
			m.rootCancel()
		}
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		m.runner.Stop()
		m.logger.Debug("dashboard cleanup complete")
	})
}
