package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/osdlog"
	"mpvglue/internal/runstatus"
	"mpvglue/internal/runtime"
)

type fakeRunner struct {
	starts   int
	stops    int
	startErr error
	running  bool
	hooks    runtime.StartHooks
}

func (f *fakeRunner) Start(opts config.Options, logger *logging.Logger, hooks runtime.StartHooks) error {
	f.starts++
	f.hooks = hooks
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeRunner) Stop() {
	f.stops++
	f.running = false
}

func (f *fakeRunner) IsRunning() bool { return f.running }

func newTestModel(t *testing.T) (*model, *fakeRunner) {
	t.Helper()
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	r := &fakeRunner{}
	m := newModel("test", config.Options{Socket: "/tmp/mpvsocket"}, r, logger)
	t.Cleanup(m.cleanup)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, r
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStartCommandStartsRunner(t *testing.T) {
	m, r := newTestModel(t)
	cmd := m.startCmd()
	if cmd == nil {
		t.Fatalf("expected a start command")
	}
	if m.startCmd() != nil {
		t.Fatalf("a second start while starting must be a no-op")
	}
	msg := cmd()
	m.Update(msg)
	if r.starts != 1 || !m.running || m.starting {
		t.Fatalf("expected runner started once and model running, starts=%d running=%v", r.starts, m.running)
	}
	if r.hooks.OnStatus == nil || r.hooks.OnOverlay == nil || r.hooks.OnExit == nil {
		t.Fatalf("expected all runtime hooks to be wired")
	}

	m.Update(runeKey("s"))
	if r.stops != 1 || m.status != "Stopping" {
		t.Fatalf("expected s to stop the runner, stops=%d status=%q", r.stops, m.status)
	}
	m.Update(runDoneMsg{})
	if m.running || m.status != "Idle" {
		t.Fatalf("expected idle after exit, got running=%v status=%q", m.running, m.status)
	}
}

func TestStartFailureIsShown(t *testing.T) {
	m, r := newTestModel(t)
	r.startErr = errors.New("both scripts are disabled")
	m.Update(m.startCmd()())
	if m.kind != statusFailed || m.lastErr == "" {
		t.Fatalf("expected failed status with error text, got kind=%v err=%q", m.kind, m.lastErr)
	}
	if !strings.Contains(ansi.Strip(m.View()), "both scripts are disabled") {
		t.Fatalf("expected error in header")
	}
}

func TestApplyRuntimeStatus(t *testing.T) {
	m, _ := newTestModel(t)
	m.overlay = "x\n"
	cases := []struct {
		status string
		kind   statusKind
	}{
		{runstatus.WaitingForPlayer, statusWaiting},
		{runstatus.Connected, statusConnected},
		{runstatus.Reconnecting, statusWaiting},
		{runstatus.Disconnected, statusIdle},
	}
	for _, tc := range cases {
		m.Update(statusMsg(tc.status))
		if m.status != tc.status || m.kind != tc.kind {
			t.Fatalf("status %q: got %q kind %v", tc.status, m.status, m.kind)
		}
	}
	if m.overlay != "" {
		t.Fatalf("disconnect must clear the overlay mirror")
	}
}

func TestClearAndDebugKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(logMsg("first"))
	m.Update(logMsg("second"))
	if m.logText != "first\nsecond" {
		t.Fatalf("log text = %q", m.logText)
	}
	m.Update(runeKey("c"))
	if m.logText != "" {
		t.Fatalf("expected c to clear the log, got %q", m.logText)
	}

	if m.logger.DebugEnabled() {
		t.Fatalf("debug should start disabled")
	}
	m.Update(runeKey("d"))
	if !m.logger.DebugEnabled() {
		t.Fatalf("expected d to enable debug logging")
	}
}

func TestQuitKeyCleansUp(t *testing.T) {
	m, r := newTestModel(t)
	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if r.stops != 1 {
		t.Fatalf("expected cleanup to stop the runner")
	}
}

func TestOverlayPanelMirrorsBuffer(t *testing.T) {
	m, _ := newTestModel(t)
	buffer := osdlog.FormatLine("error", "ffmpeg", "bad packet\n") + osdlog.FormatLine("warn", "cplayer", "slow\n")
	m.Update(overlayMsg(buffer))
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "[ffmpeg] bad packet") || !strings.Contains(view, "[cplayer] slow") {
		t.Fatalf("overlay lines missing from view:\n%s", view)
	}
	if strings.Contains(view, `\1c`) {
		t.Fatalf("colour tags must not leak into the view")
	}
}

func TestAppendLogLinesWithLimit(t *testing.T) {
	got := appendLogLinesWithLimit("a\nb", "c\nd\n", 3)
	if got != "b\nc\nd" {
		t.Fatalf("appendLogLinesWithLimit = %q", got)
	}
	if appendLogLinesWithLimit("a", "b", 0) != "" {
		t.Fatalf("zero limit must drop everything")
	}
}

func TestSendDropOldest(t *testing.T) {
	ch := make(chan string, 2)
	sendDropOldest(ch, "1")
	sendDropOldest(ch, "2")
	sendDropOldest(ch, "3")
	if first, second := <-ch, <-ch; first != "2" || second != "3" {
		t.Fatalf("expected oldest value dropped, got %q %q", first, second)
	}
}
