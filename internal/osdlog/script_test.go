package osdlog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/mpv"
	"mpvglue/internal/mpv/mpvtest"
)

func newTestScript(t *testing.T, opts config.OSDLogOptions) (*Script, *mpvtest.Host, *[]string) {
	t.Helper()
	host := mpvtest.NewHost()
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	var changes []string
	s := New(host, opts, logger, Callbacks{OnChange: func(buffer string) { changes = append(changes, buffer) }})
	if err := s.Attach(); err != nil {
		t.Fatalf("attach: %v", err)
	}
	return s, host, &changes
}

func TestAttachRequestsLogLevel(t *testing.T) {
	_, host, _ := newTestScript(t, config.OSDLogOptions{})
	_, warnHost, _ := newTestScript(t, config.OSDLogOptions{Warnings: true})

	if diff := cmp.Diff([]string{"error"}, host.LogLevels); diff != "" {
		t.Fatalf("error-only levels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"warn"}, warnHost.LogLevels); diff != "" {
		t.Fatalf("warnings levels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{mpv.EventLogMessage}, host.Subscribed()); diff != "" {
		t.Fatalf("subscriptions mismatch (-want +got):\n%s", diff)
	}
}

func TestLogLineIsFormattedAndShown(t *testing.T) {
	s, host, changes := newTestScript(t, config.OSDLogOptions{})
	host.Log("ffmpeg", "error", "Invalid data found\n")

	want := colorError + "[ffmpeg] Invalid data found\n"
	if s.Buffer() != want {
		t.Fatalf("buffer = %q, want %q", s.Buffer(), want)
	}
	updates := host.CommandsNamed("osd-overlay")
	if len(updates) != 1 {
		t.Fatalf("expected one overlay update, got %v", updates)
	}
	if diff := cmp.Diff([]any{"osd-overlay", 1, "ass-events", want}, updates[0]); diff != "" {
		t.Fatalf("overlay command mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{want}, *changes); diff != "" {
		t.Fatalf("change callbacks mismatch (-want +got):\n%s", diff)
	}
	pending := host.Pending()
	if len(pending) != 1 || pending[0].Delay != EvictDelay {
		t.Fatalf("expected one eviction timer of %s, got %+v", EvictDelay, pending)
	}
}

func TestLevelFilter(t *testing.T) {
	s, host, _ := newTestScript(t, config.OSDLogOptions{})
	host.Log("a", "warn", "skipped\n")
	host.Log("b", "info", "skipped\n")
	host.Log("c", "fatal", "kept\n")
	if got := len(SplitLines(s.Buffer())); got != 1 {
		t.Fatalf("expected only the fatal line, got %q", s.Buffer())
	}

	w, whost, _ := newTestScript(t, config.OSDLogOptions{Warnings: true})
	whost.Log("a", "warn", "shown\n")
	whost.Log("b", "v", "skipped\n")
	want := colorWarn + "[a] shown\n"
	if w.Buffer() != want {
		t.Fatalf("buffer = %q, want %q", w.Buffer(), want)
	}
}

func TestBlacklistedMessagesNeverShown(t *testing.T) {
	s, host, _ := newTestScript(t, config.OSDLogOptions{Blacklist: "ffmpeg/demuxer| Stream ends prematurely |", Warnings: true})
	host.Log("ffmpeg/demuxer", "error", "anything\n")
	host.Log("stream", "warn", "Stream ends prematurely\n")
	host.Log("stream", "warn", "Stream ends prematurely at 10\n")

	lines := SplitLines(s.Buffer())
	if len(lines) != 1 {
		t.Fatalf("expected one visible line, got %q", lines)
	}
	if _, text := ParseLine(lines[0]); text != "[stream] Stream ends prematurely at 10" {
		t.Fatalf("unexpected visible line %q", text)
	}
	if len(host.Pending()) != 1 {
		t.Fatalf("blacklisted messages must not arm timers")
	}
}

func TestBufferEmptiesAfterEveryTimerFires(t *testing.T) {
	s, host, _ := newTestScript(t, config.OSDLogOptions{})
	for i := 0; i < 5; i++ {
		host.Log("cplayer", "error", "line\n")
	}
	if got := len(SplitLines(s.Buffer())); got != 5 {
		t.Fatalf("expected 5 lines, got %d", got)
	}
	if got := host.Fire(); !got {
		t.Fatalf("expected a pending timer")
	}
	if got := len(SplitLines(s.Buffer())); got != 4 {
		t.Fatalf("each eviction must remove one line, got %d left", got)
	}
	if fired := host.FireAll(); fired != 4 {
		t.Fatalf("expected 4 more evictions, got %d", fired)
	}
	if s.Buffer() != "" {
		t.Fatalf("expected empty buffer, got %q", s.Buffer())
	}
}

func TestEvictionRemovesOldestLineFirst(t *testing.T) {
	s, host, _ := newTestScript(t, config.OSDLogOptions{})
	host.Log("a", "error", "first\n")
	host.Log("b", "error", "second\n")
	host.Fire()
	if !strings.Contains(s.Buffer(), "second") || strings.Contains(s.Buffer(), "first") {
		t.Fatalf("expected oldest line evicted, got %q", s.Buffer())
	}
}

func TestDetachCancelsTimersAndRemovesOverlay(t *testing.T) {
	s, host, changes := newTestScript(t, config.OSDLogOptions{})
	host.Log("a", "error", "one\n")
	host.Log("a", "error", "two\n")
	host.ResetCommands()

	s.Detach()
	if len(host.Pending()) != 0 {
		t.Fatalf("expected pending timers to be canceled")
	}
	if diff := cmp.Diff([][]any{{"osd-overlay", 1, "none", ""}}, host.Commands); diff != "" {
		t.Fatalf("detach commands mismatch (-want +got):\n%s", diff)
	}
	if last := (*changes)[len(*changes)-1]; last != "" {
		t.Fatalf("expected final change to be empty, got %q", last)
	}

	host.Log("a", "error", "after detach\n")
	if s.Buffer() != "" || len(host.Commands) != 1 {
		t.Fatalf("detached script must ignore messages")
	}
	s.Detach()
}

func TestEvictionOutOfOrderKeepsRemainingTimerCancelable(t *testing.T) {
	s, host, _ := newTestScript(t, config.OSDLogOptions{})
	host.Log("a", "error", "one\n")
	host.Log("a", "error", "two\n")
	timers := host.Pending()
	if len(timers) != 2 {
		t.Fatalf("expected two pending timers, got %d", len(timers))
	}

	timers[1].Fire()
	if want := colorError + "[a] two\n"; s.Buffer() != want {
		t.Fatalf("buffer = %q, want %q", s.Buffer(), want)
	}
	s.Detach()
	if timers[0].Pending() {
		t.Fatalf("expected the unfired timer to be canceled on detach")
	}
}
