package mpvtest

import (
	"fmt"
	"sort"
	"time"

	"mpvglue/internal/mpv"
)

// Host is a single-threaded mpv.Host for script tests. Timers never fire
// on their own; tests advance them with Fire or FireAll.
type Host struct {
	Commands   [][]any
	Properties map[string]any
	LogLevels  []string
	OnCommand  func(args []any)

	handlers     map[string][]func(mpv.Event)
	timers       []*Timer
	nextOverlay  int
	failCommands map[string]error
	failGets     map[string]error
	failSets     map[string]error
}

func NewHost() *Host {
	return &Host{
		Properties:   map[string]any{},
		handlers:     map[string][]func(mpv.Event){},
		failCommands: map[string]error{},
		failGets:     map[string]error{},
		failSets:     map[string]error{},
	}
}

// FailCommand, FailGet and FailSet make the named call return err. A nil
// err clears an earlier failure.
func (h *Host) FailCommand(name string, err error) { setFailure(h.failCommands, name, err) }
func (h *Host) FailGet(property string, err error) { setFailure(h.failGets, property, err) }
func (h *Host) FailSet(property string, err error) { setFailure(h.failSets, property, err) }

func setFailure(failures map[string]error, key string, err error) {
	if err == nil {
		delete(failures, key)
		return
	}
	failures[key] = err
}

func (h *Host) Command(args ...any) error {
	h.Commands = append(h.Commands, append([]any(nil), args...))
	if len(args) > 0 {
		if err, ok := h.failCommands[fmt.Sprint(args[0])]; ok {
			return err
		}
	}
	if h.OnCommand != nil {
		h.OnCommand(args)
	}
	return nil
}

// CommandsNamed returns the recorded commands whose first argument is name.
func (h *Host) CommandsNamed(name string) [][]any {
	var out [][]any
	for _, cmd := range h.Commands {
		if len(cmd) > 0 && fmt.Sprint(cmd[0]) == name {
			out = append(out, cmd)
		}
	}
	return out
}

func (h *Host) ResetCommands() {
	h.Commands = nil
}

func (h *Host) Subscribe(event string, handler func(mpv.Event)) {
	h.handlers[event] = append(h.handlers[event], handler)
}

// Subscribed lists the event names with at least one handler, sorted.
func (h *Host) Subscribed() []string {
	out := make([]string, 0, len(h.handlers))
	for name := range h.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Emit runs the handlers registered for event.Name.
func (h *Host) Emit(event mpv.Event) {
	for _, handler := range h.handlers[event.Name] {
		handler(event)
	}
}

func (h *Host) Log(prefix string, level string, text string) {
	h.Emit(mpv.Event{Name: mpv.EventLogMessage, Prefix: prefix, Level: level, Text: text})
}

func (h *Host) StartFile() {
	h.Emit(mpv.Event{Name: mpv.EventStartFile})
}

func (h *Host) RequestLogMessages(level string) error {
	h.LogLevels = append(h.LogLevels, level)
	return nil
}

func (h *Host) GetString(property string) (string, error) {
	if err, ok := h.failGets[property]; ok {
		return "", err
	}
	v, ok := h.Properties[property]
	if !ok || v == nil {
		return "", nil
	}
	return fmt.Sprint(v), nil
}

func (h *Host) GetInt(property string) (int, error) {
	if err, ok := h.failGets[property]; ok {
		return 0, err
	}
	switch v := h.Properties[property].(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("property %s unavailable", property)
	}
}

func (h *Host) SetString(property string, value string) error {
	if err, ok := h.failSets[property]; ok {
		return err
	}
	h.Properties[property] = value
	return nil
}

type Timer struct {
	Delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *Timer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *Timer) Pending() bool {
	return !t.stopped && !t.fired
}

// Fire runs t if it is still pending, ahead of any older timer.
func (t *Timer) Fire() bool {
	if !t.Pending() {
		return false
	}
	t.fired = true
	t.fn()
	return true
}

func (h *Host) AfterFunc(delay time.Duration, fn func()) mpv.Timer {
	t := &Timer{Delay: delay, fn: fn}
	h.timers = append(h.timers, t)
	return t
}

// Pending returns the timers that have neither fired nor been stopped,
// oldest first.
func (h *Host) Pending() []*Timer {
	var out []*Timer
	for _, t := range h.timers {
		if t.Pending() {
			out = append(out, t)
		}
	}
	return out
}

// Fire runs the oldest pending timer and reports whether there was one.
func (h *Host) Fire() bool {
	for _, t := range h.timers {
		if t.Fire() {
			return true
		}
	}
	return false
}

func (h *Host) FireAll() int {
	n := 0
	for h.Fire() {
		n++
	}
	return n
}

func (h *Host) NewOverlay() *mpv.Overlay {
	h.nextOverlay++
	return mpv.NewOverlay(h, h.nextOverlay)
}
