package mpv

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/dexterlb/mpvipc"

	"mpvglue/internal/logging"
)

const (
	eventQueueSize = 256
	taskQueueSize  = 64
)

// Session runs script handlers against one mpv connection. Events, timer
// callbacks and handler side effects are serialized on the goroutine that
// calls Run.
type Session struct {
	conn     Conn
	logger   *logging.Logger
	handlers map[string][]func(Event)

	tasks    chan func()
	done     chan struct{}
	doneOnce sync.Once

	mu        sync.Mutex
	timers    map[uint64]*sessionTimer
	nextTimer uint64

	nextOverlay int
	logLevel    string
}

func NewSession(conn Conn, logger *logging.Logger) *Session {
	if conn == nil {
		panic("mpv.NewSession: conn must not be nil")
	}
	if logger == nil {
		panic("mpv.NewSession: logger must not be nil")
	}
	return &Session{
		conn:     conn,
		logger:   logger,
		handlers: map[string][]func(Event){},
		tasks:    make(chan func(), taskQueueSize),
		done:     make(chan struct{}),
		timers:   map[uint64]*sessionTimer{},
	}
}

// Subscribe registers handler for events named event. It must be called
// before Run or from a handler.
func (s *Session) Subscribe(event string, handler func(Event)) {
	if handler == nil {
		panic("mpv.Session.Subscribe: handler must not be nil")
	}
	s.handlers[event] = append(s.handlers[event], handler)
}

// Run dispatches events until ctx is done (nil) or mpv closes the
// connection (ErrClosed).
func (s *Session) Run(ctx context.Context) error {
	raw, stop := s.conn.NewEventListener()
	defer close(stop)

	pumpCtx, cancelPump := context.WithCancel(ctx)
	defer cancelPump()
	events := make(chan Event, eventQueueSize)
	go s.pump(pumpCtx, raw, events)

	closed := make(chan struct{})
	go func() {
		s.conn.WaitUntilClosed()
		close(closed)
	}()

	s.logger.Debug("mpv session loop started", logging.Field("subscriptions", len(s.handlers)))
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("stopping mpv session loop: context canceled")
			return nil
		case <-closed:
			s.logger.Debug("stopping mpv session loop: connection closed")
			return ErrClosed
		case event := <-events:
			s.dispatch(event)
		case task := <-s.tasks:
			task()
		}
	}
}

// pump moves IPC events into the loop queue without ever blocking the IPC
// reader, which also delivers replies to Command. Events that do not fit in
// out wait in a backlog; log messages are dropped once the backlog is full.
func (s *Session) pump(ctx context.Context, raw <-chan *mpvipc.Event, out chan<- Event) {
	var backlog []Event
	dropped := 0
	for {
		var send chan<- Event
		var head Event
		if len(backlog) > 0 && ctx.Err() == nil {
			send = out
			head = backlog[0]
		}
		select {
		case item, ok := <-raw:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				backlog = nil
				continue
			}
			event := eventFromIPC(item)
			if event.Name == EventLogMessage && len(backlog) >= eventQueueSize {
				dropped++
				if dropped == 1 || dropped%100 == 0 {
					s.logger.Debug("dropping player log messages: event queue full", logging.Field("dropped", dropped))
				}
				continue
			}
			backlog = append(backlog, event)
		case send <- head:
			backlog[0] = Event{}
			backlog = backlog[1:]
		}
	}
}

func (s *Session) dispatch(event Event) {
	handlers := s.handlers[event.Name]
	if len(handlers) == 0 {
		return
	}
	for _, handler := range handlers {
		handler(event)
	}
}

// Close cancels pending timers and closes the connection. Tasks posted
// after Close are discarded.
func (s *Session) Close() error {
	s.doneOnce.Do(func() { close(s.done) })
	s.mu.Lock()
	pending := len(s.timers)
	for id, t := range s.timers {
		t.timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	if pending > 0 {
		s.logger.Debug("canceled pending script timers", logging.Field("count", pending))
	}
	if s.conn.IsClosed() {
		return nil
	}
	return s.conn.Close()
}

func (s *Session) post(task func()) {
	select {
	case <-s.done:
	case s.tasks <- task:
	}
}

func (s *Session) Command(args ...any) error {
	_, err := s.conn.Call(args...)
	if err != nil && len(args) > 0 {
		return fmt.Errorf("mpv command %v: %w", args[0], err)
	}
	return err
}

// RequestLogMessages asks mpv for log-message events at level or more
// severe. Requests never lower the verbosity already requested.
func (s *Session) RequestLogMessages(level string) error {
	want, ok := LevelRank(level)
	if !ok {
		return fmt.Errorf("unknown mpv log level %q", level)
	}
	if s.logLevel != "" {
		if have, _ := LevelRank(s.logLevel); have >= want {
			return nil
		}
	}
	if err := s.Command("request_log_messages", level); err != nil {
		return err
	}
	s.logLevel = level
	s.logger.Debug("requested player log messages", logging.Field("level", level))
	return nil
}

func (s *Session) Get(property string) (any, error) {
	value, err := s.conn.Get(property)
	if err != nil {
		return nil, fmt.Errorf("get property %s: %w", property, err)
	}
	return value, nil
}

func (s *Session) GetString(property string) (string, error) {
	value, err := s.Get(property)
	if err != nil {
		return "", err
	}
	return stringValue(value), nil
}

func (s *Session) GetInt(property string) (int, error) {
	value, err := s.Get(property)
	if err != nil {
		return 0, err
	}
	return intValue(property, value)
}

func (s *Session) SetString(property string, value string) error {
	if err := s.conn.Set(property, value); err != nil {
		return fmt.Errorf("set property %s: %w", property, err)
	}
	return nil
}

func (s *Session) NewOverlay() *Overlay {
	s.nextOverlay++
	return NewOverlay(s, s.nextOverlay)
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(v)
	}
}

func intValue(property string, value any) (int, error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("property %s: %v is not an integer", property, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("property %s: %w", property, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("property %s: unexpected value %T", property, value)
	}
}

type sessionTimer struct {
	s     *Session
	id    uint64
	timer *time.Timer
}

// AfterFunc schedules fn to run on the session loop once delay has passed.
func (s *Session) AfterFunc(delay time.Duration, fn func()) Timer {
	s.mu.Lock()
	s.nextTimer++
	t := &sessionTimer{s: s, id: s.nextTimer}
	s.timers[t.id] = t
	t.timer = time.AfterFunc(delay, func() {
		s.post(func() {
			if t.forget() {
				fn()
			}
		})
	})
	s.mu.Unlock()
	return t
}

func (t *sessionTimer) Stop() bool {
	t.timer.Stop()
	return t.forget()
}

// forget reports whether the timer was still pending.
func (t *sessionTimer) forget() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}
