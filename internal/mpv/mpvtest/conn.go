// Package mpvtest provides in-memory stand-ins for an mpv connection and
// for the script host.
package mpvtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dexterlb/mpvipc"
)

var errNoProperty = errors.New("property unavailable")

// Conn is a scripted mpv.Conn. Properties answer Get and Set, and every
// Call is recorded.
type Conn struct {
	mu         sync.Mutex
	emitMu     sync.Mutex
	calls      [][]any
	properties map[string]any
	failing    map[string]error
	listeners  map[int]chan *mpvipc.Event
	nextID     int
	closed     chan struct{}
	closeOnce  sync.Once
	listening  chan struct{}
	listenOnce sync.Once
}

func NewConn() *Conn {
	return &Conn{
		properties: map[string]any{},
		failing:    map[string]error{},
		listeners:  map[int]chan *mpvipc.Event{},
		closed:     make(chan struct{}),
		listening:  make(chan struct{}),
	}
}

func (c *Conn) SetProperty(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties[name] = value
}

func (c *Conn) Property(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.properties[name]
	return v, ok
}

// FailCommand makes every Call whose first argument is name return err.
func (c *Conn) FailCommand(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing[name] = err
}

func (c *Conn) Call(arguments ...interface{}) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, append([]any(nil), arguments...))
	if len(arguments) > 0 {
		if err, ok := c.failing[fmt.Sprint(arguments[0])]; ok {
			return nil, err
		}
	}
	return nil, nil
}

// Calls returns a copy of the recorded Call arguments.
func (c *Conn) Calls() [][]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]any, len(c.calls))
	for i, call := range c.calls {
		out[i] = append([]any(nil), call...)
	}
	return out
}

func (c *Conn) Get(property string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.properties[property]
	if !ok {
		return nil, fmt.Errorf("%s: %w", property, errNoProperty)
	}
	return v, nil
}

func (c *Conn) Set(property string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties[property] = value
	return nil
}

func (c *Conn) NewEventListener() (chan *mpvipc.Event, chan struct{}) {
	ch := make(chan *mpvipc.Event)
	stop := make(chan struct{})
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = ch
	c.mu.Unlock()
	c.listenOnce.Do(func() { close(c.listening) })
	go func() {
		<-stop
		c.emitMu.Lock()
		defer c.emitMu.Unlock()
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
		close(ch)
	}()
	return ch, stop
}

// Listening is closed once the first event listener is registered.
func (c *Conn) Listening() <-chan struct{} {
	return c.listening
}

// Emit delivers event to every registered listener. It blocks until each
// listener has received it, the way the IPC reader does.
func (c *Conn) Emit(event *mpvipc.Event) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	targets := make([]chan *mpvipc.Event, 0, len(c.listeners))
	for _, ch := range c.listeners {
		targets = append(targets, ch)
	}
	c.mu.Unlock()
	for _, ch := range targets {
		select {
		case ch <- event:
		case <-c.closed:
			return
		}
	}
}

func (c *Conn) WaitUntilClosed() {
	<-c.closed
}

func (c *Conn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}
