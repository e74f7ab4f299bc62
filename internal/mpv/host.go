package mpv

import "time"

// Host is the player surface a script drives. Handlers registered through
// Subscribe and callbacks scheduled through AfterFunc all run on one
// goroutine, one at a time.
type Host interface {
	Commander
	Subscribe(event string, handler func(Event))
	RequestLogMessages(level string) error
	GetString(property string) (string, error)
	GetInt(property string) (int, error)
	SetString(property string, value string) error
	AfterFunc(delay time.Duration, fn func()) Timer
	NewOverlay() *Overlay
}

type Commander interface {
	Command(args ...any) error
}

// Timer is a pending one-shot callback. Stop reports whether it prevented
// the callback from running.
type Timer interface {
	Stop() bool
}
