package mpv

import (
	"strings"

	"github.com/dexterlb/mpvipc"
)

const (
	EventLogMessage = "log-message"
	EventStartFile  = "start-file"
	EventEndFile    = "end-file"
	EventShutdown   = "shutdown"
)

// Log levels in mpv's order, least verbose first.
const (
	LevelFatal = "fatal"
	LevelError = "error"
	LevelWarn  = "warn"
	LevelInfo  = "info"
	LevelV     = "v"
	LevelDebug = "debug"
	LevelTrace = "trace"
)

var levelRank = map[string]int{
	LevelFatal: 0,
	LevelError: 1,
	LevelWarn:  2,
	LevelInfo:  3,
	LevelV:     4,
	LevelDebug: 5,
	LevelTrace: 6,
}

// LevelRank reports the verbosity of an mpv log level. Unknown levels
// report ok=false.
func LevelRank(level string) (rank int, ok bool) {
	rank, ok = levelRank[strings.ToLower(strings.TrimSpace(level))]
	return rank, ok
}

// Event is a player event as delivered to script handlers. Prefix, Level
// and Text are only set for log-message events.
type Event struct {
	Name   string
	Prefix string
	Level  string
	Text   string
	Data   any
}

func eventFromIPC(raw *mpvipc.Event) Event {
	if raw == nil {
		return Event{}
	}
	return Event{
		Name:   raw.Name,
		Prefix: raw.Prefix,
		Level:  raw.Level,
		Text:   raw.Text,
		Data:   raw.Data,
	}
}
