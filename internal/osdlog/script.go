// Package osdlog shows recent player errors and warnings on the OSD. Each
// line disappears EvictDelay after it was added.
package osdlog

import (
	"strings"
	"time"

	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/mpv"
)

const EvictDelay = 4 * time.Second

type Callbacks struct {
	// OnChange receives the overlay buffer after every change.
	OnChange func(buffer string)
}

type Script struct {
	host      mpv.Host
	opts      config.OSDLogOptions
	blacklist Blacklist
	logger    *logging.Logger
	callbacks Callbacks

	overlay  *mpv.Overlay
	pending  []mpv.Timer
	attached bool
}

func New(host mpv.Host, opts config.OSDLogOptions, logger *logging.Logger, callbacks Callbacks) *Script {
	if host == nil {
		panic("osdlog.New: host must not be nil")
	}
	if logger == nil {
		panic("osdlog.New: logger must not be nil")
	}
	return &Script{
		host:      host,
		opts:      opts,
		blacklist: ParseBlacklist(opts.Blacklist),
		logger:    logger,
		callbacks: callbacks,
	}
}

func (s *Script) Attach() error {
	if s.attached {
		return nil
	}
	level := mpv.LevelError
	if s.opts.Warnings {
		level = mpv.LevelWarn
	}
	if err := s.host.RequestLogMessages(level); err != nil {
		return err
	}
	if s.overlay == nil {
		s.overlay = s.host.NewOverlay()
		s.host.Subscribe(mpv.EventLogMessage, s.handleLog)
	}
	s.attached = true
	s.logger.Debug("osd log attached",
		logging.Field("overlay", s.overlay.ID()),
		logging.Field("warnings", s.opts.Warnings),
		logging.Field("blacklist_terms", len(s.blacklist)),
	)
	return nil
}

// Detach cancels pending evictions and clears the overlay.
func (s *Script) Detach() {
	if !s.attached {
		return
	}
	s.attached = false
	canceled := 0
	for _, t := range s.pending {
		if t.Stop() {
			canceled++
		}
	}
	s.pending = nil
	if err := s.overlay.Remove(); err != nil {
		s.logger.Warn("failed to remove osd log overlay", logging.Field("error", err))
	}
	s.publish()
	s.logger.Debug("osd log detached", logging.Field("canceled_timers", canceled))
}

// Buffer returns the text currently shown on the overlay.
func (s *Script) Buffer() string {
	if s.overlay == nil {
		return ""
	}
	return s.overlay.Data
}

func (s *Script) handleLog(event mpv.Event) {
	if !s.attached {
		return
	}
	if s.blacklist.Excludes(event.Prefix, event.Text) {
		return
	}
	if !s.shows(event.Level) {
		return
	}
	s.overlay.Data += FormatLine(event.Level, event.Prefix, event.Text)
	s.update()
	var timer mpv.Timer
	timer = s.host.AfterFunc(EvictDelay, func() { s.evictOldest(timer) })
	s.pending = append(s.pending, timer)
}

func (s *Script) shows(level string) bool {
	switch strings.ToLower(level) {
	case mpv.LevelFatal, mpv.LevelError:
		return true
	case mpv.LevelWarn:
		return s.opts.Warnings
	default:
		return false
	}
}

// evictOldest drops the first buffered line on behalf of fired. Every
// timer removes one line, whichever message it was armed for.
func (s *Script) evictOldest(fired mpv.Timer) {
	for i, t := range s.pending {
		if t == fired {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	data := s.overlay.Data
	if idx := strings.IndexByte(data, '\n'); idx >= 0 {
		data = data[idx+1:]
	} else {
		data = ""
	}
	s.overlay.Data = data
	s.update()
}

func (s *Script) update() {
	if err := s.overlay.Update(); err != nil {
		s.logger.Warn("failed to update osd log overlay", logging.Field("error", err))
	}
	s.publish()
}

func (s *Script) publish() {
	if s.callbacks.OnChange != nil {
		s.callbacks.OnChange(s.overlay.Data)
	}
}
