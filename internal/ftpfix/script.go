// Package ftpfix corrects how the player opens files over FTP. It decodes
// percent-escaped paths, loads directory playlists, points ordered chapters
// at the remote playlist and retries subtitles the player failed to open.
package ftpfix

import (
	"strings"

	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/mpv"
)

const (
	propertyPath            = "path"
	propertyOrderedChapters = "ordered-chapters-files"
	propertyPlaylistPos     = "playlist-pos"
	propertyPlaylistCount   = "playlist-count"

	subtitleFailurePrefix = "Can not open external file "
)

type Script struct {
	host   mpv.Host
	opts   config.FTPOptions
	logger *logging.Logger

	attached bool
	ftp      bool
	saved    string
	lastPath string
	lastSub  string
}

func New(host mpv.Host, opts config.FTPOptions, logger *logging.Logger) *Script {
	if host == nil {
		panic("ftpfix.New: host must not be nil")
	}
	if logger == nil {
		panic("ftpfix.New: logger must not be nil")
	}
	defaults := config.DefaultFTPOptions()
	if strings.TrimSpace(opts.DirectoryPlaylist) == "" {
		opts.DirectoryPlaylist = defaults.DirectoryPlaylist
	}
	if strings.TrimSpace(opts.OrderedChapterPlaylist) == "" {
		opts.OrderedChapterPlaylist = defaults.OrderedChapterPlaylist
	}
	return &Script{host: host, opts: opts, logger: logger}
}

func (s *Script) Attach() error {
	if s.attached {
		return nil
	}
	if err := s.host.RequestLogMessages(mpv.LevelWarn); err != nil {
		return err
	}
	s.host.Subscribe(mpv.EventStartFile, s.handleStartFile)
	s.host.Subscribe(mpv.EventLogMessage, s.handleLog)
	s.attached = true
	s.logger.Debug("ftp fix attached",
		logging.Field("directory_playlist", s.opts.DirectoryPlaylist),
		logging.Field("ordered_chapter_playlist", s.opts.OrderedChapterPlaylist),
		logging.Field("always_check_subs", s.opts.AlwaysCheckSubs),
	)
	return nil
}

// Detach leaves ftp mode, restoring the saved chapter playlist setting.
func (s *Script) Detach() {
	if !s.attached {
		return
	}
	s.attached = false
	if s.ftp {
		s.leaveFTP()
	}
	s.logger.Debug("ftp fix detached")
}

// InFTPMode reports whether the current file was opened over FTP.
func (s *Script) InFTPMode() bool {
	return s.ftp
}

func (s *Script) handleStartFile(mpv.Event) {
	if !s.attached {
		return
	}
	path, err := s.host.GetString(propertyPath)
	if err != nil {
		s.logger.Warn("failed to read playback path", logging.Field("error", err))
		return
	}
	if path == s.lastPath {
		return
	}

	if !IsFTP(path) {
		if s.ftp {
			s.leaveFTP()
		}
		s.lastPath = path
		return
	}
	if !s.ftp {
		if !s.enterFTP() {
			return
		}
	}

	fixed := Normalize(path)
	dir, _ := Split(fixed)
	if !HasExtension(fixed) {
		dir = strings.TrimRight(fixed, "/")
		fixed = Join(fixed, s.opts.DirectoryPlaylist)
	}
	chapters := Join(dir, s.opts.OrderedChapterPlaylist)
	if err := s.host.SetString(propertyOrderedChapters, chapters); err != nil {
		s.logger.Warn("failed to set ordered chapters playlist", logging.Field("path", chapters), logging.Field("error", err))
		return
	}
	// Recorded only once the chapter playlist is set, so a failed attempt
	// is retried on the next start of the same path.
	s.lastPath = fixed
	if fixed == path {
		return
	}
	s.reload(path, fixed)
}

func (s *Script) enterFTP() bool {
	saved, err := s.host.GetString(propertyOrderedChapters)
	if err != nil {
		s.logger.Warn("failed to save ordered chapters playlist", logging.Field("error", err))
		return false
	}
	s.saved = saved
	s.ftp = true
	s.logger.Debug("entered ftp mode", logging.Field("saved_ordered_chapters", saved))
	return true
}

func (s *Script) leaveFTP() {
	s.ftp = false
	if err := s.host.SetString(propertyOrderedChapters, s.saved); err != nil {
		s.logger.Warn("failed to restore ordered chapters playlist", logging.Field("error", err))
	}
	s.logger.Debug("left ftp mode", logging.Field("restored_ordered_chapters", s.saved))
	s.saved = ""
}

// reload replaces the current playlist entry with fixed, keeping its place.
func (s *Script) reload(original string, fixed string) {
	s.logger.Info("reloading ftp path",
		logging.Field("from", logging.Truncate(original)),
		logging.Field("to", logging.Truncate(fixed)),
	)
	if err := s.host.Command("loadfile", fixed, "append"); err != nil {
		s.logger.Warn("ftp reload failed", logging.Field("step", "loadfile"), logging.Field("error", err))
		return
	}
	count, err := s.host.GetInt(propertyPlaylistCount)
	if err != nil {
		s.logger.Warn("ftp reload failed", logging.Field("step", "playlist-count"), logging.Field("error", err))
		return
	}
	pos, err := s.host.GetInt(propertyPlaylistPos)
	if err != nil {
		s.logger.Warn("ftp reload failed", logging.Field("step", "playlist-pos"), logging.Field("error", err))
		return
	}
	if err := s.host.Command("playlist-move", count-1, pos+1); err != nil {
		s.logger.Warn("ftp reload failed", logging.Field("step", "playlist-move"), logging.Field("error", err))
		return
	}
	if err := s.host.Command("playlist-remove", "current"); err != nil {
		s.logger.Warn("ftp reload failed", logging.Field("step", "playlist-remove"), logging.Field("error", err))
	}
}

func (s *Script) handleLog(event mpv.Event) {
	if !s.attached || event.Level != mpv.LevelWarn {
		return
	}
	if !s.opts.AlwaysCheckSubs && !s.ftp {
		return
	}
	candidate, ok := FailedSubtitle(event.Text)
	if !ok || !IsFTP(candidate) {
		return
	}
	decoded := Unescape(candidate)
	if decoded == s.lastSub {
		s.logger.Debug("not retrying subtitle again", logging.Field("path", logging.Truncate(decoded)))
		return
	}
	s.lastSub = decoded
	s.logger.Info("retrying ftp subtitle", logging.Field("path", logging.Truncate(decoded)))
	if err := s.host.Command("sub-add", decoded); err != nil {
		s.logger.Warn("failed to add subtitle", logging.Field("path", logging.Truncate(decoded)), logging.Field("error", err))
	}
}

// FailedSubtitle extracts the file name from the player's warning about an
// external file it could not open.
func FailedSubtitle(text string) (string, bool) {
	rest, ok := strings.CutPrefix(text, subtitleFailurePrefix)
	if !ok {
		return "", false
	}
	rest = strings.TrimRight(rest, "\r\n")
	rest = strings.TrimSuffix(rest, ".")
	if rest == "" {
		return "", false
	}
	return rest, true
}
