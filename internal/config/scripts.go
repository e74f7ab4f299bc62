package config

import "strings"

const (
	OSDLogScript = "osd-log"
	FTPFixScript = "ftp-fix"
)

const defaultPlaylistName = "playlist.pls"

type OSDLogOptions struct {
	// Blacklist is a |-separated list of log prefixes or message texts
	// that never reach the overlay.
	Blacklist string
	// Warnings shows warn-level messages in addition to errors.
	Warnings bool
}

type FTPOptions struct {
	DirectoryPlaylist      string
	OrderedChapterPlaylist string
	AlwaysCheckSubs        bool
}

var (
	osdLogKeys = []string{"blacklist", "warnings"}
	ftpKeys    = []string{"directory_playlist", "ordered_chapter_playlist", "always_check_subs"}
)

func DefaultOSDLogOptions() OSDLogOptions {
	return OSDLogOptions{}
}

func DefaultFTPOptions() FTPOptions {
	return FTPOptions{
		DirectoryPlaylist:      defaultPlaylistName,
		OrderedChapterPlaylist: defaultPlaylistName,
		AlwaysCheckSubs:        true,
	}
}

// OSDLogOptionsFrom returns the parsed options and the keys it did not
// recognise.
func OSDLogOptionsFrom(o ScriptOpts) (OSDLogOptions, []string, error) {
	opts := DefaultOSDLogOptions()
	opts.Blacklist = o.String("blacklist", opts.Blacklist)
	warnings, err := o.Bool(OSDLogScript, "warnings", opts.Warnings)
	if err != nil {
		return OSDLogOptions{}, nil, err
	}
	opts.Warnings = warnings
	return opts, o.Unknown(osdLogKeys...), nil
}

func FTPOptionsFrom(o ScriptOpts) (FTPOptions, []string, error) {
	opts := DefaultFTPOptions()
	opts.DirectoryPlaylist = nonEmpty(o.String("directory_playlist", ""), opts.DirectoryPlaylist)
	opts.OrderedChapterPlaylist = nonEmpty(o.String("ordered_chapter_playlist", ""), opts.OrderedChapterPlaylist)
	always, err := o.Bool(FTPFixScript, "always_check_subs", opts.AlwaysCheckSubs)
	if err != nil {
		return FTPOptions{}, nil, err
	}
	opts.AlwaysCheckSubs = always
	return opts, o.Unknown(ftpKeys...), nil
}

func nonEmpty(value string, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
