package config

import (
	"errors"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type Options struct {
	Socket         string `long:"socket" short:"s" env:"MPVGLUE_SOCKET" description:"mpv IPC socket (mpv --input-ipc-server)"`
	ScriptOptsDir  string `long:"script-opts-dir" env:"MPVGLUE_SCRIPT_OPTS_DIR" description:"Directory holding osd-log.conf and ftp-fix.conf"`
	NoOSDLog       bool   `long:"no-osd-log" env:"MPVGLUE_NO_OSD_LOG" description:"Disable the on-screen log overlay"`
	NoFTPFix       bool   `long:"no-ftp-fix" env:"MPVGLUE_NO_FTP_FIX" description:"Disable the FTP path fixer"`
	ExitWithPlayer bool   `long:"exit-with-player" env:"MPVGLUE_EXIT_WITH_PLAYER" description:"Exit when mpv closes the socket instead of waiting for it to come back"`
	TUI            bool   `long:"tui" env:"MPVGLUE_TUI" description:"Run the interactive terminal dashboard"`
	LogToFile      bool   `long:"log-to-file" env:"MPVGLUE_LOG_TO_FILE" description:"Persist daemon logs as JSON lines in the user cache directory"`
	Debug          bool   `long:"debug" env:"MPVGLUE_DEBUG" description:"Enable verbose debug output"`
}

// ParseOptions loads an optional .env file, parses args and fills in the
// platform defaults for anything left empty.
func ParseOptions(args []string) (Options, error) {
	_ = godotenv.Load()
	opts := Options{}
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return Options{}, err
	}
	return ApplyDefaults(opts), nil
}

func ApplyDefaults(opts Options) Options {
	opts.Socket = strings.TrimSpace(opts.Socket)
	if opts.Socket == "" {
		opts.Socket = DefaultSocketPath()
	}
	opts.ScriptOptsDir = strings.TrimSpace(opts.ScriptOptsDir)
	if opts.ScriptOptsDir == "" {
		opts.ScriptOptsDir = DefaultScriptOptsDir()
	}
	return opts
}

func ValidateRequired(opts Options) error {
	if strings.TrimSpace(opts.Socket) == "" {
		return errors.New("mpv socket path is required")
	}
	if opts.NoOSDLog && opts.NoFTPFix {
		return errors.New("both scripts are disabled; nothing to run")
	}
	return nil
}
