//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

func DefaultSocketPath() string {
	return "/tmp/mpvsocket"
}

// DefaultScriptOptsDir mirrors mpv's own lookup of ~~/script-opts.
func DefaultScriptOptsDir() string {
	if dir := os.Getenv("MPV_HOME"); dir != "" {
		return filepath.Join(dir, "script-opts")
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mpv", "script-opts")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mpv", "script-opts")
}
