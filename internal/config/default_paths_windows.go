//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func DefaultSocketPath() string {
	return `\\.\pipe\mpvsocket`
}

func DefaultScriptOptsDir() string {
	if dir := os.Getenv("MPV_HOME"); dir != "" {
		return filepath.Join(dir, "script-opts")
	}
	root, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(root, "mpv", "script-opts")
}
