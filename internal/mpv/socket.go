package mpv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const socketRecheckPeriod = 2 * time.Second

// WaitForSocket blocks until path exists or ctx is done. Named pipes on
// Windows cannot be watched and return immediately.
func WaitForSocket(ctx context.Context, path string) error {
	if runtime.GOOS == "windows" || strings.HasPrefix(path, `\\.\pipe\`) {
		return ctx.Err()
	}
	if socketExists(path) {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to initialize fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch socket directory %s: %w", dir, err)
	}
	// The socket may have appeared between the first check and Add.
	if socketExists(path) {
		return nil
	}

	recheck := time.NewTicker(socketRecheckPeriod)
	defer recheck.Stop()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("socket watcher closed")
			}
			if filepath.Clean(event.Name) == target && event.Op&(fsnotify.Create|fsnotify.Rename) != 0 && socketExists(path) {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("socket watcher closed")
			}
			if err != nil {
				return fmt.Errorf("socket watcher: %w", err)
			}
		case <-recheck.C:
			if socketExists(path) {
				return nil
			}
		}
	}
}

func socketExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode()&os.ModeSocket != 0
}
