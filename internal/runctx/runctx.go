// Package runctx holds context-aware helpers shared by long-running loops.
package runctx

import (
	"context"
	"time"

	"mpvglue/internal/logging"
)

// SleepOrDone waits for delay and reports false if ctx ended before it
// elapsed.
func SleepOrDone(ctx context.Context, name string, logger *logging.Logger, delay time.Duration) bool {
	if logger == nil {
		panic("runctx.SleepOrDone: logger must not be nil")
	}
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		logger.Debug("stopping "+name+": context canceled while waiting", logging.Field("error", ctx.Err()))
		return false
	case <-timer.C:
		return true
	}
}
