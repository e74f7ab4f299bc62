package runctx

import (
	"context"
	"testing"
	"time"

	"mpvglue/internal/logging"
)

func quietLogger() *logging.Logger {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return logger
}

func TestSleepOrDone(t *testing.T) {
	if !SleepOrDone(context.Background(), "test", quietLogger(), time.Millisecond) {
		t.Fatalf("expected sleep to complete")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if SleepOrDone(ctx, "test", quietLogger(), time.Hour) {
		t.Fatalf("expected canceled sleep to report false")
	}
	if SleepOrDone(ctx, "test", quietLogger(), 0) {
		t.Fatalf("zero delay on a canceled context must report false")
	}
}
