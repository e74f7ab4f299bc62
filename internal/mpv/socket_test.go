//go:build !windows

package mpv

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForSocketReturnsWhenSocketExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpv.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := WaitForSocket(ctx, path); err != nil {
		t.Fatalf("expected existing socket to be found, got %v", err)
	}
}

func TestWaitForSocketSeesLateSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpv.sock")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- WaitForSocket(ctx, path) }()

	time.Sleep(50 * time.Millisecond)
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer ln.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected socket to be detected, got %v", err)
		}
	case <-time.After(4 * time.Second):
		t.Fatalf("socket creation was not detected")
	}
}

func TestWaitForSocketIgnoresRegularFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpv.sock")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := WaitForSocket(ctx, path); err == nil {
		t.Fatalf("expected a regular file not to count as a socket")
	}
}
