package mpv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dexterlb/mpvipc"
)

var ErrClosed = errors.New("mpv connection closed")

// Conn is the part of *mpvipc.Connection the session relies on.
type Conn interface {
	Call(arguments ...interface{}) (interface{}, error)
	Get(property string) (interface{}, error)
	Set(property string, value interface{}) error
	NewEventListener() (chan *mpvipc.Event, chan struct{})
	WaitUntilClosed()
	IsClosed() bool
	Close() error
}

var _ Conn = (*mpvipc.Connection)(nil)

// Dial opens the IPC socket and checks that an mpv instance answers on it.
func Dial(ctx context.Context, socket string) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn := mpvipc.NewConnection(socket)
	if err := conn.Open(); err != nil {
		return nil, fmt.Errorf("open mpv socket %s: %w", socket, err)
	}
	if _, err := conn.Get("mpv-version"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("probe mpv on %s: %w", socket, err)
	}
	return conn, nil
}
