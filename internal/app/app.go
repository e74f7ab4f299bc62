package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"mpvglue/internal/config"
	"mpvglue/internal/ftpfix"
	"mpvglue/internal/logging"
	"mpvglue/internal/mpv"
	"mpvglue/internal/osdlog"
	"mpvglue/internal/runctx"
	"mpvglue/internal/runstatus"
)

const (
	reconnectDelay    = time.Second
	reconnectMaxDelay = 30 * time.Second

	propertyScriptOpts = "script-opts"
)

// DialFunc connects to the mpv IPC socket.
type DialFunc func(ctx context.Context, socket string) (mpv.Conn, error)

type App struct {
	opts   config.Options
	dial   DialFunc
	logger *logging.Logger
	hooks  Callbacks
	status runtimeStatusState

	waitForSocket     func(ctx context.Context, path string) error
	reconnectDelay    time.Duration
	reconnectMaxDelay time.Duration
}

type Callbacks struct {
	OnStatusChange  func(string)
	OnOverlayChange func(string)
}

type script interface {
	Attach() error
	Detach()
}

type namedScript struct {
	name   string
	script script
}

func New(opts config.Options, dial DialFunc, logger *logging.Logger, hooks Callbacks) *App {
	if dial == nil {
		panic("app.New: dial must not be nil")
	}
	if logger == nil {
		panic("app.New: logger must not be nil")
	}
	return &App{
		opts:              opts,
		dial:              dial,
		logger:            logger,
		hooks:             hooks,
		waitForSocket:     mpv.WaitForSocket,
		reconnectDelay:    reconnectDelay,
		reconnectMaxDelay: reconnectMaxDelay,
	}
}

func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext keeps the scripts attached to mpv until ctx is done. When the
// player goes away it waits for it to return, unless ExitWithPlayer is set.
func (a *App) RunContext(ctx context.Context) error {
	if a.opts.NoOSDLog && a.opts.NoFTPFix {
		return ErrNoScripts
	}
	a.logger.Info("mpv glue starting",
		logging.Field("socket", a.opts.Socket),
		logging.Field("script_opts_dir", a.opts.ScriptOptsDir),
		logging.Field("osd_log", !a.opts.NoOSDLog),
		logging.Field("ftp_fix", !a.opts.NoFTPFix),
	)

	retry := a.newBackOff()
	for {
		a.setRuntimeStatus(runstatus.WaitingForPlayer)
		conn, err := a.connect(ctx, retry)
		if err != nil {
			if ctx.Err() != nil {
				return a.stopped()
			}
			a.setRuntimeStatus(runstatus.Disconnected)
			return err
		}
		a.setRuntimeStatus(runstatus.Connected)

		ran, err := a.runSession(ctx, conn)
		if ctx.Err() != nil {
			return a.stopped()
		}
		if ran {
			retry.Reset()
		}
		switch {
		case errors.Is(err, mpv.ErrClosed):
			a.logger.Info("mpv closed the connection")
		case errors.Is(err, ErrScriptOptions):
			a.setRuntimeStatus(runstatus.Disconnected)
			return err
		case err != nil:
			a.logger.Warn("mpv session failed", logging.Field("error", err))
		}
		if a.opts.ExitWithPlayer {
			a.setRuntimeStatus(runstatus.Disconnected)
			a.logger.Info("mpv glue stopped with the player")
			return nil
		}
		a.setRuntimeStatus(runstatus.Reconnecting)
		if !ran && !runctx.SleepOrDone(ctx, "mpv reconnect", a.logger, retry.NextBackOff()) {
			return a.stopped()
		}
	}
}

func (a *App) newBackOff() *backoff.ExponentialBackOff {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = a.reconnectDelay
	retry.MaxInterval = a.reconnectMaxDelay
	retry.Reset()
	return retry
}

func (a *App) connect(ctx context.Context, retry *backoff.ExponentialBackOff) (mpv.Conn, error) {
	return backoff.Retry(ctx, func() (mpv.Conn, error) {
		if err := a.waitForSocket(ctx, a.opts.Socket); err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		conn, err := a.dial(ctx, a.opts.Socket)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		return conn, nil
	},
		backoff.WithBackOff(retry),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			a.logger.Debug("retrying mpv connection",
				logging.Field("error", err),
				logging.Field("next_retry", next.String()))
		}),
	)
}

func (a *App) stopped() error {
	a.setRuntimeStatus(runstatus.Disconnected)
	a.logger.Info("mpv glue stopped")
	return nil
}

// runSession attaches the scripts to one connection and runs it. ran
// reports whether the session got as far as dispatching events.
func (a *App) runSession(ctx context.Context, conn mpv.Conn) (ran bool, err error) {
	session := mpv.NewSession(conn, a.logger)
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			a.logger.Debug("failed to close mpv connection", logging.Field("error", closeErr))
		}
	}()

	property, err := session.Get(propertyScriptOpts)
	if err != nil {
		a.logger.Debug("script-opts property unavailable", logging.Field("error", err))
		property = nil
	}
	scripts, err := a.buildScripts(session, property)
	if err != nil {
		return false, err
	}

	attached := make([]namedScript, 0, len(scripts))
	defer func() {
		if conn.IsClosed() {
			return
		}
		for i := len(attached) - 1; i >= 0; i-- {
			attached[i].script.Detach()
		}
	}()
	for _, s := range scripts {
		if err := s.script.Attach(); err != nil {
			return false, fmt.Errorf("attach %s: %w", s.name, err)
		}
		attached = append(attached, s)
	}
	session.Subscribe(mpv.EventLogMessage, a.mirrorPlayerLog)

	a.logger.Info("attached to mpv", logging.Field("scripts", scriptNames(attached)))
	return true, session.Run(ctx)
}

func (a *App) buildScripts(host mpv.Host, property any) ([]namedScript, error) {
	var scripts []namedScript
	if !a.opts.NoOSDLog {
		raw, err := config.LoadScriptOpts(a.opts.ScriptOptsDir, config.OSDLogScript, property)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScriptOptions, err)
		}
		opts, unknown, err := config.OSDLogOptionsFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScriptOptions, err)
		}
		a.warnUnknown(config.OSDLogScript, unknown)
		logger := a.logger.With(logging.Field("script", config.OSDLogScript))
		scripts = append(scripts, namedScript{
			name:   config.OSDLogScript,
			script: osdlog.New(host, opts, logger, osdlog.Callbacks{OnChange: a.hooks.OnOverlayChange}),
		})
	}
	if !a.opts.NoFTPFix {
		raw, err := config.LoadScriptOpts(a.opts.ScriptOptsDir, config.FTPFixScript, property)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScriptOptions, err)
		}
		opts, unknown, err := config.FTPOptionsFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScriptOptions, err)
		}
		a.warnUnknown(config.FTPFixScript, unknown)
		logger := a.logger.With(logging.Field("script", config.FTPFixScript))
		scripts = append(scripts, namedScript{
			name:   config.FTPFixScript,
			script: ftpfix.New(host, opts, logger),
		})
	}
	return scripts, nil
}

func (a *App) warnUnknown(script string, keys []string) {
	if len(keys) == 0 {
		return
	}
	a.logger.Warn("ignoring unknown script options",
		logging.Field("script", script),
		logging.Field("keys", keys),
	)
}

func (a *App) mirrorPlayerLog(event mpv.Event) {
	a.logger.Debug(strings.TrimRight(event.Text, "\r\n"),
		logging.Field("prefix", event.Prefix),
		logging.Field("level", event.Level),
	)
}

func scriptNames(scripts []namedScript) []string {
	names := make([]string, 0, len(scripts))
	for _, s := range scripts {
		names = append(names, s.name)
	}
	return names
}

type runtimeStatusState struct {
	mu      sync.Mutex
	current string
}

func (s *runtimeStatusState) update(status string) (string, string, bool) {
	trimmed := strings.TrimSpace(status)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == trimmed {
		return s.current, trimmed, false
	}
	previous := s.current
	s.current = trimmed
	return previous, trimmed, true
}

func (a *App) notifyStatus(status string) {
	if a.hooks.OnStatusChange == nil {
		return
	}
	a.hooks.OnStatusChange(status)
}

func (a *App) setRuntimeStatus(status string) {
	previous, next, changed := a.status.update(status)
	if !changed {
		return
	}
	a.logger.Debug("runtime status transition",
		logging.Field("from", previous),
		logging.Field("to", next),
	)
	a.notifyStatus(status)
}
