package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mpvglue/internal/app"
	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/mpv"
)

// Controller starts and stops the service on behalf of an interactive UI.
// At most one service runs at a time.
type Controller struct {
	rootCtx context.Context
	dial    app.DialFunc

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

type StartHooks struct {
	OnStatus  func(string)
	OnOverlay func(string)
	OnExit    func(error)
}

func NewController(rootCtx context.Context) *Controller {
	return newController(rootCtx, mpv.Dial)
}

func newController(rootCtx context.Context, dial app.DialFunc) *Controller {
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	return &Controller{rootCtx: rootCtx, dial: dial}
}

func (c *Controller) Start(opts config.Options, logger *logging.Logger, hooks StartHooks) error {
	if logger == nil {
		panic("runtime.Controller.Start: logger must not be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return errors.New("mpv glue is already running")
	}
	logger.Debug("runtime start requested",
		logging.Field("socket", opts.Socket),
		logging.Field("script_opts_dir", opts.ScriptOptsDir),
		logging.Field("has_overlay_hook", hooks.OnOverlay != nil),
	)
	service, err := newService(opts, c.dial, logger, hooks)
	if err != nil {
		return fmt.Errorf("start mpv glue: %w", err)
	}

	ctx, cancel := context.WithCancel(c.rootCtx)
	c.cancel = cancel
	c.running = true
	c.wg.Go(func() {
		defer cancel()
		runErr := service.RunContext(ctx)
		logServiceExit(logger, runErr)

		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()

		if hooks.OnExit != nil {
			hooks.OnExit(runErr)
		}
	})
	return nil
}

func logServiceExit(logger *logging.Logger, err error) {
	switch {
	case err == nil:
		logger.Info("runtime service exited")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("runtime service exited due to context cancellation", logging.Field("error", err))
	default:
		logger.Warn("runtime service exited with error", logging.Field("error", err))
	}
}

func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the running service has exited. A positive timeout
// bounds the wait; the result reports whether the service exited in time.
func (c *Controller) Wait(timeout time.Duration) bool {
	exited := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(exited)
	}()
	if timeout <= 0 {
		<-exited
		return true
	}
	select {
	case <-exited:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (c *Controller) StopAndWait(timeout time.Duration) bool {
	c.Stop()
	return c.Wait(timeout)
}

func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
