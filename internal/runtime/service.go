package runtime

import (
	"context"

	"mpvglue/internal/app"
	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/mpv"
)

type Service interface {
	RunContext(ctx context.Context) error
}

func NewService(opts config.Options, logger *logging.Logger) (Service, error) {
	return NewServiceWithHooks(opts, logger, StartHooks{})
}

func NewServiceWithHooks(opts config.Options, logger *logging.Logger, hooks StartHooks) (Service, error) {
	return newService(opts, mpv.Dial, logger, hooks)
}

func newService(opts config.Options, dial app.DialFunc, logger *logging.Logger, hooks StartHooks) (Service, error) {
	if logger == nil {
		panic("runtime.NewServiceWithHooks: logger must not be nil")
	}
	if err := config.ValidateRequired(opts); err != nil {
		return nil, err
	}
	logger.Debug("constructed mpv service",
		logging.Field("socket", opts.Socket),
		logging.Field("exit_with_player", opts.ExitWithPlayer),
	)
	return app.New(opts, dial, logger, app.Callbacks{
		OnStatusChange:  hooks.OnStatus,
		OnOverlayChange: hooks.OnOverlay,
	}), nil
}
