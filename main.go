package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/runtime"
	"mpvglue/internal/ui/tui"
)

var BuildVersion = "dev"

func main() {
	rootCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	opts, err := config.ParseOptions(nil)
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := config.ValidateRequired(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lock, lockedByOther, lockErr := acquireInstanceLock(opts.Socket)
	if lockErr != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize single-instance lock:", lockErr)
		os.Exit(2)
	}
	if lockedByOther {
		fmt.Fprintf(os.Stderr, "mpv glue is already running for %s.\n", opts.Socket)
		os.Exit(1)
	}
	defer func() {
		_ = lock.Release()
	}()

	if opts.TUI {
		tui.Run(rootCtx, BuildVersion, opts)
		return
	}
	if err := runPlain(rootCtx, opts); err != nil {
		_ = lock.Release()
		os.Exit(1)
	}
}

func runPlain(ctx context.Context, opts config.Options) error {
	logger := logging.New(opts.Debug)
	defer func() {
		_ = logger.Close()
	}()
	if opts.LogToFile {
		if err := logger.EnableFilePersistence(0); err != nil {
			logger.Warn("failed to enable file log persistence", logging.Field("error", err))
		}
	}
	logger.Info("starting mpv glue", logging.Field("version", BuildVersion))

	service, err := runtime.NewService(opts, logger)
	if err != nil {
		logger.Error("invalid configuration", logging.Field("error", err))
		return err
	}
	if err := service.RunContext(ctx); err != nil {
		logger.Error("mpv glue stopped with error", logging.Field("error", err))
		return err
	}
	return nil
}
