// Package tui is the interactive terminal dashboard: runtime status, a
// mirror of the on-screen log overlay and the daemon log.
package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/runtime"
)

const (
	logChannelBufferSize     = 512
	statusChannelBufferSize  = 16
	overlayChannelBufferSize = 16
	runErrorExitCode         = 1
)

func Run(rootCtx context.Context, buildVersion string, opts config.Options) {
	logger := logging.New(opts.Debug)
	defer func() {
		_ = logger.Close()
	}()
	if opts.LogToFile {
		if err := logger.EnableFilePersistence(0); err != nil {
			logger.Warn("failed to enable file log persistence", logging.Field("error", err))
		}
	}
	logger.SetTerminalOutputEnabled(false)
	logger.Info("starting mpv glue dashboard", logging.Field("version", buildVersion))

	runCtx, runCancel := context.WithCancel(rootCtx)
	m := newModel(buildVersion, opts, runtime.NewController(runCtx), logger)
	m.rootCancel = runCancel

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(rootCtx))
	m.send = program.Send
	result, runErr := program.Run()
	if final, ok := result.(*model); ok && final != nil {
		final.cleanup()
	} else {
		m.cleanup()
	}
	if runErr != nil && rootCtx.Err() == nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(runErrorExitCode)
	}
}

func newModel(buildVersion string, opts config.Options, r runner, logger *logging.Logger) *model {
	if logger == nil {
		panic("tui.newModel: logger must not be nil")
	}
	m := &model{
		buildVersion: buildVersion,
		opts:         opts,
		modelDeps: modelDeps{
			runner: r,
			logger: logger,
		},
		modelChannels: modelChannels{
			logCh:     make(chan string, logChannelBufferSize),
			statusCh:  make(chan string, statusChannelBufferSize),
			overlayCh: make(chan string, overlayChannelBufferSize),
		},
		modelRuntime: modelRuntime{
			status: "Idle",
			kind:   statusIdle,
		},
		keys:    newKeyMap(),
		help:    help.New(),
		logView: viewport.New(80, minLogHeight),
		follow:  true,
	}
	m.unsubscribe = logger.Subscribe(func(event logging.Event) {
		sendDropOldest(m.logCh, logging.FormatEventANSI(event))
	})
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		waitForLog(m.logCh),
		waitForStatus(m.statusCh),
		waitForOverlay(m.overlayCh),
		m.startCmd(),
	)
}

// sendDropOldest delivers value without blocking the producer, discarding
// the oldest queued value when ch is full.
func sendDropOldest(ch chan string, value string) {
	select {
	case ch <- value:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- value:
	default:
	}
}

func waitForLog(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-ch
		if !ok {
			return nil
		}
		return logMsg(line)
	}
}

func waitForStatus(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(status)
	}
}

func waitForOverlay(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		buffer, ok := <-ch
		if !ok {
			return nil
		}
		return overlayMsg(buffer)
	}
}
