package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"mpvglue/internal/config"
	"mpvglue/internal/logging"
	"mpvglue/internal/runtime"
)

const (
	logLineLimit   = 5_000
	minLogHeight   = 4
	osdPanelHeight = 6
)

type logMsg string
type statusMsg string
type overlayMsg string

type runDoneMsg struct {
	err error
}

type startResultMsg struct {
	err error
}

type statusKind int

const (
	statusIdle statusKind = iota
	statusWaiting
	statusConnected
	statusStopping
	statusFailed
)

// runner is the part of runtime.Controller the model drives.
type runner interface {
	Start(opts config.Options, logger *logging.Logger, hooks runtime.StartHooks) error
	Stop()
	IsRunning() bool
}

type modelDeps struct {
	runner      runner
	logger      *logging.Logger
	unsubscribe func()
	rootCancel  context.CancelFunc
	send        func(tea.Msg)
}

type modelChannels struct {
	logCh     chan string
	statusCh  chan string
	overlayCh chan string
}

type modelRuntime struct {
	running  bool
	starting bool
	status   string
	kind     statusKind
	lastErr  string
	overlay  string
}

type model struct {
	buildVersion string
	opts         config.Options
	modelDeps
	modelChannels
	modelRuntime
	cleanupOnce sync.Once

	keys    keyMap
	help    help.Model
	logView viewport.Model
	logText string
	follow  bool
	width   int
	height  int
}
