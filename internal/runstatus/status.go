package runstatus

import "strings"

const (
	WaitingForPlayer = "Waiting for mpv"
	Connected        = "Connected"
	Reconnecting     = "Reconnecting"
	Disconnected     = "Disconnected"
)

const (
	KeyWaitingForPlayer = "waiting for mpv"
	KeyConnected        = "connected"
	KeyReconnecting     = "reconnecting"
	KeyDisconnected     = "disconnected"
)

func Key(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
