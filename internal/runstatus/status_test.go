package runstatus

import "testing"

func TestKeyMatchesStatuses(t *testing.T) {
	cases := map[string]string{
		WaitingForPlayer: KeyWaitingForPlayer,
		Connected:        KeyConnected,
		Reconnecting:     KeyReconnecting,
		Disconnected:     KeyDisconnected,
		"  Connected ":   KeyConnected,
	}
	for status, want := range cases {
		if got := Key(status); got != want {
			t.Fatalf("Key(%q) = %q, want %q", status, got, want)
		}
	}
}
