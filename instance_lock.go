package main

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// instanceKey names the lock of one mpv socket. Two daemons may run side by
// side only when they drive different players.
func instanceKey(socket string) string {
	cleaned := strings.TrimSpace(socket)
	if !strings.HasPrefix(cleaned, `\\`) {
		if abs, err := filepath.Abs(cleaned); err == nil {
			cleaned = abs
		}
	}
	sum := sha256.Sum256([]byte(cleaned))
	return hex.EncodeToString(sum[:6])
}
