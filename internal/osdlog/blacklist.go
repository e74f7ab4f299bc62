package osdlog

import "strings"

// Blacklist holds message prefixes and texts that never reach the overlay.
type Blacklist map[string]bool

// ParseBlacklist splits a |-separated option value. Terms are trimmed and
// empty terms are dropped.
func ParseBlacklist(raw string) Blacklist {
	out := Blacklist{}
	for _, term := range strings.Split(raw, "|") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		out[term] = true
	}
	return out
}

// Excludes reports whether a message with prefix and text is blacklisted,
// either by its prefix or by its trimmed text.
func (b Blacklist) Excludes(prefix string, text string) bool {
	if len(b) == 0 {
		return false
	}
	return b[prefix] || b[strings.TrimSpace(text)]
}
