package osdlog

import (
	"strings"

	"mpvglue/internal/mpv"
)

// ASS primary colour overrides, BGR order.
const (
	colorFatal = `{\1c&H3232FF&}`
	colorError = `{\1c&H7A77F2&}`
	colorWarn  = `{\1c&H66CCFF&}`
)

var levelColors = map[string]string{
	mpv.LevelFatal: colorFatal,
	mpv.LevelError: colorError,
	mpv.LevelWarn:  colorWarn,
}

// ass-events data cannot contain raw override blocks from player text.
var (
	assEscaper = strings.NewReplacer(
		`\`, "\\\ufeff",
		`{`, `\{`,
		`}`, `\}`,
		"\n", `\N`,
	)
	assUnescaper = strings.NewReplacer(
		"\\\ufeff", `\`,
		`\{`, `{`,
		`\}`, `}`,
		`\N`, "\n",
	)
)

// FormatLine renders one overlay line: colour tag, bracketed prefix and
// text, terminated by a newline.
func FormatLine(level string, prefix string, text string) string {
	text = strings.TrimRight(text, "\r\n")
	var b strings.Builder
	b.WriteString(levelColors[strings.ToLower(level)])
	b.WriteString("[")
	b.WriteString(assEscaper.Replace(prefix))
	b.WriteString("] ")
	b.WriteString(assEscaper.Replace(text))
	b.WriteString("\n")
	return b.String()
}

// ParseLine splits an overlay line back into its level and plain text.
// Lines without a known colour tag report an empty level.
func ParseLine(line string) (level string, text string) {
	line = strings.TrimSuffix(line, "\n")
	for name, tag := range levelColors {
		if rest, ok := strings.CutPrefix(line, tag); ok {
			return name, assUnescaper.Replace(rest)
		}
	}
	return "", assUnescaper.Replace(line)
}

// SplitLines returns the lines of an overlay buffer without terminators.
func SplitLines(buffer string) []string {
	buffer = strings.TrimSuffix(buffer, "\n")
	if buffer == "" {
		return nil
	}
	return strings.Split(buffer, "\n")
}
