package ftpfix

import "strings"

const schemeFTP = "ftp"

// Unescape replaces every %XX escape with the byte it encodes. Escapes that
// are cut short or carry non-hex digits are kept as they are.
func Unescape(s string) string {
	if strings.IndexByte(s, '%') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, okHi := unhex(s[i+1])
			lo, okLo := unhex(s[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Normalize turns backslashes into slashes and decodes percent escapes.
func Normalize(path string) string {
	return Unescape(strings.ReplaceAll(path, `\`, "/"))
}

// Scheme returns the lower-cased URL scheme of path, or "" for plain paths.
func Scheme(path string) string {
	scheme, _, ok := strings.Cut(path, "://")
	if !ok || scheme == "" || strings.ContainsAny(scheme, "/\\") {
		return ""
	}
	return strings.ToLower(scheme)
}

func IsFTP(path string) bool {
	return Scheme(path) == schemeFTP
}

// Split cuts path at its last slash. The directory has no trailing slash.
func Split(path string) (dir string, file string) {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// HasExtension reports whether the last path element has a file extension.
// A URL with nothing after its host names a directory.
func HasExtension(path string) bool {
	if _, rest, ok := strings.Cut(path, "://"); ok && !strings.Contains(rest, "/") {
		return false
	}
	_, file := Split(path)
	dot := strings.LastIndexByte(file, '.')
	return dot > 0 && dot < len(file)-1
}

// Join appends name to dir with exactly one slash between them.
func Join(dir string, name string) string {
	return strings.TrimRight(dir, "/") + "/" + strings.TrimLeft(name, "/")
}
