package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScriptOpts holds the key=value options of one script.
type ScriptOpts map[string]string

type OptionError struct {
	Script string
	Key    string
	Value  string
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("script-opts %s: invalid value %q for %s: %s", e.Script, e.Value, e.Key, e.Reason)
}

// ReadScriptOptsFile parses an mpv script-opts conf file. A missing file is
// an empty option set.
func ReadScriptOptsFile(path string) (ScriptOpts, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ScriptOpts{}, nil
		}
		return nil, err
	}
	defer f.Close()

	opts := ScriptOpts{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected key=value", path, lineNo)
		}
		// mpv keeps the value verbatim; only the key is trimmed.
		opts[strings.TrimSpace(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return opts, nil
}

// OverridesFromProperty extracts the entries for script from the IPC value
// of mpv's script-opts property, with the "<script>-" prefix removed.
func OverridesFromProperty(value any, script string) ScriptOpts {
	prefix := script + "-"
	out := ScriptOpts{}
	add := func(key string, val string) {
		if name, ok := strings.CutPrefix(key, prefix); ok && name != "" {
			out[name] = val
		}
	}
	switch v := value.(type) {
	case map[string]any:
		for key, raw := range v {
			add(key, fmt.Sprint(raw))
		}
	case map[string]string:
		for key, raw := range v {
			add(key, raw)
		}
	case string:
		for _, pair := range strings.Split(v, ",") {
			key, val, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			add(strings.TrimSpace(key), val)
		}
	}
	return out
}

// LoadScriptOpts reads <dir>/<script>.conf and applies the overrides taken
// from the script-opts property on top.
func LoadScriptOpts(dir string, script string, property any) (ScriptOpts, error) {
	opts := ScriptOpts{}
	if strings.TrimSpace(dir) != "" {
		fromFile, err := ReadScriptOptsFile(filepath.Join(dir, script+".conf"))
		if err != nil {
			return nil, fmt.Errorf("read %s options: %w", script, err)
		}
		opts = fromFile
	}
	return opts.Merge(OverridesFromProperty(property, script)), nil
}

func (o ScriptOpts) Merge(overrides ScriptOpts) ScriptOpts {
	out := make(ScriptOpts, len(o)+len(overrides))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func (o ScriptOpts) String(key string, def string) string {
	if v, ok := o[key]; ok {
		return v
	}
	return def
}

func (o ScriptOpts) Bool(script string, key string, def bool) (bool, error) {
	raw, ok := o[key]
	if !ok {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	default:
		return def, &OptionError{Script: script, Key: key, Value: raw, Reason: "expected yes or no"}
	}
}

// Unknown lists the keys that are not in known, sorted.
func (o ScriptOpts) Unknown(known ...string) []string {
	var out []string
	for key := range o {
		found := false
		for _, k := range known {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
