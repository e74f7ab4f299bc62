package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
)

const clipLimit = 240

// leadingKeys are printed before all other fields, in this order.
var leadingKeys = []string{"script", "prefix", "level"}

// Truncate flattens value onto one line and clips it for log output.
func Truncate(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	if value == "" {
		return "<empty>"
	}
	if len(value) > clipLimit {
		return value[:clipLimit] + "..."
	}
	return value
}

func FormatEventLine(event Event) string {
	ts := event.Time.Format("15:04:05")
	level := strings.ToUpper(event.Level.String())
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", ts, level, event.Message)
	for _, key := range orderedFieldKeys(event.Fields) {
		fmt.Fprintf(&b, " %s=%s", key, formatFieldValue(event.Fields[key]))
	}
	b.WriteByte('\n')
	return b.String()
}

func formatFieldValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "<nil>"
	case string:
		return quoteIfNeeded(v)
	case error:
		return quoteIfNeeded(v.Error())
	case fmt.Stringer:
		return quoteIfNeeded(v.String())
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		// IPC property values decode to maps and slices; print them compact.
		if payload, err := json.Marshal(value); err == nil {
			return string(payload)
		}
	}
	return fmt.Sprintf("%v", value)
}

func quoteIfNeeded(value string) string {
	if value == "" {
		return `""`
	}
	if strings.ContainsAny(value, " \t\n\"=") {
		return fmt.Sprintf("%q", value)
	}
	return value
}

func orderedFieldKeys(fields map[string]any) []string {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for _, key := range leadingKeys {
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
		}
	}
	rest := make([]string, 0, len(fields))
	for key := range fields {
		if isLeadingKey(key) {
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func isLeadingKey(key string) bool {
	for _, leading := range leadingKeys {
		if key == leading {
			return true
		}
	}
	return false
}

func attrsToMap(attrs []slog.Attr) map[string]any {
	if len(attrs) == 0 {
		return nil
	}
	values := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "" {
			continue
		}
		values[attr.Key] = resolveValue(attr.Value)
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func resolveValue(value slog.Value) any {
	value = value.Resolve()
	if value.Kind() != slog.KindGroup {
		return value.Any()
	}
	group := map[string]any{}
	for _, attr := range value.Group() {
		if attr.Key == "" {
			continue
		}
		group[attr.Key] = resolveValue(attr.Value)
	}
	return group
}
