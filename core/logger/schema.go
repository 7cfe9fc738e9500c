package logger

import (
	"log/slog"
	"strings"
)

// enum restricts the values of a field. Unknown values are kept as-is
// when keepUnknown is set and dropped otherwise.
type enum struct {
	values      map[string]struct{}
	keepUnknown bool
}

func newEnum(keepUnknown bool, values ...string) enum {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return enum{values: set, keepUnknown: keepUnknown}
}

var enums = map[string]enum{
	"status":  newEnum(true, "ok", "fail", "skip", "retry", "rate_limited", "cancelled"),
	"outcome": newEnum(false, "ok", "fail", "cancelled", "rate_limited"),
	"cache":   newEnum(false, "hit", "miss", "refresh", "evict"),
}

// sanitizeEnums lowercases enumerated fields and applies their policy.
func sanitizeEnums(fields map[string]any) {
	for key, e := range enums {
		raw, ok := fields[key].(string)
		if !ok {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(raw))
		if _, known := e.values[v]; known || (e.keepUnknown && v != "") {
			fields[key] = v
			continue
		}
		delete(fields, key)
	}
}

func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// defaultKeyOrder puts the identifying fields first; the rest follow alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "update_id", "user_id", "chat_id", "chat_type", "handler",
	"op", "kind", "cb_key", "flow", "field", "entry_id", "letter", "token",
	"outcome", "duration_ms", "page", "pages", "count", "total",
	"saved", "skipped", "deleted", "cache", "payload",
	"driver", "db", "host", "port", "mode",
	"err", "err_code", "cause", "attempt", "attempts",
}
