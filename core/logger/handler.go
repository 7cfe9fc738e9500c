package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler flattens every record into one line of fields:
// groups become dotted keys, durations become *_ms integers and the update
// metadata stored in the context is merged in.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	prefix string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = defaultKeyOrder
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	fields := make(map[string]any, 16)
	for _, a := range h.attrs {
		addAttr(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, h.prefix, a)
		return true
	})
	for _, a := range MetaFrom(ctx).Attrs() {
		if _, set := fields[a.Key]; !set {
			addAttr(fields, "", a)
		}
	}

	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	fields["level"] = levelName(r.Level)
	if fields["event"] == nil || fields["event"] == "" {
		fields["event"] = orDefault(r.Message, "unknown")
	}
	if fields["component"] == nil || fields["component"] == "" {
		fields["component"] = "app"
	}
	sanitizeEnums(fields)

	var line []byte
	if h.cfg.format == formatJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
		var err error
		if line, err = encodeJSON(fields, h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = encodeKV(fields, h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.prefix == "" {
		clone.prefix = name
	} else {
		clone.prefix += "." + name
	}
	return &clone
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// addAttr flattens a into fields. Empty strings and nil values are skipped.
func addAttr(fields map[string]any, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			addAttr(fields, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	k, val, ok := fieldValue(key, v)
	if ok {
		fields[k] = val
	}
}

func fieldValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		s := strings.TrimSpace(v.String())
		return key, s, s != ""
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case time.Duration:
		return durationKey(key), RoundMS(x).Milliseconds(), true
	case error:
		return key, x.Error(), true
	case fmt.Stringer:
		s := x.String()
		return key, s, s != ""
	default:
		return key, fmt.Sprint(x), true
	}
}

// durationKey appends the _ms unit suffix unless the key already carries it.
func durationKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

// orderedKeys lists the keys of fields named in order first, then the rest sorted.
func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	listed := make(map[string]struct{}, len(order))
	for _, k := range order {
		listed[k] = struct{}{}
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
		}
	}
	head := len(keys)
	for k := range fields {
		if _, ok := listed[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys[head:])
	return keys
}

func encodeJSON(fields map[string]any, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range orderedKeys(fields, order) {
		v, err := json.Marshal(fields[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeKV(fields map[string]any, order []string) []byte {
	var buf bytes.Buffer
	for i, k := range orderedKeys(fields, order) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		s := fmt.Sprint(fields[k])
		if strings.ContainsFunc(s, needsQuote) {
			s = strconv.Quote(s)
		}
		buf.WriteString(s)
	}
	return buf.Bytes()
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
