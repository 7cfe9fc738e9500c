// Package logger provides the structured slog logger shared by the bot:
// component loggers, update correlation through context.Context, sampled
// debug output and an asynchronous writer that fans out to stdout and an
// optional log file.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/vocabot/core/buildinfo"
	coreconfig "github.com/m3rciful/vocabot/core/config"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutDown   bool

	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar slog.LevelVar

	debugSampler  = &sampler{}
	traceOverride bool

	// L is the root logger. It is slog.Default until InitLogger runs.
	L *slog.Logger

	// DB logs connection and pool events.
	DB *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// MIG logs schema migrations.
	MIG *slog.Logger
	// TWire logs how routes and middlewares are wired at startup.
	TWire *slog.Logger
	// SEED logs seeders and dictionary imports.
	SEED *slog.Logger
	// SVCEntries logs dictionary store activity.
	SVCEntries *slog.Logger
	// SVCSearch logs search token cache activity.
	SVCSearch *slog.Logger
	// SVCQuiz logs quiz session activity.
	SVCQuiz *slog.Logger
)

var components = []struct {
	dst  **slog.Logger
	name string
}{
	{&DB, "db"},
	{&TG, "tg"},
	{&MIG, "db.migrate"},
	{&TWire, "tg.wire"},
	{&SEED, "db.seed"},
	{&SVCEntries, "service.entries"},
	{&SVCSearch, "service.search"},
	{&SVCQuiz, "service.quiz"},
}

func init() {
	L = slog.Default()
	bindComponents()
	debugSampler.set(1, 50)
}

func bindComponents() {
	for _, c := range components {
		*c.dst = L.With("component", c.name)
	}
}

// settings is the resolved logging section.
type settings struct {
	format       logFormat
	level        slog.Level
	order        []string
	keep, window int
	profile      string
	file         string
}

func settingsFrom(cfg *coreconfig.Config) settings {
	s := settings{format: formatJSON, level: slog.LevelInfo, order: defaultKeyOrder, keep: 1, window: 50, profile: "prod"}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "dev" || s.profile == "debug" {
			s.format = formatKV
		}
	}
	s.level = parseLevel(lc.Level)
	if order := splitList(lc.KeysOrder); len(order) > 0 && lc.KeysOrder != "default" {
		s.order = order
	}
	if keep, window, ok := parseRatio(lc.DebugSample); ok {
		s.keep, s.window = keep, window
	}
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		s.file = filepath.Join(dir, name)
	}
	return s
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InitLogger installs the structured logger described by cfg. Only the first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		s := settingsFrom(cfg)
		levelVar.Set(s.level)
		debugSampler.set(s.keep, s.window)
		traceOverride = envFlag("LOG_TRACE") || envFlag("TRACE")

		sinks := []io.Writer{os.Stdout}
		if s.file != "" {
			f, err := openLogFile(s.file)
			if err != nil {
				initErr = err
				return
			}
			sinks = append(sinks, f)
			logClosers = append(logClosers, f)
		}
		logWriter = newAsyncWriter(sinks, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   s.format,
			keyOrder: s.order,
		}))
		slog.SetDefault(L)
		bindComponents()

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", s.profile),
		)
	})
	return initErr
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Shutdown flushes queued lines and closes the log file. It is safe to call twice.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutDown {
		return nil
	}
	shutDown = true

	var errs []error
	if logWriter != nil {
		errs = append(errs, logWriter.Close())
	}
	for _, c := range logClosers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// LogEvent writes one line tagged with event. A nil logg falls back to the
// logger stored in ctx and then to L.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to the named component.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Debug logs event for component at debug level.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

// Info logs event for component at info level.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

// Warn logs event for component at warn level.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

// Error logs event for component at error level.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be written.
// LOG_TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.allow()
}
