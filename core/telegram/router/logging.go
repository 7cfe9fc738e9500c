// Package router turns the registry into telebot routes. Every route logs
// one handler.handled summary per update.
package router

import (
	"log/slog"
	"reflect"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
	"github.com/m3rciful/vocabot/core/telegram/middleware"
	"github.com/m3rciful/vocabot/core/telegram/netutil"
)

// handled runs fn under handler name and logs its summary. A non-empty
// status overrides the one derived from the error.
func handled(c tele.Context, name, status string, fn func() error, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)
	var err error
	if fn != nil {
		err = fn()
	}

	if status == "" {
		status = "ok"
		if err != nil {
			status = "fail"
		}
	}
	n := middleware.GetCounters(c)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.Int("replies", n.Replies),
		slog.Int("notices", n.Notices),
		slog.Bool("kb", n.Keyboard),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(netutil.Redact(err), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", append(attrs, extras...)...)
	return err
}

// handlerName turns "/Find" or "find me" into "find" or "find_me".
func handlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// errorCode names err for grouping in logs: Telegram failures by kind,
// anything else by its dynamic type.
func errorCode(err error) string {
	if kind := netutil.Kind(err); kind != netutil.KindUnknown {
		return strings.ToUpper(kind)
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}

// wrap applies the per-route middlewares shared by every route.
func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}
