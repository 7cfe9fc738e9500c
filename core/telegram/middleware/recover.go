// Package middleware holds the telebot middlewares shared by every route.
package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
)

// RecoverMiddleware turns a handler panic into a logged error so one bad
// update cannot stop the poller. A pressed button still gets its answer.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelError, "tg.panic",
				slog.String("status", "fail"),
				slog.String("err", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
			_ = tghelpers.Respond(c, "", false)
			err = fmt.Errorf("panic: %v", r)
		}()
		return next(c)
	}
}
