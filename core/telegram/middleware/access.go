package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
)

// AdminOptions configures AdminOnlyMiddleware.
type AdminOptions struct {
	// AdminID is the only user let through. Zero lets everyone through.
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware restricts a handler to the configured admin.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID == 0 {
				return next(c)
			}
			if u := c.Sender(); u != nil && u.ID == opts.AdminID {
				return next(c)
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "access.denied",
				slog.String("status", "skip"),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
