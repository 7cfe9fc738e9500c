package middleware

import (
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
)

// rateLimitUsers bounds how many users are remembered at once.
const rateLimitUsers = 4096

// RateLimitOptions configures RateLimitMiddleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude holds update kinds, as reported by UpdateKind, that are never limited.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// UpdateKind classifies an update as "callback", "message" or "other".
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}

// RateLimitMiddleware lets through at most one update per user per interval.
// Updates arriving inside the window are dropped after OnLimited runs.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Interval <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	seen := expirable.NewLRU[int64, struct{}](rateLimitUsers, nil, opts.Interval)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if seen.Contains(user.ID) {
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.rate_limit",
					slog.String("status", "rate_limited"),
					slog.String("kind", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			seen.Add(user.ID, struct{}{})
			return next(c)
		}
	}
}
