package middleware

import (
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
)

// receipts remembers recently logged update ids. LoggerMiddleware is applied
// on every route, so the same update can pass through it more than once.
var receipts = expirable.NewLRU[int, struct{}](1024, nil, 10*time.Second)

func firstReceipt(updateID int) bool {
	if receipts.Contains(updateID) {
		return false
	}
	receipts.Add(updateID, struct{}{})
	return true
}

// LoggerMiddleware prepares the update context and logs a sampled
// update.received line once per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()
		if !logger.ShouldSampleDebug() || !firstReceipt(upd.ID) {
			return next(c)
		}

		attrs := []slog.Attr{slog.String("status", "ok"), slog.String("kind", UpdateKind(upd))}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if u := c.Sender(); u != nil && u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		switch {
		case upd.Callback != nil:
			key, payload := callbacks.ParseCallbackData(upd.Callback)
			attrs = append(attrs,
				slog.String("cb_key", logger.SanitizeLimit(key, 32)),
				slog.String("payload", logger.SanitizeLimit(payload, 64)),
			)
		case upd.Message != nil:
			// Dictionary text is personal; only its size is logged.
			attrs = append(attrs, slog.Int("text_len", len([]rune(c.Text()))))
			if upd.Message.Document != nil {
				attrs = append(attrs, slog.Bool("document", true))
			}
		}
		logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", attrs...)
		return next(c)
	}
}
