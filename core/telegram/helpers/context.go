// Package helpers holds the per-update plumbing shared by handlers: the
// logging context, send and edit helpers and callback answers.
package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
)

const contextKey = "logger_ctx"

// StoreContext caches ctx on c for BuildContext.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(contextKey, ctx)
	}
}

// BuildContext returns the context.Context of the update behind c. It
// carries the update metadata and the "tg" component logger and is
// created once per update.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(contextKey).(context.Context); ok {
		return ctx
	}
	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	ctx := logger.WithMeta(context.Background(), logger.NewUpdateMeta(c.Update().ID, userID, chatID))
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler records the handler name in the update context.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
