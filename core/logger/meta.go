package logger

import (
	"context"
	"log/slog"
	"strconv"
)

type ctxKey int

const (
	metaKey ctxKey = iota
	loggerKey
)

// UpdateMeta identifies the Telegram update a log line belongs to.
type UpdateMeta struct {
	RID      string
	UpdateID int
	UserID   int64
	ChatID   int64
	Handler  string
}

// NewUpdateMeta builds the metadata of one update, deriving its RID.
func NewUpdateMeta(updateID int, userID, chatID int64) UpdateMeta {
	return UpdateMeta{
		RID:      NewRID(updateID, chatID, userID),
		UpdateID: updateID,
		UserID:   userID,
		ChatID:   chatID,
	}
}

// Attrs returns the non-zero identifiers as log attributes.
func (m UpdateMeta) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 5)
	if m.RID != "" {
		attrs = append(attrs, slog.String("rid", m.RID))
	}
	if m.UpdateID != 0 {
		attrs = append(attrs, slog.Int("update_id", m.UpdateID))
	}
	if m.UserID != 0 {
		attrs = append(attrs, slog.Int64("user_id", m.UserID))
	}
	if m.ChatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", m.ChatID))
	}
	if m.Handler != "" {
		attrs = append(attrs, slog.String("handler", m.Handler))
	}
	return attrs
}

// NewRID joins the update, chat and user ids as base36 segments, e.g. "2n9c.-1a.3f".
func NewRID(updateID int, chatID, userID int64) string {
	return strconv.FormatInt(int64(updateID), 36) + "." +
		strconv.FormatInt(chatID, 36) + "." +
		strconv.FormatInt(userID, 36)
}

// WithMeta stores m in ctx. Every log line written with ctx carries its identifiers.
func WithMeta(ctx context.Context, m UpdateMeta) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, metaKey, m)
}

// MetaFrom returns the metadata stored by WithMeta, or the zero value.
func MetaFrom(ctx context.Context) UpdateMeta {
	if ctx == nil {
		return UpdateMeta{}
	}
	m, _ := ctx.Value(metaKey).(UpdateMeta)
	return m
}

// WithHandler records the handler that is processing the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	m := MetaFrom(ctx)
	m.Handler = handler
	return WithMeta(ctx, m)
}

// WithLogger stores log in ctx for LogEvent calls that pass no logger.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored by WithLogger, falling back to L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return L
}
