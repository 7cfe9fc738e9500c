package state

import (
	"log/slog"

	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Handlers maps a conversation step to the handler that consumes the next text message.
type Handlers[K comparable] struct {
	byStep map[K]tele.HandlerFunc
}

// NewHandlers returns an empty handler table.
func NewHandlers[K comparable]() *Handlers[K] {
	return &Handlers[K]{byStep: make(map[K]tele.HandlerFunc)}
}

// Register associates a step with its handler.
func (h *Handlers[K]) Register(step K, fn tele.HandlerFunc) {
	if fn == nil {
		return
	}
	h.byStep[step] = fn
}

// Dispatch runs the handler registered for step. Unknown steps are ignored.
func (h *Handlers[K]) Dispatch(c tele.Context, step K) error {
	ctx := tghelpers.BuildContext(c)
	fn, ok := h.byStep[step]
	status := "ok"
	if !ok {
		status = "skip"
	}
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", status),
		slog.Any("flow", step),
	)
	if !ok {
		return nil
	}
	return fn(c)
}
