package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// ReplyCounter is implemented by contexts that tally the replies of an update.
type ReplyCounter interface {
	CountReply(withKeyboard bool)
}

func sendAsync(c tele.Context, action, endpoint string, keyboard bool, run func() error) error {
	if rc, ok := c.(ReplyCounter); ok {
		rc.CountReply(keyboard)
	}
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	keyboard := sendOpts != nil && sendOpts.ReplyMarkup != nil
	return sendAsync(c, "send.text", "sendMessage", keyboard, func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: firstMarkup(markup)}
	return SendText(c, text, opts)
}

// EditHTML edits the message behind the current callback in place.
func EditHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "edit.html", "editMessageText", opts.ReplyMarkup != nil, func() error {
		err := c.Edit(text, opts)
		if errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}
		return err
	})
}

// EditOrSendHTML edits the message when the update is a callback and sends a new one otherwise.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	if c.Callback() != nil && c.Callback().Message != nil {
		return EditHTML(c, text, markup...)
	}
	return SendHTML(c, text, markup...)
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}
