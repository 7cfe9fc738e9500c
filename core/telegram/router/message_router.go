package router

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/vocabot/core/telegram"
)

// FlowManager owns multi-step conversations. While a user has a flow in
// progress every message they send goes to ManagerHandler.
type FlowManager interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions configures TextRoutes.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes routes plain messages: to the active flow first, then to a
// registered command telebot did not match itself (for example one
// addressed to the bot by @username), then to the registry's text fallback.
// Documents only reach an active flow or UnknownDocument.
func TextRoutes(flows FlowManager, reg *tg.Registry, opts TextOptions) []tg.Route {
	inFlow := func(c tele.Context) bool {
		return flows != nil && c.Sender() != nil && flows.InProgress(c.Sender().ID)
	}

	onText := func(c tele.Context) error {
		if inFlow(c) {
			return handled(c, "flow", "", func() error { return flows.ManagerHandler(c) })
		}
		if reg != nil {
			if text := c.Text(); strings.HasPrefix(text, "/") {
				if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil && !cmd.AdminOnly {
					return handled(c, handlerName(key), "", func() error { return cmd.Handler(c) })
				}
			}
			if fb := reg.TextFallback(); fb != nil {
				return handled(c, "text", "", func() error { return fb(c) })
			}
		}
		return orSkip(c, "unknown_text", opts.UnknownText)
	}

	onDocument := func(c tele.Context) error {
		if inFlow(c) {
			return handled(c, "flow_document", "", func() error { return flows.ManagerHandler(c) })
		}
		return orSkip(c, "unexpected_document", opts.UnknownDocument)
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(onText)},
		{Endpoint: tele.OnDocument, Handler: wrap(onDocument)},
	}
}

// orSkip runs h under name, or logs a skipped update when h is nil.
func orSkip(c tele.Context, name string, h tele.HandlerFunc) error {
	if h == nil {
		return handled(c, name, "skip", nil)
	}
	return handled(c, name, "", func() error { return h(c) })
}
