package router

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/vocabot/core/telegram"
	"github.com/m3rciful/vocabot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
)

// CallbackOptions configures CallbackRoute.
type CallbackOptions struct {
	// NotFound handles keys the registry does not know when the registry has no fallback.
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches button presses by the key in front of the payload.
// Every press is answered exactly once: a handler may answer with a notice
// through helpers.Respond, otherwise a silent answer follows the handler.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		defer func() { _ = tghelpers.Respond(c, "", false) }()

		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + handlerName(key)
		keyAttr := slog.String("cb_key", key)

		if h, ok := reg.GetCallback(key); ok && h != nil {
			return handled(c, name, "", func() error { return h(c) }, keyAttr)
		}
		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		return handled(c, name, "skip", func() error {
			if fallback == nil {
				return nil
			}
			return fallback(c)
		}, keyAttr, slog.String("reason", "not_found"))
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: wrap(handler)}
}
