package router

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
	tg "github.com/m3rciful/vocabot/core/telegram"
	"github.com/m3rciful/vocabot/core/telegram/middleware"
)

// CommandRouteOptions configures CommandRoutes.
type CommandRouteOptions struct {
	// AdminID guards AdminOnly commands; 0 leaves them open.
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	guard := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, cmd := range cmds {
		h := cmd.Handler
		label := handlerName(name)
		if cmd.AdminOnly {
			h = guard(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  wrap(func(c tele.Context) error { return handled(c, label, "", func() error { return h(c) }) }),
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "commands.routed"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
