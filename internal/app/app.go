// Package app wires configuration, storage and the bot handlers into a runnable Telegram app.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/vocabot/core/bootstrap"
	"github.com/m3rciful/vocabot/core/logger"
	tg "github.com/m3rciful/vocabot/core/telegram"
	"github.com/m3rciful/vocabot/core/telegram/router"
	"github.com/m3rciful/vocabot/core/telegram/ui"
	"github.com/m3rciful/vocabot/internal/bot"
	"github.com/m3rciful/vocabot/internal/config"
	"github.com/m3rciful/vocabot/internal/searchcache"
	"github.com/m3rciful/vocabot/internal/store"
)

// App holds the long-lived components of a running bot.
type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	handler  *bot.Handler
	registry *tg.Registry
}

// Bootstrap initializes logging and storage, then builds the app.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: store.Migrations(),
	})
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, res.DB)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	return a, nil
}

// New builds the handlers over an already migrated database.
func New(cfg *config.Config, db *sqlx.DB) (*App, error) {
	tokens := searchcache.New(cfg.Vocab.SearchTokensPerOwner)
	h := bot.New(store.New(db), tokens, bot.Options{
		PageSize:    cfg.Vocab.PageSize,
		BulkPreview: cfg.Vocab.BulkPreview,
		EditMatches: cfg.Vocab.EditMatches,
	})

	reg := tg.NewRegistry()
	if err := h.Register(reg); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}
	var fallback ui.FallbackProvider = h
	reg.SetCallbackNotFound(fallback.UnknownCallback())

	return &App{cfg: cfg, db: db, handler: h, registry: reg}, nil
}

// Registry exposes the command and callback registry.
func (a *App) Registry() *tg.Registry { return a.registry }

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	if core.Telegram.AdminID == 0 {
		logger.TWire.Warn("admin id not set",
			slog.String("event", "wire"),
			slog.String("reason", "admin_commands_open"),
		)
	}

	var fallback ui.FallbackProvider = a.handler
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{
		NotFound: fallback.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a.handler, a.registry, router.TextOptions{
		UnknownText:     fallback.UnknownText(),
		UnknownDocument: fallback.UnknownDocument(),
	})...)

	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.handler.SetDispatcher(rt.Dispatcher)
			return nil
		},
		OnStop: func(context.Context, tg.Runtime) error {
			return a.Close()
		},
	}, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
