// Package telegram assembles a telebot bot from a registry of commands and
// callbacks, a middleware chain and an outbound dispatcher, and runs it.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/vocabot/core/config"
	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
	"github.com/m3rciful/vocabot/core/telegram/netutil"
	tgsender "github.com/m3rciful/vocabot/core/telegram/sender"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint such as "/list" or tele.OnText.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	// Dispatcher overrides the one built from DispatcherOptions.
	Dispatcher *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// DisableWebhookCleanup keeps a previously set webhook in long-poll mode.
	DisableWebhookCleanup bool
	// DisableHelperDispatcher makes the send helpers call Telegram synchronously.
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime is handed to the lifecycle hooks.
type Runtime struct {
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot and serves updates until ctx is cancelled.
// Cancellation is a clean shutdown and yields nil.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		return errors.New("telegram: nil config")
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	poller, modeAttrs := BuildPoller(cfg)
	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(),
		OnError: logUpdateError,
	})
	if err != nil {
		return fmt.Errorf("telegram: init bot: %s", netutil.Redact(err))
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "", append([]slog.Attr{
		slog.String("event", "bot.ready"),
		slog.String("username", bot.Me.Username),
		slog.Duration("duration", logger.Took(start)),
	}, modeAttrs...)...)

	if _, longPoll := poller.(*tele.LongPoller); longPoll && !opts.DisableWebhookCleanup {
		clearWebhook(ctx, bot)
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	publishCommands(bot, reg)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	if !opts.DisableHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	rt := Runtime{Dispatcher: dispatcher, Registry: reg}
	release := func() {
		dispatcher.Close()
		if !opts.DisableHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			release()
			return err
		}
	}

	serve(ctx, bot)

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	release()
	return stopErr
}

// serve runs the poller until ctx is done or the poller gives up.
func serve(ctx context.Context, bot *tele.Bot) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		logger.TG.LogAttrs(context.Background(), slog.LevelInfo, "",
			slog.String("event", "bot.stopped"),
			slog.String("cause", context.Cause(ctx).Error()),
		)
	case <-done:
	}
}

// clearWebhook removes a webhook left behind by a webhook deployment;
// Telegram refuses getUpdates while one is set.
func clearWebhook(ctx context.Context, bot *tele.Bot) {
	if err := bot.RemoveWebhook(false); err != nil {
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "",
			slog.String("event", "webhook.remove"),
			slog.String("status", "fail"),
			slog.String("err", netutil.Redact(err)),
		)
		return
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "",
		slog.String("event", "webhook.remove"),
		slog.String("status", "ok"),
	)
}

// logUpdateError receives handler errors that reached telebot.
func logUpdateError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelError, "update.error",
		slog.String("err", netutil.Redact(err)),
		slog.String("err_kind", netutil.Kind(err)),
	)
}
