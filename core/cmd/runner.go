// Package cmd drives a bot process: it resolves and loads configuration,
// bootstraps the application and runs it until a termination signal arrives.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/vocabot/core/config"
	"github.com/m3rciful/vocabot/core/logger"
	coretelegram "github.com/m3rciful/vocabot/core/telegram"
)

// DefaultConfigEnvVar is consulted when Options.ConfigEnvVar is empty.
const DefaultConfigEnvVar = "CONFIG_PATH"

// ConfigCarrier exposes the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp builds the options RunTelegram needs.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app and run the bot.
type Options struct {
	// ConfigPath wins over ConfigEnvVar and DefaultConfigPath when set.
	ConfigPath        string
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(ctx context.Context, cfg ConfigCarrier) (TelegramApp, error)

	// Optional overrides, mostly for tests.
	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

func (o Options) check() error {
	switch {
	case o.LoadConfig == nil:
		return errors.New("cmd: LoadConfig is required")
	case o.Bootstrap == nil:
		return errors.New("cmd: Bootstrap is required")
	}
	return nil
}

// Run loads configuration, bootstraps the app and blocks in the Telegram runtime
// until SIGINT or SIGTERM.
func Run(opts Options) error {
	if err := opts.check(); err != nil {
		return err
	}
	path, err := ResolveConfigPath(opts)
	if err != nil {
		return err
	}
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: load config %s: %w", path, err)
	}
	if cfg == nil || cfg.CoreConfig() == nil {
		return errors.New("cmd: loaded config is missing core configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	application, err := opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}

	shutdown := opts.ShutdownLogger
	if shutdown == nil {
		shutdown = logger.Shutdown
	}
	defer func() {
		if flushErr := shutdown(); flushErr != nil {
			fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", flushErr)
		}
	}()

	runOpts, err := application.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}
	logger.Info(ctx, "app", "app.config",
		slog.String("path", path),
		slog.String("run_mode", cfg.CoreConfig().Telegram.RunMode),
	)
	announce(&runOpts, started)

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

// announce chains app.ready and app.shutdown log lines onto the lifecycle hooks.
func announce(opts *coretelegram.RunOptions, started time.Time) {
	onStart := opts.OnStart
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "app.ready",
			slog.String("status", "ok"),
			slog.Duration("startup", logger.RoundMS(time.Since(started))),
		)
		return nil
	}

	onStop := opts.OnStop
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "app.shutdown",
			slog.Duration("uptime", logger.RoundMS(time.Since(started))),
		)
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}
}

// ResolveConfigPath picks the config file from the explicit path, the environment or the default.
func ResolveConfigPath(opts Options) (string, error) {
	if opts.ConfigPath != "" {
		return opts.ConfigPath, nil
	}
	env := opts.ConfigEnvVar
	if env == "" {
		env = DefaultConfigEnvVar
	}
	if p := os.Getenv(env); p != "" {
		return p, nil
	}
	if opts.DefaultConfigPath == "" {
		return "", fmt.Errorf("cmd: no config path: pass --config or set $%s", env)
	}
	return opts.DefaultConfigPath, nil
}
