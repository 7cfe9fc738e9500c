// Package config holds the settings shared by every bot built on the core:
// Telegram transport, webhook endpoint, logging and rate limiting.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Run modes accepted by telegram.run_mode.
const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"
)

// Update kinds that may bypass rate limiting.
const (
	UpdateCallback = "callback"
	UpdateMessage  = "message"
)

// TelegramConfig holds the bot credentials and update delivery mode.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds of 0 selects the transport default.
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig is only consulted in webhook mode.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig selects the log level, line format and sinks.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample" envconfig:"LOG_DEBUG_SAMPLE"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile is "prod" unless set; "dev" and "debug" switch to key=value lines.
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// RateLimitConfig throttles each user to one update per interval.
// ExcludeUpdates lists update kinds ("callback", "message") that are never throttled.
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Interval is IntervalMS as a duration; zero disables limiting.
func (r RateLimitConfig) Interval() time.Duration {
	if r.IntervalMS <= 0 {
		return 0
	}
	return time.Duration(r.IntervalMS) * time.Millisecond
}

// Excluded returns the excluded update kinds as a set.
func (r RateLimitConfig) Excluded() map[string]struct{} {
	set := make(map[string]struct{}, len(r.ExcludeUpdates))
	for _, kind := range r.ExcludeUpdates {
		if kind != "" {
			set[kind] = struct{}{}
		}
	}
	return set
}

// Config aggregates the core sections. Applications embed it inline.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Decode fills out from the YAML file at path and then overlays environment variables.
func Decode(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := envconfig.Process("", out); err != nil {
		return fmt.Errorf("apply environment: %w", err)
	}
	return nil
}

// Normalize validates the sections and rewrites them into canonical form.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := cfg.Telegram.normalize(); err != nil {
		return err
	}
	if cfg.Telegram.RunMode == RunModeWebhook {
		if err := cfg.Webhook.validate(); err != nil {
			return err
		}
	}
	if err := cfg.Logging.normalize(); err != nil {
		return err
	}
	return cfg.RateLimit.normalize()
}

func (t *TelegramConfig) normalize() error {
	t.Token = strings.TrimSpace(t.Token)
	if t.Token == "" {
		return errors.New("telegram.token is required")
	}
	mode := strings.ToLower(strings.TrimSpace(t.RunMode))
	switch mode {
	case "", "polling", RunModeLongpoll:
		mode = RunModeLongpoll
	case RunModeWebhook:
	default:
		return fmt.Errorf("telegram.run_mode %q is not one of webhook, longpoll", t.RunMode)
	}
	t.RunMode = mode
	if t.LongPollTimeoutSeconds < 0 {
		return errors.New("telegram.longpoll_timeout_seconds must be >= 0")
	}
	if t.AdminID < 0 {
		return errors.New("telegram.admin_id must be a user id")
	}
	return nil
}

func (w WebhookConfig) validate() error {
	switch {
	case strings.TrimSpace(w.URL) == "":
		return errors.New("webhook.url is required in webhook mode")
	case strings.TrimSpace(w.Listen) == "":
		return errors.New("webhook.listen is required in webhook mode")
	case w.Port <= 0:
		return errors.New("webhook.port must be > 0 in webhook mode")
	}
	return nil
}

func (l *LoggingConfig) normalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", l.Level)
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "", "json", "kv", "text", "pretty":
	default:
		return fmt.Errorf("logging.format %q is not one of json, kv", l.Format)
	}
	l.Profile = strings.ToLower(strings.TrimSpace(l.Profile))
	return nil
}

func (r *RateLimitConfig) normalize() error {
	if r.IntervalMS < 0 {
		return errors.New("rate_limit.interval_ms must be >= 0")
	}
	for i, v := range r.ExcludeUpdates {
		kind := strings.ToLower(strings.TrimSpace(v))
		switch kind {
		case "", UpdateCallback, UpdateMessage:
			r.ExcludeUpdates[i] = kind
		default:
			return fmt.Errorf("rate_limit.exclude_updates: %q is not one of callback, message", v)
		}
	}
	return nil
}
