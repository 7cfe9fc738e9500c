package telegram

import (
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/vocabot/core/config"
)

const defaultLongPollTimeout = 10 * time.Second

// AllowedUpdates are the update types requested from Telegram. The bot only
// reacts to messages and inline button presses.
var AllowedUpdates = []string{"message", "callback_query"}

// BuildPoller returns the poller selected by telegram.run_mode together with
// attributes describing it for the startup log.
func BuildPoller(cfg *coreconfig.Config) (tele.Poller, []slog.Attr) {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		listen := fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port)
		return &tele.Webhook{
				Listen:         listen,
				Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
				AllowedUpdates: AllowedUpdates,
			}, []slog.Attr{
				slog.String("mode", coreconfig.RunModeWebhook),
				slog.String("listen", listen),
				slog.String("public_url", cfg.Webhook.URL),
			}
	}

	timeout := defaultLongPollTimeout
	if s := cfg.Telegram.LongPollTimeoutSeconds; s > 0 {
		timeout = time.Duration(s) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout, AllowedUpdates: AllowedUpdates}, []slog.Attr{
		slog.String("mode", coreconfig.RunModeLongpoll),
		slog.Duration("timeout", timeout),
	}
}
