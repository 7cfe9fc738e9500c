package telegram

import (
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/vocabot/core/config"
	"github.com/m3rciful/vocabot/core/telegram/middleware"
)

// DefaultMiddlewares returns the global chain in the order it runs:
// panic recovery, rate limiting when configured, per-user serialization,
// update logging and reply counting.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}
	if cfg != nil && cfg.RateLimit.Interval() > 0 {
		chain = append(chain, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  cfg.RateLimit.Interval(),
				Exclude:   cfg.RateLimit.Excluded(),
				OnLimited: onLimited,
			}),
		})
	}
	return append(chain,
		Middleware{Name: "serialize", Use: middleware.SerializeMiddleware()},
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
