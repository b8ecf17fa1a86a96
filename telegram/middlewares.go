package telegram

import (
	"time"

	"github.com/m3rciful/newsbot/config"
	"github.com/m3rciful/newsbot/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares assembles the global chain: recover outermost, then
// the per-user rate limit when configured, then request logging and
// message counting for every surviving update.
func DefaultMiddlewares(cfg *config.Config, onLimited func(tele.Context) error) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		chain = append(chain, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				OnLimited: onLimited,
			}),
		})
	}

	return append(chain,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
