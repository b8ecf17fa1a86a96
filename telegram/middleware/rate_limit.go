package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/newsbot/logger"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions sets the minimum spacing between a user's messages and
// what to tell a user who sends faster than that.
type RateLimitOptions struct {
	Interval  time.Duration
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware drops messages arriving closer together than
// Interval per user. Callback presses always pass: a moderator clicking
// Publish right after Reject must never be silently dropped.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	limiter := struct {
		mu       sync.Mutex
		lastSeen map[int64]time.Time
	}{lastSeen: make(map[int64]time.Time)}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if opts.Interval <= 0 || user == nil || c.Update().Callback != nil {
				return next(c)
			}

			now := time.Now()
			limiter.mu.Lock()
			last, known := limiter.lastSeen[user.ID]
			limited := known && now.Sub(last) < opts.Interval
			if !limited {
				limiter.lastSeen[user.ID] = now
			}
			limiter.mu.Unlock()

			if !limited {
				return next(c)
			}

			logger.TG.Warn("rate limit",
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", user.ID),
			)
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}
