package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/newsbot/logger"
	"github.com/m3rciful/newsbot/telegram/callbacks"
	tghelpers "github.com/m3rciful/newsbot/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates deduplicates receipt logging when the middleware chain runs
// on more than one endpoint branch for the same update.
type seenUpdates struct {
	mu   sync.Mutex
	ids  map[int]time.Time
	keep time.Duration
}

var seen = seenUpdates{ids: make(map[int]time.Time), keep: 10 * time.Second}

func (s *seenUpdates) firstSighting(updateID int) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ts := range s.ids {
		if now.Sub(ts) > s.keep {
			delete(s.ids, id)
		}
	}
	if _, dup := s.ids[updateID]; dup {
		return false
	}
	s.ids[updateID] = now
	return true
}

// LoggerMiddleware assigns the update its request id, stores the request
// context for downstream handlers, and logs one receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		if user := c.Sender(); user != nil {
			userID = user.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if seen.firstSighting(upd.ID) {
			logReceipt(ctx, c, rid)
		}
		return next(c)
	}
}

func logReceipt(ctx context.Context, c tele.Context, rid string) {
	upd := c.Update()
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("rid", rid),
		slog.Int("update_id", upd.ID),
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs,
			slog.Int64("chat_id", chat.ID),
			slog.String("chat_type", string(chat.Type)),
		)
	}
	if user := c.Sender(); user != nil {
		attrs = append(attrs, slog.Int64("user_id", user.ID))
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
	}

	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		if key == "" && upd.Callback.Unique != "" {
			key = upd.Callback.Unique
		}
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
}
