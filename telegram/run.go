// Package telegram owns the bot transport: building the telebot instance,
// wiring middlewares and routes from the registry, and running the update
// loop until shutdown.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/m3rciful/newsbot/config"
	"github.com/m3rciful/newsbot/logger"
	tghelpers "github.com/m3rciful/newsbot/telegram/helpers"
	tgsender "github.com/m3rciful/newsbot/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds one handler to a telebot endpoint.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions describes everything RunTelegram needs to assemble the bot.
type RunOptions struct {
	Config   *config.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime hands the live components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot from opts and runs it until ctx is cancelled.
// On return the dispatcher has drained and the update loop has stopped.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: buildPoller(cfg),
		Client: BuildHTTPClient(),
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logRunMode(ctx, cfg, time.Since(buildStart))

	// Telegram refuses long polling while a webhook is registered, so a
	// previous webhook deployment has to be cleared first.
	if cfg.Telegram.RunMode == config.RunModeLongpoll {
		clearStaleWebhook(cfg.Telegram.Token)
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

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
	InitBotCommands(bot, reg)

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	loopDone := make(chan struct{})
	go func() {
		bot.Start()
		close(loopDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-loopDone
		if !errors.Is(ctx.Err(), context.Canceled) {
			runErr = ctx.Err()
		}
	case <-loopDone:
	}

	if opts.OnStop != nil {
		if err := opts.OnStop(ctx, rt); err != nil {
			return err
		}
	}
	return runErr
}

func buildPoller(cfg *config.Config) tele.Poller {
	if cfg.Telegram.RunMode == config.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	timeout := time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &tele.LongPoller{Timeout: timeout}
}

func logRunMode(ctx context.Context, cfg *config.Config, took time.Duration) {
	attrs := []slog.Attr{
		slog.String("event", "mode"),
		slog.String("mode", cfg.Telegram.RunMode),
		slog.Duration("duration", logger.RoundMS(took)),
	}
	if cfg.Telegram.RunMode == config.RunModeWebhook {
		attrs = append(attrs,
			slog.String("listen", fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port)),
			slog.String("public_url", cfg.Webhook.URL),
		)
	} else {
		attrs = append(attrs, slog.Int("timeout_seconds", cfg.Telegram.LongPollTimeoutSeconds))
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "bot ready", attrs...)
}

// clearStaleWebhook is best effort; when it fails the poller surfaces the
// conflict on its first getUpdates call anyway.
func clearStaleWebhook(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		strings.NewReader("drop_pending_updates=false"))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.TG.Warn("failed to delete webhook",
			slog.String("event", "delete_webhook"),
			slog.String("err", logger.Sanitize(err.Error())),
		)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		logger.TG.Warn("failed to delete webhook",
			slog.String("event", "delete_webhook"),
			slog.String("status", resp.Status),
		)
		return
	}
	logger.TG.Info("webhook deleted", slog.String("event", "delete_webhook"))
}
