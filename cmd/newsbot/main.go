package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/newsbot/archive"
	"github.com/m3rciful/newsbot/bot"
	"github.com/m3rciful/newsbot/config"
	"github.com/m3rciful/newsbot/database"
	"github.com/m3rciful/newsbot/logger"
	"github.com/m3rciful/newsbot/telegram"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("newsbot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	var recorder archive.Recorder
	if cfg.Database.Enabled() {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database initialization failed: %w", err)
		}
		defer db.Close()
		if err := database.RunMigrations(cfg.Database); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		recorder = archive.NewPostgresRecorder(db)
	}

	application := bot.New(cfg, recorder)
	runOpts, err := application.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("telegram options build failed: %w", err)
	}

	startedAt := time.Now()
	prevStart := runOpts.OnStart
	runOpts.OnStart = func(ctx context.Context, rt telegram.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.L.With("component", "app").Info("app ready",
			slog.String("event", "ready"),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}

	prevStop := runOpts.OnStop
	runOpts.OnStop = func(ctx context.Context, rt telegram.Runtime) error {
		logger.L.With("component", "app").Info("shutting down...",
			slog.String("event", "shutdown"),
		)
		if prevStop != nil {
			return prevStop(ctx, rt)
		}
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return telegram.RunTelegram(ctx, runOpts)
}
