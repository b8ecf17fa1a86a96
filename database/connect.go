// Package database manages the optional Postgres connection behind the
// decision archive: pool setup, readiness probing and schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/newsbot/config"
	"github.com/m3rciful/newsbot/logger"
)

const connectTimeout = 5 * time.Second

func keywordDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)
}

func urlDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)
}

// Connect opens the archive database, sizes the pool and pings it once.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", keywordDSN(cfg))
	took := logger.RoundMS(time.Since(start))

	attrs := []slog.Attr{
		slog.String("event", "db.connect"),
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Duration("duration", took),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.DB.LogAttrs(ctx, slog.LevelError, "db connect failed", attrs...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	attrs = append(attrs, slog.Int("pool_open", cfg.MaxConnections))
	logger.DB.LogAttrs(ctx, slog.LevelInfo, "db connected", attrs...)
	return db, nil
}

// WaitForPostgres polls until the database answers a ping or the timeout
// passes. Container setups routinely start the bot before Postgres.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		lastErr = tryPing(dsn)
		if lastErr == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}

func tryPing(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}
