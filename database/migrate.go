package database

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/newsbot/config"
	"github.com/m3rciful/newsbot/logger"
)

const migrationsDir = "migrations"

// RunMigrations brings the archive schema up to date from the migrations
// directory next to the working directory. A database with nothing to
// apply is a success, not an error.
func RunMigrations(cfg config.DatabaseConfig) error {
	dsn := urlDSN(cfg)
	if err := WaitForPostgres(dsn, 30*time.Second); err != nil {
		logger.MIG.Error("db not ready",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("database not ready: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	path := filepath.Join(cwd, migrationsDir)
	files := upMigrations(path)
	logResolved(path, files)

	m, err := migrate.New("file://"+path, dsn)
	if err != nil {
		logger.MIG.Error("init failed",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	fromVer, _, _ := m.Version()
	start := time.Now()
	upErr := m.Up()
	took := logger.RoundMS(time.Since(start))

	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.MIG.Error("migration failed",
			slog.String("event", "apply"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer := fromVer
	applied := 0
	if upErr == nil {
		toVer, _, _ = m.Version()
		applied = len(files)
	}
	logger.MIG.Info("migrations summary",
		slog.String("event", "summary"),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("files", applied),
		slog.Duration("duration", took),
	)
	return nil
}

func logResolved(path string, files []string) {
	attrs := []any{
		slog.String("event", "resolve"),
		slog.String("path", path),
		slog.Int("files_total", len(files)),
	}
	if preview, truncated := logger.SummarizeStrings(files, 6); preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
		if truncated {
			attrs = append(attrs, slog.Bool("files_truncated", true))
		}
	}
	logger.MIG.Debug("migrations resolved", attrs...)
}

func upMigrations(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
