package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram:   TelegramConfig{Token: "123:abc"},
		Moderation: ModerationConfig{GroupID: -100123, ChannelID: -100456},
	}
}

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, expected %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	err := Normalize(cfg)
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	if !strings.Contains(err.Error(), "token") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeRequiresDestinations(t *testing.T) {
	cfg := validConfig()
	cfg.Moderation.GroupID = 0
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing moderation group")
	}

	cfg = validConfig()
	cfg.Moderation.ChannelID = 0
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing channel")
	}
}

func TestNormalizeWebhookValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook mode without url")
	}

	cfg = validConfig()
	cfg.Telegram.RunMode = "webhook"
	cfg.Webhook = WebhookConfig{URL: "https://example.org/bot", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

func TestNormalizeDatabaseDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{Host: "localhost", Name: "newsbot"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Fatalf("sslmode = %q, expected disable", cfg.Database.SSLMode)
	}
	if cfg.Database.MaxConnections <= 0 {
		t.Fatalf("max connections not defaulted: %d", cfg.Database.MaxConnections)
	}

	cfg = validConfig()
	cfg.Database = DatabaseConfig{Host: "localhost"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for database host without name")
	}
}
